// Package submission orchestrates the DTE workflow: build, sign,
// transmit and record the outcome, falling back to contingency when the
// authority endpoint is unreachable.
package submission

import (
	"context"
	"time"

	goerrors "github.com/go-faster/errors"
	log "github.com/sirupsen/logrus"

	"github.com/facturasv/go-dte-client/dte/builder"
	"github.com/facturasv/go-dte-client/dte/config"
	"github.com/facturasv/go-dte-client/dte/firmador"
	"github.com/facturasv/go-dte-client/dte/mh"
)

var logger = log.WithField("component", "dte.submission")

// TokenSource supplies the MH auth token; *mh.TokenProvider satisfies
// it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Renderer produces the human-readable version of a completed record.
type Renderer interface {
	Render(ctx context.Context, rec *Record) ([]byte, error)
}

// Notifier delivers the outcome to the recipient. Fire and forget: its
// errors are logged and never reverse the committed outcome.
type Notifier interface {
	Notify(ctx context.Context, rec *Record, rendered, signed []byte) error
}

type Submitter struct {
	signer      firmador.Service
	transmitter mh.TransmitService
	tokens      TokenSource
	renderer    Renderer
	notifier    Notifier

	nit         string
	passwordPri string

	signTimeout     time.Duration
	transmitTimeout time.Duration

	clock             func() time.Time
	notifyOnRejection bool
}

type Option func(*Submitter)

// WithClock fixes the emission timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Submitter) { s.clock = clock }
}

// WithNotifyOnRejection controls whether a rejected transmission still
// produces a recipient notification. Defaults to true.
func WithNotifyOnRejection(v bool) Option {
	return func(s *Submitter) { s.notifyOnRejection = v }
}

func WithRenderer(r Renderer) Option {
	return func(s *Submitter) { s.renderer = r }
}

func WithNotifier(n Notifier) Option {
	return func(s *Submitter) { s.notifier = n }
}

// New wires a Submitter. Concurrent Submit calls are safe for distinct
// requests; callers must serialize attempts sharing a generation code.
func New(signer firmador.Service, transmitter mh.TransmitService, tokens TokenSource, cfg *config.Config, opts ...Option) *Submitter {
	s := &Submitter{
		signer:            signer,
		transmitter:       transmitter,
		tokens:            tokens,
		renderer:          NopRenderer{},
		notifier:          LogNotifier{},
		nit:               cfg.Nit,
		passwordPri:       cfg.KeyPass,
		signTimeout:       cfg.SignTimeout,
		transmitTimeout:   cfg.TransmitTimeout,
		clock:             time.Now,
		notifyOnRejection: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one full submission attempt. The returned record always
// reflects exactly what happened to this attempt; there is no implicit
// retry of the whole workflow.
func (s *Submitter) Submit(ctx context.Context, req builder.Request) (*Record, error) {

	now := s.clock()
	rec := &Record{
		CodigoGeneracion: req.CodigoGeneracion,
		NumeroControl:    req.NumeroControl,
		Status:           StatusDraft,
		CreatedAt:        now,
	}

	doc, err := builder.Build(req, now)
	if err != nil {
		return rec, err
	}
	rec.Document = doc

	signCtx, cancelSign := context.WithTimeout(ctx, s.signTimeout)
	signed, err := s.signer.Sign(signCtx, doc, s.nit, s.passwordPri)
	cancelSign()
	if err != nil {
		rec.Status = StatusRejected
		rec.LastError = err.Error()
		logger.Errorf("DTE %s signing failed: %v", rec.CodigoGeneracion, err)
		return rec, err
	}

	rec.SignedDocument = signed
	rec.Status = StatusSigned
	rec.SignedAt = s.clock()

	s.transmitStep(ctx, rec)

	switch rec.Status {
	case StatusTransmitted, StatusContingency:
		s.notify(ctx, rec)
		return rec, nil
	case StatusRejected:
		if s.notifyOnRejection {
			s.notify(ctx, rec)
		}
		return rec, goerrors.New("mh rejected document: " + rec.LastError)
	default:
		// transmission outcome unknown; the caller may retry top-level
		return rec, goerrors.New("mh transmission failed: " + rec.LastError)
	}
}

// transmitStep performs the Transmitting transition and commits its
// terminal state on the record. Transmission errors become state, not
// propagated failures, so a partially submitted document stays visible.
func (s *Submitter) transmitStep(ctx context.Context, rec *Record) {

	tctx, cancel := context.WithTimeout(ctx, s.transmitTimeout)
	defer cancel()

	token, err := s.tokens.Token(tctx)
	if err != nil {
		// the authority cannot be reached for auth either
		s.markContingency(rec, "MH authentication unavailable: "+err.Error())
		return
	}

	stamp, err := s.transmitter.Transmit(tctx, rec.Document, rec.SignedDocument, token)
	if err == nil {
		rec.Stamp = stamp
		rec.Status = StatusTransmitted
		rec.Mode = ModeNormal
		rec.TransmittedAt = s.clock()
		logger.Infof("DTE %s transmitted, sello %s", rec.CodigoGeneracion, stamp.SelloRecibido)
		return
	}

	var te *mh.TransmitError
	if goerrors.As(err, &te) {
		switch te.Kind {
		case mh.Unavailable:
			s.markContingency(rec, te.Error())
			return
		case mh.Rejected:
			rec.Status = StatusRejected
			rec.LastError = te.Error()
			logger.Warnf("DTE %s rejected by MH: %v", rec.CodigoGeneracion, te)
			return
		}
	}

	// unknown failure: keep the signed document, surface the error
	rec.LastError = err.Error()
	logger.Errorf("DTE %s transmission failed: %v", rec.CodigoGeneracion, err)
}

func (s *Submitter) markContingency(rec *Record, reason string) {
	rec.Status = StatusContingency
	rec.Mode = ModeContingency
	rec.LastError = reason
	rec.Events = append(rec.Events, ContingencyEvent{
		CodigoGeneracion: rec.CodigoGeneracion,
		OccurredAt:       s.clock(),
		Description:      "marked as contingency: MH service unavailable",
	})
	logger.Warnf("DTE %s in contingency: %s", rec.CodigoGeneracion, reason)
}

// notify renders and delivers the outcome. Failures here never fail
// the submission.
func (s *Submitter) notify(ctx context.Context, rec *Record) {

	rendered, err := s.renderer.Render(ctx, rec)
	if err != nil {
		logger.Errorf("DTE %s rendering failed: %v", rec.CodigoGeneracion, err)
	}

	if err := s.notifier.Notify(ctx, rec, rendered, rec.SignedDocument); err != nil {
		logger.Errorf("DTE %s notification failed: %v", rec.CodigoGeneracion, err)
	}
}
