// Package firmador talks to the external signing microservice. The DTE
// is signed remotely; credentials never leave the request.
package firmador

import (
	"context"
	"encoding/json"
	"strings"

	goerrors "github.com/go-faster/errors"
	log "github.com/sirupsen/logrus"

	"github.com/facturasv/go-dte-client/dte/api"
	"github.com/facturasv/go-dte-client/dte/model"
)

var logger = log.WithField("component", "dte.firmador")

type Service interface {
	// Sign sends the canonical payload to the firmador and returns the
	// signed document (JWS) bytes. Safe to invoke again with the same
	// payload.
	Sign(ctx context.Context, doc *model.Documento, nit, passwordPri string) ([]byte, error)
}

type service struct {
	client  api.Client
	baseURL string
}

func New(client api.Client, firmadorURL string) Service {
	return &service{
		client:  client,
		baseURL: strings.TrimRight(firmadorURL, "/"),
	}
}

func (s *service) Sign(ctx context.Context, doc *model.Documento, nit, passwordPri string) ([]byte, error) {

	url := s.baseURL + "/firmardocumento/"

	logger.Debugf("signing DTE %s", doc.Identificacion.CodigoGeneracion)

	signed, primaryErr := s.attempt(ctx, url, &model.SignRequest{
		Nit:         nit,
		PasswordPri: passwordPri,
		JsonDTE:     doc,
	})
	if primaryErr == nil {
		return signed, nil
	}

	// Only a structured rejection from the remote earns the one legacy
	// retry; transport failures surface immediately.
	var se *SignError
	if !goerrors.As(primaryErr, &se) || !se.structured {
		return nil, primaryErr
	}

	logger.Debug("JsonDTE shape rejected, retrying with legacy dteJson shape")

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, goerrors.Wrap(err, "marshal DTE for legacy shape")
	}

	signed, fallbackErr := s.attempt(ctx, url, &model.LegacySignRequest{
		Nit:         nit,
		PasswordPri: passwordPri,
		DteJson:     string(raw),
	})
	if fallbackErr == nil {
		return signed, nil
	}

	var fe *SignError
	if goerrors.As(fallbackErr, &fe) {
		fe.Err = primaryErr
		return nil, fe
	}
	return nil, fallbackErr
}

// attempt performs a single firmador call. Structured remote rejections
// come back as *SignError with structured=true.
func (s *service) attempt(ctx context.Context, url string, body interface{}) ([]byte, error) {

	res := &model.SignResponse{}
	err := s.client.PostJSON(ctx, url, body, res)
	if err != nil {
		var reqErr *api.RequestError
		if goerrors.As(err, &reqErr) {
			return nil, signErrorFromBody(reqErr.Body, reqErr)
		}
		return nil, &SignError{Mensaje: []string{err.Error()}, Err: err}
	}

	if jws, ok := res.SignedBody(); ok {
		return []byte(jws), nil
	}

	if fe := res.ErrorBody(); fe != nil {
		return nil, &SignError{Codigo: fe.Codigo, Mensaje: fe.Mensaje, structured: true}
	}
	return nil, &SignError{Mensaje: []string{"firmador response carries no signed content"}, structured: true}
}

func signErrorFromBody(body string, cause error) *SignError {
	se := &SignError{Err: cause, structured: true}

	var envelope model.SignResponse
	if err := json.Unmarshal([]byte(body), &envelope); err == nil {
		if fe := envelope.ErrorBody(); fe != nil {
			se.Codigo = fe.Codigo
			se.Mensaje = fe.Mensaje
			return se
		}
	}
	se.Mensaje = []string{body}
	return se
}
