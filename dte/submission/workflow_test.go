package submission

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturasv/go-dte-client/dte/builder"
	"github.com/facturasv/go-dte-client/dte/config"
	"github.com/facturasv/go-dte-client/dte/firmador"
	"github.com/facturasv/go-dte-client/dte/mh"
	"github.com/facturasv/go-dte-client/dte/model"
)

var testClock = func() time.Time {
	return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
}

type fakeSigner struct {
	calls  int
	signed []byte
	err    error
}

func (f *fakeSigner) Sign(ctx context.Context, doc *model.Documento, nit, passwordPri string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.signed, nil
}

type fakeTransmitter struct {
	calls int
	stamp *model.ReceiptStamp
	err   error
}

func (f *fakeTransmitter) Transmit(ctx context.Context, doc *model.Documento, signed []byte, token string) (*model.ReceiptStamp, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stamp, nil
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	return f.token, f.err
}

type fakeNotifier struct {
	calls    int
	statuses []Status
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, rec *Record, rendered, signed []byte) error {
	f.calls++
	f.statuses = append(f.statuses, rec.Status)
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Nit:             "06140101901011",
		KeyPass:         "secret",
		SignTimeout:     time.Second,
		TransmitTimeout: time.Second,
	}
}

func testRequest() builder.Request {
	return builder.Request{
		TipoDte:          model.TipoFactura,
		CodigoGeneracion: "A5E1F8A0-1111-2222-3333-444455556666",
		NumeroControl:    "DTE-01-M001P001-000000000000001",
		Emisor:           builder.Party{Nit: "06140101901011", Nombre: "EMPRESA"},
		Receptor:         builder.Party{Nit: "06140101901012", Nombre: "CLIENTE"},
		Items: []builder.LineItem{
			{Descripcion: "Servicio", Cantidad: 2, PrecioUni: 10.00, TaxRates: []float64{0.13}},
		},
		Condicion: builder.Contado,
	}
}

func newSubmitter(signer *fakeSigner, transmitter *fakeTransmitter, notifier *fakeNotifier, opts ...Option) *Submitter {
	opts = append([]Option{WithClock(testClock), WithNotifier(notifier)}, opts...)
	return New(signer, transmitter, &fakeTokens{token: "token-1"}, testConfig(), opts...)
}

func TestSubmitTransmitted(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{stamp: &model.ReceiptStamp{SelloRecibido: "SELLO-1"}}
	notifier := &fakeNotifier{}

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusTransmitted, rec.Status)
	assert.Equal(t, ModeNormal, rec.Mode)
	assert.Equal(t, "SELLO-1", rec.Stamp.SelloRecibido)
	assert.Equal(t, []byte("signed-jws"), rec.SignedDocument)
	assert.Empty(t, rec.Events)
	assert.Equal(t, 1, signer.calls)
	assert.Equal(t, 1, transmitter.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, 22.60, rec.Document.Resumen.TotalPagar)
}

func TestSubmitValidationFailure(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{}
	notifier := &fakeNotifier{}

	req := testRequest()
	req.Emisor.Nit = "not-a-nit"

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), req)

	var ve *builder.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, StatusDraft, rec.Status)
	assert.Equal(t, 0, signer.calls, "no external call on validation failure")
	assert.Equal(t, 0, transmitter.calls)
	assert.Equal(t, 0, notifier.calls)
}

func TestSubmitSignFailureStopsBeforeTransmission(t *testing.T) {

	signer := &fakeSigner{err: &firmador.SignError{Codigo: "803", Mensaje: []string{"clave incorrecta"}}}
	transmitter := &fakeTransmitter{}
	notifier := &fakeNotifier{}

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), testRequest())

	var se *firmador.SignError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Nil(t, rec.SignedDocument)
	assert.Equal(t, 0, transmitter.calls, "transmission adapter invocation count must be 0")
}

func TestSubmitUnavailableGoesContingency(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{err: &mh.TransmitError{Kind: mh.Unavailable, Err: errors.New("timeout")}}
	notifier := &fakeNotifier{}

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), testRequest())
	require.NoError(t, err, "contingency still counts as sent")

	assert.Equal(t, StatusContingency, rec.Status)
	assert.Equal(t, ModeContingency, rec.Mode)
	assert.Nil(t, rec.Stamp, "no receipt stamp stored")
	require.Len(t, rec.Events, 1, "contingency event appended exactly once")
	assert.Equal(t, rec.CodigoGeneracion, rec.Events[0].CodigoGeneracion)
	assert.Equal(t, 1, notifier.calls, "notification still attempted")
	assert.True(t, rec.Sent())
}

func TestSubmitRejectedByAuthority(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{err: &mh.TransmitError{Kind: mh.Rejected, Descripcion: "DTE INVALIDO"}}
	notifier := &fakeNotifier{}

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), testRequest())

	assert.Error(t, err)
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Nil(t, rec.Stamp)
	assert.Empty(t, rec.Events)
	assert.False(t, rec.Sent())
	// rejection still notifies by default, conveying failure
	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, StatusRejected, notifier.statuses[0])
}

func TestSubmitRejectionNotificationPolicy(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{err: &mh.TransmitError{Kind: mh.Rejected, Descripcion: "DTE INVALIDO"}}
	notifier := &fakeNotifier{}

	s := newSubmitter(signer, transmitter, notifier, WithNotifyOnRejection(false))
	_, err := s.Submit(context.Background(), testRequest())

	assert.Error(t, err)
	assert.Equal(t, 0, notifier.calls)
}

func TestSubmitUnknownTransmitFailure(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{err: &mh.TransmitError{Kind: mh.Unknown, Err: errors.New("401")}}
	notifier := &fakeNotifier{}

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), testRequest())

	assert.Error(t, err)
	assert.Equal(t, StatusSigned, rec.Status, "signed document kept for a fresh top-level retry")
	assert.NotEmpty(t, rec.LastError)
	assert.Empty(t, rec.Events)
}

func TestSubmitAuthUnavailableGoesContingency(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{}
	notifier := &fakeNotifier{}

	s := New(signer, transmitter, &fakeTokens{err: errors.New("connection refused")}, testConfig(),
		WithClock(testClock), WithNotifier(notifier))

	rec, err := s.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusContingency, rec.Status)
	assert.Equal(t, 0, transmitter.calls)
	require.Len(t, rec.Events, 1)
}

func TestSubmitNotificationFailureDoesNotFailSubmission(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{stamp: &model.ReceiptStamp{SelloRecibido: "SELLO-1"}}
	notifier := &fakeNotifier{err: errors.New("smtp down")}

	rec, err := newSubmitter(signer, transmitter, notifier).Submit(context.Background(), testRequest())

	require.NoError(t, err, "notification errors are swallowed after logging")
	assert.Equal(t, StatusTransmitted, rec.Status)
	assert.Equal(t, 1, notifier.calls)
}

func TestSubmitRecordTimestampsFromClock(t *testing.T) {

	signer := &fakeSigner{signed: []byte("signed-jws")}
	transmitter := &fakeTransmitter{stamp: &model.ReceiptStamp{SelloRecibido: "SELLO-1"}}

	rec, err := newSubmitter(signer, transmitter, &fakeNotifier{}).Submit(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, testClock(), rec.CreatedAt)
	assert.Equal(t, testClock(), rec.SignedAt)
	assert.Equal(t, testClock(), rec.TransmittedAt)
}
