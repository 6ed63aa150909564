package mh

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/go-faster/errors"

	"github.com/facturasv/go-dte-client/dte"
	"github.com/facturasv/go-dte-client/dte/api"
	"github.com/facturasv/go-dte-client/dte/model"
)

type TransmitService interface {
	// Transmit posts the signed document to /recepciondte and returns
	// the reception stamp. Failures come back as *TransmitError with a
	// Kind the workflow dispatches on.
	Transmit(ctx context.Context, doc *model.Documento, signed []byte, token string) (*model.ReceiptStamp, error)
}

type transmit struct {
	client  api.Client
	baseURL string
}

func NewTransmitService(client api.Client, mhURL string) TransmitService {
	return &transmit{
		client:  client,
		baseURL: strings.TrimRight(mhURL, "/"),
	}
}

func (t *transmit) Transmit(ctx context.Context, doc *model.Documento, signed []byte, token string) (*model.ReceiptStamp, error) {

	url := t.baseURL + "/recepciondte"
	ident := doc.Identificacion

	logger.Debugf("transmitting DTE %s to MH", ident.CodigoGeneracion)

	req := &model.ReceptionRequest{
		Ambiente:         ident.Ambiente,
		IdEnvio:          1,
		Version:          ident.Version,
		TipoDte:          ident.TipoDte,
		Documento:        string(signed),
		CodigoGeneracion: ident.CodigoGeneracion,
	}

	res := &model.ReceptionResponse{}
	if err := t.client.PostJSONAuth(ctx, url, token, req, res); err != nil {
		return nil, classify(err)
	}

	switch {
	case res.Estado == model.EstadoProcesado && res.SelloRecibido != "":
		logger.Infof("DTE %s accepted, sello %s", ident.CodigoGeneracion, res.SelloRecibido)
		return &model.ReceiptStamp{
			SelloRecibido:    res.SelloRecibido,
			CodigoGeneracion: res.CodigoGeneracion,
			FhProcesamiento:  res.FhProcesamiento,
			DescripcionMsg:   res.DescripcionMsg,
		}, nil

	case res.Estado == model.EstadoRechazado:
		return nil, &TransmitError{
			Kind:          Rejected,
			Estado:        res.Estado,
			Descripcion:   res.DescripcionMsg,
			Observaciones: res.Observaciones,
		}

	default:
		return nil, &TransmitError{
			Kind:        Unknown,
			Estado:      res.Estado,
			Descripcion: "reception response carries no sello",
		}
	}
}

// classify maps a transport or HTTP level failure onto an ErrorKind.
// Connection failures and 5xx statuses mean the authority endpoint is
// unreachable; an explicit RECHAZADO body is a business rejection.
func classify(err error) *TransmitError {

	var reqErr *api.RequestError
	if !goerrors.As(err, &reqErr) {
		// no HTTP status at all: timeout or connect failure
		return &TransmitError{Kind: Unavailable, Err: err}
	}

	if reqErr.ServerError() {
		return &TransmitError{Kind: Unavailable, Err: err}
	}

	if reqErr.StatusCode == http.StatusUnauthorized {
		return &TransmitError{Kind: Unknown, Err: dte.ErrUnauthorized}
	}

	var res model.ReceptionResponse
	if decodeBody(reqErr.Body, &res) && res.Estado == model.EstadoRechazado {
		return &TransmitError{
			Kind:          Rejected,
			Estado:        res.Estado,
			Descripcion:   res.DescripcionMsg,
			Observaciones: res.Observaciones,
			Err:           err,
		}
	}

	return &TransmitError{Kind: Unknown, Err: err}
}

func decodeBody(body string, v interface{}) bool {
	if body == "" {
		return false
	}
	return json.Unmarshal([]byte(body), v) == nil
}
