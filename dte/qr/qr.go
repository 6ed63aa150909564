// Package qr builds the MH public consultation link for an emitted DTE
// and renders it as a QR code image.
package qr

import (
	"context"
	"fmt"
	"net/url"
	"time"

	goerrors "github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/facturasv/go-dte-client/dte/submission"
)

var logger = logrus.WithField("component", "dte.qr")

const consultaBaseURL = "https://admin.factura.gob.sv/consultaPublica"

// ConsultationURL builds the public verification link printed on the
// human-readable DTE.
func ConsultationURL(ambiente, codigoGeneracion string, fecEmi time.Time) (string, error) {
	if len(codigoGeneracion) != 36 {
		return "", goerrors.Errorf("codigoGeneracion must be 36 characters, got %d", len(codigoGeneracion))
	}

	q := url.Values{}
	q.Set("ambiente", ambiente)
	q.Set("codGen", codigoGeneracion)
	q.Set("fechaEmi", fecEmi.Format("2006-01-02"))

	return consultaBaseURL + "?" + q.Encode(), nil
}

// Encode renders content as a 300x300 PNG QR code.
func Encode(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 300)
}

// ConsultationQR returns the PNG QR for a document's consultation link.
func ConsultationQR(ambiente, codigoGeneracion string, fecEmi time.Time) ([]byte, error) {
	link, err := ConsultationURL(ambiente, codigoGeneracion, fecEmi)
	if err != nil {
		return nil, err
	}
	return Encode(link)
}

// Renderer implements submission.Renderer with the consultation QR as
// the rendered artifact. Hosts with a full report engine replace it.
type Renderer struct{}

func (Renderer) Render(ctx context.Context, rec *submission.Record) ([]byte, error) {
	if rec.Document == nil {
		return nil, goerrors.New("record carries no document")
	}

	ident := rec.Document.Identificacion
	fecEmi, err := time.Parse("2006-01-02", ident.FecEmi)
	if err != nil {
		return nil, fmt.Errorf("parse fecEmi %q: %w", ident.FecEmi, err)
	}

	logger.Debugf("rendering consultation QR for DTE %s", ident.CodigoGeneracion)
	return ConsultationQR(ident.Ambiente, ident.CodigoGeneracion, fecEmi)
}
