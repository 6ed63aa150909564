package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/facturasv/go-dte-client/dte/api"
	"github.com/facturasv/go-dte-client/dte/builder"
	"github.com/facturasv/go-dte-client/dte/config"
	"github.com/facturasv/go-dte-client/dte/firmador"
	"github.com/facturasv/go-dte-client/dte/mh"
	"github.com/facturasv/go-dte-client/dte/qr"
	"github.com/facturasv/go-dte-client/dte/sequence"
	"github.com/facturasv/go-dte-client/dte/submission"
	"github.com/facturasv/go-dte-client/dte/util"
)

func main() {

	if util.DebugEnabled() {
		logrus.SetLevel(logrus.DebugLevel)
	}

	params, err := config.FromYAMLFile(util.GetEnvOrFailed("DTE_CONFIG"))
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load(params)
	if err != nil {
		panic(err)
	}

	httpClient := api.New(cfg.TransmitTimeout)

	signer := firmador.New(httpClient, cfg.FirmadorURL)
	transmitter := mh.NewTransmitService(httpClient, cfg.MHURL)
	authService := mh.NewAuthService(api.New(cfg.AuthTimeout), cfg.MHURL)
	tokens := mh.NewTokenProvider(authService, cfg.APIUser, cfg.APIPassword)

	seq, err := sequence.New("M001", "P001")
	if err != nil {
		panic(err)
	}

	submitter := submission.New(signer, transmitter, tokens, cfg,
		submission.WithRenderer(qr.Renderer{}),
	)

	controlNumber, err := seq.ControlNumber("01")
	if err != nil {
		panic(err)
	}

	req := builder.Request{
		TipoDte:          "01",
		Ambiente:         cfg.Ambiente,
		CodigoGeneracion: seq.GenerationCode(),
		NumeroControl:    controlNumber,
		Emisor: builder.Party{
			Nit:           cfg.Nit,
			Nrc:           "123456",
			Nombre:        "EMPRESA DE PRUEBAS SA DE CV",
			CodActividad:  "62010",
			DescActividad: "Programación informática",
			Correo:        "facturacion@empresa.example",
		},
		Receptor: builder.Party{
			Nit:           "06140101901011",
			TipoDocumento: "36",
			Nombre:        "CLIENTE DE PRUEBA",
			Correo:        "cliente@example.com",
		},
		Items: []builder.LineItem{
			{Descripcion: "Servicio profesional", Cantidad: 2, PrecioUni: 10.00, TaxRates: []float64{0.13}},
		},
		Condicion:   builder.Contado,
		ValorLetras: "VEINTIDOS 60/100 DOLARES",
	}

	rec, err := submitter.Submit(context.Background(), req)
	if err != nil {
		fmt.Printf("submission ended with error: %v\n", err)
	}

	fmt.Printf("status: %s mode: %s\n", rec.Status, rec.Mode)
	if rec.Stamp != nil {
		fmt.Printf("sello: %s\n", rec.Stamp.SelloRecibido)
	}
}
