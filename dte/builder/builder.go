// Package builder turns an invoice-like request into the canonical DTE
// payload: identification, parties, line items and the computed summary
// block. Build is deterministic for a fixed clock value.
package builder

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/facturasv/go-dte-client/dte"
	"github.com/facturasv/go-dte-client/dte/model"
)

var logger = logrus.WithField("component", "dte.builder")

// IvaRate is the Salvadoran VAT rate applied to taxed lines.
var IvaRate = decimal.NewFromFloat(0.13)

// rateTolerance is how close a line's rate must be to 13% to count as
// taxed.
const rateTolerance = 0.001

type Condition int

const (
	Contado Condition = iota
	Credito
)

type Party struct {
	Nit             string
	Nrc             string
	Nombre          string
	NombreComercial string
	CodActividad    string
	DescActividad   string
	TipoDocumento   string
	Direccion       model.Direccion
	Telefono        string
	Correo          string
}

type LineItem struct {
	Codigo      string
	Descripcion string
	Cantidad    float64
	PrecioUni   float64
	TipoItem    int
	UniMedida   int
	// TaxRates holds the fractional tax rates attached to the line,
	// e.g. 0.13 for IVA.
	TaxRates []float64
}

// Request is the immutable submission input.
type Request struct {
	TipoDte          string
	Ambiente         string
	CodigoGeneracion string
	NumeroControl    string
	Moneda           string

	Emisor   Party
	Receptor Party
	Items    []LineItem

	Condicion     Condition
	Observaciones string
	ValorLetras   string
}

// Build produces the canonical DTE document. The emission timestamp is
// taken from the caller-supplied now, never from the wall clock.
func Build(req Request, now time.Time) (*model.Documento, error) {

	nit, err := dte.NormalizeNit(req.Emisor.Nit)
	if err != nil {
		return nil, newValidationError("emisor.nit", req.Emisor.Nit, err.Error())
	}

	if len(req.Items) == 0 {
		return nil, newValidationError("items", nil, "at least one line item is required")
	}

	cuerpo := make([]model.Item, 0, len(req.Items))
	totalGravada := decimal.Zero
	totalExenta := decimal.Zero
	totalIva := decimal.Zero

	for i, line := range req.Items {
		if line.Cantidad < 0 {
			return nil, newValidationError("items.cantidad", line.Cantidad, "quantity must not be negative")
		}
		if line.PrecioUni < 0 {
			return nil, newValidationError("items.precioUni", line.PrecioUni, "unit price must not be negative")
		}

		qty := decimal.NewFromFloat(line.Cantidad)
		price := decimal.NewFromFloat(line.PrecioUni)
		subtotal := qty.Mul(price).Round(2)

		item := model.Item{
			NumItem:     i + 1,
			TipoItem:    tipoItemOrDefault(line.TipoItem),
			Codigo:      line.Codigo,
			Descripcion: line.Descripcion,
			Cantidad:    line.Cantidad,
			UniMedida:   uniMedidaOrDefault(line.UniMedida),
			PrecioUni:   price.Round(2).InexactFloat64(),
		}

		if taxed(line.TaxRates) {
			iva := subtotal.Mul(IvaRate).Round(2)
			item.VentaGravada = subtotal.InexactFloat64()
			item.IvaItem = iva.InexactFloat64()
			totalGravada = totalGravada.Add(subtotal)
			totalIva = totalIva.Add(iva)
		} else {
			item.VentaExenta = subtotal.InexactFloat64()
			totalExenta = totalExenta.Add(subtotal)
		}

		cuerpo = append(cuerpo, item)
	}

	totalGravada = totalGravada.Round(2)
	totalExenta = totalExenta.Round(2)
	totalIva = totalIva.Round(2)
	totalPagar := totalGravada.Add(totalIva).Round(2)
	subTotalVentas := totalGravada.Add(totalExenta).Round(2)

	doc := &model.Documento{
		Identificacion: model.Identificacion{
			Version:          model.SchemaVersion(req.TipoDte),
			Ambiente:         ambienteOrDefault(req.Ambiente),
			TipoDte:          req.TipoDte,
			NumeroControl:    req.NumeroControl,
			CodigoGeneracion: strings.ToUpper(req.CodigoGeneracion),
			TipoModelo:       model.ModeloPrevio,
			TipoOperacion:    model.TransmisionNormal,
			FecEmi:           now.Format("2006-01-02"),
			HorEmi:           now.Format("15:04:05"),
			TipoMoneda:       monedaOrDefault(req.Moneda),
		},
		Emisor: model.Emisor{
			Nit:                 nit,
			Nrc:                 req.Emisor.Nrc,
			Nombre:              req.Emisor.Nombre,
			CodActividad:        req.Emisor.CodActividad,
			DescActividad:       req.Emisor.DescActividad,
			NombreComercial:     req.Emisor.NombreComercial,
			TipoEstablecimiento: "01",
			Direccion:           req.Emisor.Direccion,
			Telefono:            req.Emisor.Telefono,
			Correo:              req.Emisor.Correo,
		},
		Receptor: model.Receptor{
			TipoDocumento: req.Receptor.TipoDocumento,
			NumDocumento:  req.Receptor.Nit,
			Nrc:           req.Receptor.Nrc,
			Nombre:        req.Receptor.Nombre,
			CodActividad:  req.Receptor.CodActividad,
			DescActividad: req.Receptor.DescActividad,
			Direccion:     &req.Receptor.Direccion,
			Telefono:      req.Receptor.Telefono,
			Correo:        req.Receptor.Correo,
		},
		CuerpoDocumento: cuerpo,
		Resumen: model.Resumen{
			TotalExenta:         totalExenta.InexactFloat64(),
			TotalGravada:        totalGravada.InexactFloat64(),
			SubTotalVentas:      subTotalVentas.InexactFloat64(),
			SubTotal:            subTotalVentas.InexactFloat64(),
			TotalIva:            totalIva.InexactFloat64(),
			MontoTotalOperacion: subTotalVentas.Add(totalIva).Round(2).InexactFloat64(),
			TotalPagar:          totalPagar.InexactFloat64(),
			TotalLetras:         req.ValorLetras,
			CondicionOperacion:  condicionCode(req.Condicion),
		},
	}

	if req.Observaciones != "" {
		doc.Extension = &model.Extension{Observaciones: req.Observaciones}
	}
	if req.ValorLetras != "" {
		doc.Apendice = []model.Apendice{{
			Campo:    "valorLetras",
			Etiqueta: "Valor en Letras",
			Valor:    req.ValorLetras,
		}}
	}

	logger.Debugf("built DTE %s: totalPagar=%s", doc.Identificacion.CodigoGeneracion, totalPagar)
	return doc, nil
}

func taxed(rates []float64) bool {
	for _, r := range rates {
		if math.Abs(r-0.13) <= rateTolerance {
			return true
		}
	}
	return false
}

func condicionCode(c Condition) int {
	if c == Credito {
		return model.CondicionCredito
	}
	return model.CondicionContado
}

func ambienteOrDefault(a string) string {
	if a == "" {
		return model.AmbienteTest
	}
	return a
}

func monedaOrDefault(m string) string {
	if m == "" {
		return "USD"
	}
	return m
}

func tipoItemOrDefault(t int) int {
	if t == 0 {
		return model.ItemBien
	}
	return t
}

func uniMedidaOrDefault(u int) int {
	if u == 0 {
		return 59 // unidad
	}
	return u
}
