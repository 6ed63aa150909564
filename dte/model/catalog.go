package model

// MH catalog codes used by the identification and summary blocks.
// Codes follow the DTE normative catalogs (CAT-001 .. CAT-016).

// Document types (CAT-002).
const (
	TipoFactura           = "01"
	TipoCreditoFiscal     = "03"
	TipoComprobanteRetenc = "04"
	TipoNotaCredito       = "08"
)

// Destination environment (CAT-001).
const (
	AmbienteTest       = "00"
	AmbienteProduccion = "01"
)

// Billing model (CAT-003).
const (
	ModeloPrevio   = 1
	ModeloDiferido = 2
)

// Transmission type (CAT-004).
const (
	TransmisionNormal       = 1
	TransmisionContingencia = 2
)

// Operation condition (CAT-016).
const (
	CondicionContado = 1
	CondicionCredito = 2
	CondicionOtro    = 3
)

// Item type (CAT-011).
const (
	ItemBien     = 1
	ItemServicio = 2
	ItemAmbos    = 3
)

// SchemaVersion returns the DTE JSON schema version for a document type.
func SchemaVersion(tipoDte string) int {
	switch tipoDte {
	case TipoCreditoFiscal, TipoNotaCredito:
		return 3
	default:
		return 1
	}
}
