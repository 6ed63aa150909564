package submission

import (
	"time"

	"github.com/facturasv/go-dte-client/dte/model"
)

// Status is the persisted submission state. Transitions are driven
// solely by the Submitter; collaborators only read the record.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSigned      Status = "signed"
	StatusTransmitted Status = "transmitted"
	StatusContingency Status = "contingency"
	StatusRejected    Status = "rejected"
)

// Mode records how the document reached (or will reach) MH.
type Mode string

const (
	ModeNormal      Mode = "normal"
	ModeContingency Mode = "contingency"
)

// ContingencyEvent is an append-only log entry created when the MH
// endpoint was unreachable at transmission time. Never mutated after
// creation.
type ContingencyEvent struct {
	CodigoGeneracion string
	OccurredAt       time.Time
	Description      string
}

// Record tracks one submission attempt from draft to its terminal
// state. Each attempt owns a freshly created record, so no locking is
// needed.
type Record struct {
	CodigoGeneracion string
	NumeroControl    string

	Status Status
	Mode   Mode

	Document       *model.Documento
	SignedDocument []byte
	Stamp          *model.ReceiptStamp

	Events []ContingencyEvent

	CreatedAt     time.Time
	SignedAt      time.Time
	TransmittedAt time.Time

	// LastError keeps the diagnostic of the failure that ended the
	// attempt, if any.
	LastError string
}

// Sent reports whether the document is considered delivered from the
// caller's point of view; a contingency record still counts as sent.
func (r *Record) Sent() bool {
	return r.Status == StatusTransmitted || r.Status == StatusContingency
}
