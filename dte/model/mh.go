package model

// AuthResponse covers both token envelopes the MH sandbox returns:
// {"status": ..., "body": {"token": ...}} and the flat {"token": ...}.
type AuthResponse struct {
	Status string    `json:"status"`
	Body   *AuthBody `json:"body"`
	Token  string    `json:"token"`
}

type AuthBody struct {
	Token string   `json:"token"`
	Roles []string `json:"roles"`
}

// BearerToken extracts the token from whichever envelope arrived,
// stripping an eventual "Bearer " prefix.
func (r *AuthResponse) BearerToken() string {
	token := r.Token
	if r.Body != nil && r.Body.Token != "" {
		token = r.Body.Token
	}
	const prefix = "Bearer "
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		token = token[len(prefix):]
	}
	return token
}

// ReceptionRequest is the envelope posted to /recepciondte. Documento
// carries the signed JWS produced by the firmador.
type ReceptionRequest struct {
	Ambiente         string `json:"ambiente"`
	IdEnvio          int    `json:"idEnvio"`
	Version          int    `json:"version"`
	TipoDte          string `json:"tipoDte"`
	Documento        string `json:"documento"`
	CodigoGeneracion string `json:"codigoGeneracion"`
}

// Reception processing states.
const (
	EstadoProcesado = "PROCESADO"
	EstadoRechazado = "RECHAZADO"
)

type ReceptionResponse struct {
	Version          int      `json:"version"`
	Ambiente         string   `json:"ambiente"`
	VersionApp       int      `json:"versionApp"`
	Estado           string   `json:"estado"`
	CodigoGeneracion string   `json:"codigoGeneracion"`
	SelloRecibido    string   `json:"selloRecibido"`
	FhProcesamiento  string   `json:"fhProcesamiento"`
	ClasificaMsg     string   `json:"clasificaMsg"`
	CodigoMsg        string   `json:"codigoMsg"`
	DescripcionMsg   string   `json:"descripcionMsg"`
	Observaciones    []string `json:"observaciones"`
}

// ReceiptStamp is the authority acknowledgment persisted on a
// successful transmission.
type ReceiptStamp struct {
	SelloRecibido    string
	CodigoGeneracion string
	FhProcesamiento  string
	DescripcionMsg   string
}
