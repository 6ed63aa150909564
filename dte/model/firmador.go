package model

import "encoding/json"

// SignRequest is the preferred firmador request shape: the DTE travels
// as a structured object under the JsonDTE key.
type SignRequest struct {
	Nit         string     `json:"nit"`
	PasswordPri string     `json:"passwordPri"`
	JsonDTE     *Documento `json:"JsonDTE"`
}

// LegacySignRequest is the compatibility shape some firmador builds
// expect: the DTE serialized to a string under dteJson.
type LegacySignRequest struct {
	Nit         string `json:"nit"`
	PasswordPri string `json:"passwordPri"`
	DteJson     string `json:"dteJson"`
}

// SignResponse is the firmador envelope. On success Body holds the JWS
// as a JSON string; on error it holds a FirmadorError object.
type SignResponse struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
}

const SignStatusOK = "OK"

type FirmadorError struct {
	Codigo  string   `json:"codigo"`
	Mensaje []string `json:"mensaje"`
}

// SignedBody returns the JWS string when the response succeeded.
func (r *SignResponse) SignedBody() (string, bool) {
	if r.Status != SignStatusOK || len(r.Body) == 0 {
		return "", false
	}
	var jws string
	if err := json.Unmarshal(r.Body, &jws); err != nil || jws == "" {
		return "", false
	}
	return jws, true
}

// ErrorBody decodes the structured firmador error, if any.
func (r *SignResponse) ErrorBody() *FirmadorError {
	if len(r.Body) == 0 {
		return nil
	}
	var fe FirmadorError
	if err := json.Unmarshal(r.Body, &fe); err != nil {
		return nil
	}
	return &fe
}
