package firmador

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturasv/go-dte-client/dte/api"
	"github.com/facturasv/go-dte-client/dte/builder"
	"github.com/facturasv/go-dte-client/dte/model"
)

const testJWS = "eyJhbGciOiJSUzUxMiJ9.payload.signature"

func testDocument(t *testing.T) *model.Documento {
	t.Helper()

	doc, err := builder.Build(builder.Request{
		TipoDte:          model.TipoFactura,
		CodigoGeneracion: "A5E1F8A0-1111-2222-3333-444455556666",
		NumeroControl:    "DTE-01-M001P001-000000000000001",
		Emisor:           builder.Party{Nit: "06140101901011", Nombre: "EMPRESA"},
		Receptor:         builder.Party{Nit: "06140101901012", Nombre: "CLIENTE"},
		Items: []builder.LineItem{
			{Descripcion: "Servicio", Cantidad: 1, PrecioUni: 10, TaxRates: []float64{0.13}},
		},
	}, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return doc
}

func newService(t *testing.T, handler http.HandlerFunc) (Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(api.New(5*time.Second), srv.URL), srv
}

func TestSignFirstAttemptSucceeds(t *testing.T) {

	var calls int
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++

		var body map[string]json.RawMessage
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Contains(t, body, "JsonDTE")
		assert.Contains(t, body, "nit")
		assert.Contains(t, body, "passwordPri")

		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "body": testJWS})
	})

	signed, err := svc.Sign(context.Background(), testDocument(t), "06140101901011", "secret")
	require.NoError(t, err)

	assert.Equal(t, []byte(testJWS), signed)
	assert.Equal(t, 1, calls)
}

func TestSignFallsBackToLegacyShapeOnce(t *testing.T) {

	var calls int
	var legacyPayload string
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		raw, _ := io.ReadAll(r.Body)

		var body map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(raw, &body))

		if _, hasLegacy := body["dteJson"]; !hasLegacy {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "ERROR",
				"body":   map[string]any{"codigo": "809", "mensaje": []string{"JsonDTE no soportado"}},
			})
			return
		}

		// legacy shape carries the DTE as a string needing a JSON parse
		assert.NoError(t, json.Unmarshal(body["dteJson"], &legacyPayload))
		var doc model.Documento
		assert.NoError(t, json.Unmarshal([]byte(legacyPayload), &doc))

		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "body": testJWS})
	})

	signed, err := svc.Sign(context.Background(), testDocument(t), "06140101901011", "secret")
	require.NoError(t, err)

	assert.Equal(t, []byte(testJWS), signed)
	assert.Equal(t, 2, calls, "exactly one fallback attempt")
	assert.Contains(t, legacyPayload, "identificacion")
}

func TestSignBothShapesFail(t *testing.T) {

	var calls int
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ERROR",
			"body":   map[string]any{"codigo": "803", "mensaje": []string{"clave privada incorrecta"}},
		})
	})

	signed, err := svc.Sign(context.Background(), testDocument(t), "06140101901011", "bad-password")

	assert.Nil(t, signed)
	var se *SignError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "803", se.Codigo)
	assert.Contains(t, se.Mensaje, "clave privada incorrecta")
	assert.Equal(t, 2, calls, "no more than two network calls total")
}

func TestSignStructuredErrorWithHTTP200(t *testing.T) {

	// some firmador builds answer 200 with status ERROR
	var calls int
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ERROR",
			"body":   map[string]any{"codigo": "809", "mensaje": []string{"formato invalido"}},
		})
	})

	_, err := svc.Sign(context.Background(), testDocument(t), "06140101901011", "secret")

	var se *SignError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, calls)
}

func TestSignNetworkErrorNoRetry(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	svc := New(api.New(2*time.Second), srv.URL)
	_, err := svc.Sign(context.Background(), testDocument(t), "06140101901011", "secret")

	var se *SignError
	require.ErrorAs(t, err, &se)
}

func TestSignMissingSignedContent(t *testing.T) {

	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "body": ""})
	})

	signed, err := svc.Sign(context.Background(), testDocument(t), "06140101901011", "secret")

	assert.Nil(t, signed)
	var se *SignError
	require.ErrorAs(t, err, &se)
}
