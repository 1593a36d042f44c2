// ABOUTME: Tests for the rate service HTTP handler
// ABOUTME: Checks status codes and JSON bodies for known, unknown and missing currencies

package rates

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doGet(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandler_Rate(t *testing.T) {
	h := NewHandler(DefaultTable(), nil)

	rec, body := doGet(t, h, "/rate?currency=usd")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.InDelta(t, 95.5, body["rate"], 1e-9, "rate must be a JSON number")
}

func TestHandler_UnknownCurrency(t *testing.T) {
	h := NewHandler(DefaultTable(), nil)

	for _, target := range []string{"/rate?currency=GBP", "/rate", "/rate?currency="} {
		rec, body := doGet(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "UNKNOWN CURRENCY", body["message"], target)
	}
}

func TestHandler_Health(t *testing.T) {
	rec, body := doGet(t, NewHandler(DefaultTable(), nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestHandler_PanicBecomes500(t *testing.T) {
	h := recoverJSON(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec, body := doGet(t, h, "/rate?currency=USD")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "UNEXPECTED ERROR", body["message"])
}

func TestNewTable(t *testing.T) {
	table, err := NewTable(map[string]float64{"usd": 90, "Eur": 100.5})
	require.NoError(t, err)
	assert.Contains(t, table, "USD")
	assert.Contains(t, table, "EUR")

	_, err = NewTable(map[string]float64{"USD": 0})
	assert.Error(t, err)
}
