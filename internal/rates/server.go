// ABOUTME: HTTP handler for the exchange rate service
// ABOUTME: Serves static rates on GET /rate and liveness on GET /health via chi

package rates

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

// Table maps upper-case currency codes to rates
type Table map[string]decimal.Decimal

// DefaultTable holds the rates the service ships with (RUB per unit)
func DefaultTable() Table {
	return Table{
		"USD": decimal.RequireFromString("95.50"),
		"EUR": decimal.RequireFromString("103.25"),
	}
}

// NewTable builds a Table from configured float rates, normalizing codes.
func NewTable(raw map[string]float64) (Table, error) {
	t := make(Table, len(raw))
	for code, rate := range raw {
		if rate <= 0 {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		t[Normalize(code)] = decimal.NewFromFloat(rate)
	}
	return t, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// NewHandler returns the rate service router
func NewHandler(table Table, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rate-service")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoverJSON(logger))

	r.Get("/rate", func(w http.ResponseWriter, req *http.Request) {
		code := Normalize(req.URL.Query().Get("currency"))
		rate, ok := table[code]
		if code == "" || !ok {
			logger.Debug("unknown currency requested", "currency", code)
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "UNKNOWN CURRENCY"})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Rate json.Number `json:"rate"`
		}{Rate: json.Number(rate.String())})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})

	return r
}

// recoverJSON turns handler panics into a 500 with a JSON error body
func recoverJSON(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in rate handler",
						"panic", rec,
						"request_id", middleware.GetReqID(r.Context()),
					)
					writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "UNEXPECTED ERROR"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
