// Package rates looks up exchange rates and serves them.
//
// A Quote's Rate is the number of base-currency units per one unit of the
// quoted currency, so a stored amount converts with amount / Rate.
//
// # Client
//
// Client performs exactly one HTTP GET per lookup:
//
//	GET <endpoint>?currency=USD
//	200 {"rate": 95.5}
//	400 {"message": "UNKNOWN CURRENCY"}
//
// Timeouts, connection errors, non-200 statuses and missing rates all wrap
// ErrUnavailable.
//
// # Service
//
// NewHandler serves a static Table with the same wire format plus
// GET /health. cmd/rate-service runs it as a standalone process.
package rates
