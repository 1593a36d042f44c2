// ABOUTME: Exchange quote types shared by the rate client and the rate service
// ABOUTME: A rate is base-currency units per one unit of the quoted currency

package rates

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned for every failed lookup. Unknown currencies and
// unreachable services are deliberately indistinguishable to callers.
var ErrUnavailable = errors.New("exchange rate unavailable")

// Quote converts stored base amounts for display: display = stored / Rate.
// Rate must be positive; the zero Quote is not usable.
type Quote struct {
	Currency string
	Rate     decimal.Decimal
}

// BaseQuote is the identity quote for the base currency
func BaseQuote(currency string) Quote {
	return Quote{Currency: Normalize(currency), Rate: decimal.NewFromInt(1)}
}

// Valid reports whether the quote can convert amounts
func (q Quote) Valid() bool {
	return q.Rate.IsPositive()
}

// Convert returns amount expressed in the quote currency. It panics on an
// invalid quote, so callers check Valid first.
func (q Quote) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(q.Rate)
}

// Normalize upper-cases and trims a currency code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup fetches quotes for currency codes
type Lookup interface {
	Lookup(ctx context.Context, currency string) (Quote, error)
}
