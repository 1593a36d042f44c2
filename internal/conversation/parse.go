// ABOUTME: Validation of user-typed amounts and dates
// ABOUTME: Accepts comma decimals and day.month.year dates

package conversation

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// inputDateLayout accepts one or two digit day and month
const inputDateLayout = "2.1.2006"

// maxAmount keeps amounts within NUMERIC(14,2)
var maxAmount = decimal.New(1, 12)

var (
	errNotPositive  = errors.New("amount must be positive")
	errTooPrecise   = errors.New("amount has more than two decimals")
	errAmountTooBig = errors.New("amount is too large")
)

// parseAmount reads a positive amount such as "1500,50" or "1500.50"
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, errNotPositive
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, errTooPrecise
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, errAmountTooBig
	}
	return d, nil
}

// parseDate reads a calendar date written as day.month.year
func parseDate(s string) (time.Time, error) {
	return time.Parse(inputDateLayout, strings.TrimSpace(s))
}
