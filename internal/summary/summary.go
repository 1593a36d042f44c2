// ABOUTME: Renders a currency-converted summary of ledger entries
// ABOUTME: Converts every amount with the quote, totals income and expense, formats the listing

package summary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Enne678/RGZ-1SEM/internal/rates"
	"github.com/Enne678/RGZ-1SEM/internal/store"
)

// NoEntriesMessage is rendered instead of a summary when there is nothing to list
const NoEntriesMessage = "You have no operations yet."

// NoCommentPlaceholder stands in for an empty comment
const NoCommentPlaceholder = "No comment"

// ErrInvalidQuote is returned for a quote whose rate is not positive
var ErrInvalidQuote = errors.New("quote rate must be positive")

// displayLayout is the day.month.year date format shown to users
const displayLayout = "02.01.2006"

// Line is one converted entry
type Line struct {
	Entry     *store.Entry
	Converted decimal.Decimal
}

// Summary holds converted entries and totals. Totals are exact; rounding
// happens only when formatting.
type Summary struct {
	Currency     string
	Lines        []Line
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// Summarize converts entries with quote, keeping their order
func Summarize(quote rates.Quote, entries []*store.Entry) (Summary, error) {
	if !quote.Valid() {
		return Summary{}, fmt.Errorf("summarizing in %s: %w", quote.Currency, ErrInvalidQuote)
	}
	s := Summary{
		Currency:     quote.Currency,
		Lines:        make([]Line, 0, len(entries)),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, e := range entries {
		converted := quote.Convert(e.Amount)
		s.Lines = append(s.Lines, Line{Entry: e, Converted: converted})
		switch e.Kind {
		case store.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(converted)
		case store.KindExpense:
			s.TotalExpense = s.TotalExpense.Add(converted)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s, nil
}

// Render produces the text shown to the user for a summary request.
// An invalid quote is an error even when there are no entries.
func Render(currency string, quote rates.Quote, entries []*store.Entry) (string, error) {
	if quote.Currency == "" {
		quote.Currency = rates.Normalize(currency)
	}
	if !quote.Valid() {
		return "", fmt.Errorf("rendering %s: %w", quote.Currency, ErrInvalidQuote)
	}
	if len(entries) == 0 {
		return NoEntriesMessage, nil
	}
	s, err := Summarize(quote, entries)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// String formats the summary as a listing followed by totals
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your operations (in %s):\n\n", s.Currency)

	for _, l := range s.Lines {
		marker, sign := "📈", "+"
		if l.Entry.Kind == store.KindExpense {
			marker, sign = "📉", "-"
		}
		comment := l.Entry.Comment
		if strings.TrimSpace(comment) == "" {
			comment = NoCommentPlaceholder
		}
		fmt.Fprintf(&b, "%s %s | %s%s %s | %s\n",
			marker,
			l.Entry.Date.Format(displayLayout),
			sign,
			l.Converted.StringFixed(2),
			s.Currency,
			comment,
		)
	}

	fmt.Fprintf(&b, "\n💰 Total income: %s %s\n", s.TotalIncome.StringFixed(2), s.Currency)
	fmt.Fprintf(&b, "💸 Total expenses: %s %s\n", s.TotalExpense.StringFixed(2), s.Currency)
	fmt.Fprintf(&b, "💵 Balance: %s %s", s.Balance.StringFixed(2), s.Currency)
	return b.String()
}
