// Package summary converts ledger entries into a display currency and
// formats them for the user.
//
// Amounts convert as stored / rate. Totals are computed from the exact
// converted values and rounded to two places only when printed.
package summary
