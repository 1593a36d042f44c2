// Package logging builds the slog logger used by the finance-bot binaries.
//
// The "json" format writes one JSON object per record. Any other format
// writes short colorized lines for a terminal:
//
//	10:04:05 INF entry recorded component=conversation identity=!room:example.org
package logging
