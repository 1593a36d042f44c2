// Package dedupe remembers recently seen event IDs so that events
// redelivered by a sync loop are handled only once.
package dedupe
