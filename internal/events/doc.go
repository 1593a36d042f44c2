// Package events publishes notifications about ledger writes.
//
// The bot emits an EntryRecorded after every persisted entry. Publishing is
// best effort: the conversation outcome never depends on it. KafkaPublisher
// sends JSON values keyed by account ID; Nop is used when no broker is
// configured.
package events
