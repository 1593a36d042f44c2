// Package conversation implements the dialog engine of the finance bot.
//
// # Overview
//
// The Engine receives events from a transport and answers each with a
// Response. An event is one of:
//
//   - Command(name): /start, /reg, /add_operation, /operations, /cancel
//   - Text(value): a typed message
//   - Choice(token): a selection from the menu of the last prompt
//
// Every identity (chat room) has at most one active flow, kept in a
// session.Store:
//
//	registration   await_name
//	add_entry      await_type -> await_amount -> await_date -> await_comment
//	view_entries   await_currency
//
// Steps only move forward. The last step performs the flow's ledger or rate
// work and then clears the state.
//
// # Routing
//
// /cancel always ends the active flow. Any other event goes to the active
// step first; when no flow is active only commands are answered and
// everything else is ignored.
//
// A step that receives the wrong event shape, or input that fails
// validation, repeats its question and keeps its state.
//
// # Failures
//
// Ledger and rate calls run under Config.Timeout. A failed or timed-out call,
// or a panic inside a collaborator, produces a generic message and resets the
// flow. Failed rate lookups produce MsgRateUnavailable and skip the ledger
// read entirely.
//
// # Concurrency
//
// Handle holds the identity's session lock for the whole turn, so two events
// from one room can never complete the same entry twice. Different rooms
// proceed in parallel.
package conversation
