// Package session keeps the in-progress dialog of every conversation.
//
// Each identity (a chat room) has at most one State: the active Flow, the
// Step it is waiting on, and the fields collected so far. States live only
// in memory; a restart sends every user back to the start of their flow.
//
// Callers serialize the turns of one identity with Lock:
//
//	unlock := sessions.Lock(roomID)
//	defer unlock()
//	st := sessions.Get(roomID)
//	...
//	sessions.Set(roomID, st)
//
// Dialogs untouched for the idle timeout are treated as abandoned.
package session
