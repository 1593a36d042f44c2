// Package matrix connects Matrix chat rooms to the conversation engine.
//
// Each room is one conversation identity. Text messages are mapped to
// events before they reach the engine:
//
//   - "/reg", "/operations" and other slash-prefixed bodies become commands
//   - a reply matching the last menu offered in the room (its number, label
//     or value, case-insensitively) becomes a choice
//   - everything else is plain text
//
// Messages of one room are handled one at a time in arrival order; rooms are
// handled concurrently. Replies carry a plain body and an HTML rendering;
// menus are sent as numbered lists.
//
// Encryption is optional. SetupCrypto enables it after Login, storing keys in
// a SQLite database in the data directory.
package matrix
