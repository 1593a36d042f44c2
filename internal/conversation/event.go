// ABOUTME: Inbound events and outbound responses exchanged with the transport
// ABOUTME: Events are commands, free text or menu choices; responses carry text and a menu

package conversation

import "strings"

// EventKind is the shape of an inbound event
type EventKind int

// EventKind values
const (
	KindCommand EventKind = iota + 1
	KindText
	KindChoice
)

func (k EventKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindChoice:
		return "choice"
	}
	return "unknown"
}

// Event is one inbound user action
type Event struct {
	Kind  EventKind
	Value string
}

// Command builds a command event. A leading slash is ignored.
func Command(name string) Event {
	return Event{Kind: KindCommand, Value: normalizeCommand(name)}
}

// Text builds a free-text event
func Text(value string) Event {
	return Event{Kind: KindText, Value: value}
}

// Choice builds a menu selection event carrying an option token
func Choice(token string) Event {
	return Event{Kind: KindChoice, Value: token}
}

func normalizeCommand(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}

// Option is one selectable menu entry. Token is opaque to the transport.
type Option struct {
	Token string
	Label string
}

// Response is the reply to an event. The zero Response means no reply.
type Response struct {
	Text string
	Menu []Option
}

// Empty reports whether there is nothing to send
func (r Response) Empty() bool {
	return r.Text == "" && len(r.Menu) == 0
}

func reply(text string) Response {
	return Response{Text: text}
}
