// ABOUTME: Maps incoming Matrix message bodies onto conversation events
// ABOUTME: Remembers the last menu offered per room so numbered replies become choices

package matrix

import (
	"strconv"
	"strings"
	"sync"

	"maunium.net/go/mautrix/id"

	"github.com/Enne678/RGZ-1SEM/internal/conversation"
)

// toEvent converts a message body into an event. Bodies starting with "/"
// are commands; bodies matching an option of menu are choices; anything
// else is text.
func toEvent(body string, menu []conversation.Option) conversation.Event {
	trimmed := strings.TrimSpace(body)

	if strings.HasPrefix(trimmed, "/") {
		name, _, _ := strings.Cut(trimmed, " ")
		return conversation.Command(name)
	}

	if token, ok := matchOption(trimmed, menu); ok {
		return conversation.Choice(token)
	}

	return conversation.Text(body)
}

// matchOption finds the option selected by s: its 1-based number, its label,
// its token, or the part of the token after the colon.
func matchOption(s string, menu []conversation.Option) (string, bool) {
	if s == "" || len(menu) == 0 {
		return "", false
	}

	if n, err := strconv.Atoi(strings.TrimSuffix(s, ".")); err == nil {
		if n >= 1 && n <= len(menu) {
			return menu[n-1].Token, true
		}
		return "", false
	}

	for _, opt := range menu {
		_, value, _ := strings.Cut(opt.Token, ":")
		if strings.EqualFold(s, opt.Label) || strings.EqualFold(s, opt.Token) || strings.EqualFold(s, value) {
			return opt.Token, true
		}
	}
	return "", false
}

// menuMemory tracks the menu most recently offered in each room
type menuMemory struct {
	mu    sync.Mutex
	menus map[id.RoomID][]conversation.Option
}

func newMenuMemory() *menuMemory {
	return &menuMemory{menus: make(map[id.RoomID][]conversation.Option)}
}

func (m *menuMemory) get(room id.RoomID) []conversation.Option {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.menus[room]
}

// set replaces the room's menu; an empty menu forgets it
func (m *menuMemory) set(room id.RoomID, menu []conversation.Option) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(menu) == 0 {
		delete(m.menus, room)
		return
	}
	m.menus[room] = menu
}
