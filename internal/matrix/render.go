// ABOUTME: Formats conversation responses as Matrix message content
// ABOUTME: Produces a plain body plus goldmark-rendered HTML with menus as numbered lists

package matrix

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"maunium.net/go/mautrix/event"

	"github.com/Enne678/RGZ-1SEM/internal/conversation"
)

// markdown keeps single newlines as line breaks; raw HTML in replies is dropped
var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// plainBody returns the text of resp followed by its numbered menu
func plainBody(resp conversation.Response) string {
	var b strings.Builder
	b.WriteString(resp.Text)
	if len(resp.Menu) > 0 {
		if resp.Text != "" {
			b.WriteString("\n\n")
		}
		for i, opt := range resp.Menu {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d. %s", i+1, opt.Label)
		}
	}
	return b.String()
}

// messageContent builds the m.room.message content for resp
func messageContent(resp conversation.Response) *event.MessageEventContent {
	body := plainBody(resp)
	content := &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    body,
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err == nil {
		formatted := strings.TrimSpace(buf.String())
		if formatted != "" {
			content.Format = event.FormatHTML
			content.FormattedBody = formatted
		}
	}
	return content
}
