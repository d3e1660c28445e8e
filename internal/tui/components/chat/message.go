package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"graphchat/internal/state"
	"graphchat/internal/tui/components/chart"
	"graphchat/internal/tui/styles"
)

const maxCardWidth = 72

// renderMessage renders one transcript entry at the given width.
func renderMessage(msg state.ChatMessage, width int, md *markdown, selected bool) string {
	var sb strings.Builder

	label := styles.BotLabel.Render("Assistant")
	if msg.Type == state.MessageUser {
		label = styles.UserLabel.Render("You")
	}
	sb.WriteString(label)
	if ts := clock(msg.Timestamp); ts != "" {
		sb.WriteString(" " + styles.Timestamp.Render(ts))
	}
	sb.WriteString("\n")

	content := msg.Content
	switch msg.Type {
	case state.MessageBot:
		if rendered, err := md.render(content, width-4); err == nil {
			content = strings.Trim(rendered, "\n")
		}
		sb.WriteString(styles.BotMessage.Width(width - 2).Render(content))
	default:
		sb.WriteString(styles.UserMessage.Width(width - 2).Render(content))
	}

	if v := msg.Visualization; v != nil {
		cardW := width - 2
		if cardW > maxCardWidth {
			cardW = maxCardWidth
		}
		sb.WriteString("\n")
		sb.WriteString(chart.Card(*v, cardW, 0, selected))
		if selected {
			sb.WriteString("\n" + styles.KeyHint("ctrl+s", "send to dashboard", "ctrl+o", "download"))
		}
	}
	return sb.String()
}

func clock(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	return t.Local().Format("15:04")
}

// markdown caches a glamour renderer per wrap width.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

func (m *markdown) render(content string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content, err
		}
		m.renderer, m.width = r, width
	}
	return m.renderer.Render(content)
}
