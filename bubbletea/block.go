package bubbletea

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/wizard"
	"github.com/fwojciec/wizard/goldmark"
	"github.com/mattn/go-runewidth"
)

// Block is a renderable element of the output area. View takes a width so
// the root model controls layout and blocks are testable in isolation.
type Block interface {
	View(width int) string
}

var (
	_ Block = ItemBlock{}
	_ Block = TextBlock{}
	_ Block = ResultBlock{}
	_ Block = ErrorBlock{}
)

// Item fields tried in order for an item's title and body.
var (
	titleKeys = []string{"name_localized", "property_name_localized", "name", "title"}
	bodyKeys  = []string{"explanation_localized", "description_contextual_localized", "suggestion_localized", "description"}
)

// ItemBlock renders one structured item as a card.
type ItemBlock struct {
	Item  any
	Theme wizard.Theme
}

func (b ItemBlock) View(width int) string {
	title, body := itemText(b.Item)
	return goldmark.RenderItem(sanitize(title), sanitize(body), width, b.Theme)
}

func itemText(item any) (title, body string) {
	m, ok := item.(map[string]any)
	if !ok {
		return fmt.Sprint(item), ""
	}
	for _, k := range titleKeys {
		if s, ok := m[k].(string); ok && s != "" {
			title = s
			break
		}
	}
	var parts []string
	for _, k := range bodyKeys {
		if s, ok := m[k].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if title == "" {
		title = "(untitled)"
	}
	return title, strings.Join(parts, "\n\n")
}

// Bounds of the raw text shown while no items are available.
const (
	maxTailLines = 200
	maxTailBytes = 8 << 10
)

// TextBlock renders the tail of the raw streamed text.
type TextBlock struct {
	Text   string
	Styles Styles
}

func (b TextBlock) View(width int) string {
	text, cut := tail(sanitize(b.Text), maxTailLines, maxTailBytes)
	if cut {
		text = "…" + text
	}
	return lipgloss.NewStyle().Width(width).Render(b.Styles.Muted.Render(text))
}

// ResultBlock renders the terminal payload as indented JSON, one line per
// row, truncated to the viewport width.
type ResultBlock struct {
	Data   any
	Styles Styles
}

func (b ResultBlock) View(width int) string {
	data, err := json.MarshalIndent(b.Data, "", "  ")
	if err != nil {
		return b.Styles.Error.Render(fmt.Sprintf("unprintable result: %v", err))
	}
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = runewidth.Truncate(l, width, "…")
	}
	return b.Styles.Success.Render("Result") + "\n" + b.Styles.Muted.Render(strings.Join(lines, "\n"))
}

// ErrorBlock renders the error banner.
type ErrorBlock struct {
	Message string
	Styles  Styles
}

func (b ErrorBlock) View(width int) string {
	content := b.Styles.Error.Render("Error: " + sanitize(b.Message))
	return b.Styles.ErrorBg.Width(max(width-2, 1)).Render(content)
}
