// Package goldmark renders the localized Markdown text carried by wizard
// items to ANSI-styled terminal output using goldmark for parsing and
// lipgloss for styling.
package goldmark

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/wizard"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled output wrapped to
// width. Code blocks are kept verbatim.
func Render(source string, width int, theme wizard.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := &renderer{src: []byte(source), styles: newStyles(theme)}
	doc := goldmark.DefaultParser().Parse(text.NewReader(r.src))
	return strings.Join(r.blocks(doc, width), "\n\n")
}

// RenderItem renders an item card: a single-line title truncated to width
// followed by the body indented by two columns.
func RenderItem(title, body string, width int, theme wizard.Theme) string {
	if width <= 0 {
		width = defaultWidth
	}
	head := lipgloss.NewStyle().
		Foreground(ansiColor(theme.Item)).
		Bold(true).
		Render(runewidth.Truncate(Plain(title), width, "…"))
	if strings.TrimSpace(body) == "" {
		return head
	}
	return head + "\n" + indent(Render(body, width-2, theme), "  ")
}

// Plain strips Markdown syntax and returns the text content. Blocks are
// separated by newlines and list items are prefixed with "- ".
func Plain(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	var out []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if l, ok := c.(*ast.List); ok {
			for item := l.FirstChild(); item != nil; item = item.NextSibling() {
				out = append(out, "- "+plainText(item, src))
			}
			continue
		}
		if s := plainText(c, src); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func plainText(node ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.URL(src))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := t.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.List:
			if t != node {
				for item := t.FirstChild(); item != nil; item = item.NextSibling() {
					b.WriteByte(' ')
					b.WriteString(plainText(item, src))
				}
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
