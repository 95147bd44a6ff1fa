package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/wizard"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
)

const minWidth = 10

type styles struct {
	strong  lipgloss.Style
	emph    lipgloss.Style
	code    lipgloss.Style
	heading lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(theme wizard.Theme) styles {
	return styles{
		strong:  lipgloss.NewStyle().Bold(true),
		emph:    lipgloss.NewStyle().Italic(true),
		code:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
		heading: lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		link:    lipgloss.NewStyle().Underline(true),
		muted:   lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

type renderer struct {
	src    []byte
	styles styles
}

// blocks renders the block children of parent, one string per block.
func (r *renderer) blocks(parent ast.Node, width int) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c, width); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *renderer) block(node ast.Node, width int) string {
	width = max(width, minWidth)
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(r.inline(n), width)

	case *ast.Heading:
		return wrap(r.styles.heading.Render(r.inline(n)), width)

	case *ast.List:
		return r.list(n, width)

	case *ast.Blockquote:
		bar := r.styles.muted.Render("┃") + " "
		inner := strings.Join(r.blocks(n, width-lipgloss.Width(bar)), "\n\n")
		return prefixLines(inner, bar, bar)

	case *ast.FencedCodeBlock:
		body := r.codeLines(n)
		if lang := string(n.Language(r.src)); lang != "" {
			return r.styles.muted.Render(lang) + "\n" + body
		}
		return body

	case *ast.CodeBlock:
		return r.codeLines(n)

	case *ast.ThematicBreak:
		return r.styles.muted.Render(strings.Repeat("─", width))

	case *ast.HTMLBlock:
		var b bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(r.src))
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return strings.Join(r.blocks(node, width), "\n\n")
}

func (r *renderer) codeLines(n ast.Node) string {
	gutter := r.styles.muted.Render("│") + " "
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, gutter+strings.TrimRight(string(seg.Value(r.src)), "\n"))
	}
	return strings.Join(out, "\n")
}

func (r *renderer) list(l *ast.List, width int) string {
	var items []string
	n := l.Start
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = strconv.Itoa(n) + ". "
			n++
		}
		pad := runewidth.StringWidth(marker)
		body := strings.Join(r.blocks(c, width-pad), "\n")
		items = append(items, prefixLines(body, marker, strings.Repeat(" ", pad)))
	}
	return strings.Join(items, "\n")
}

func (r *renderer) inline(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(r.src))
			switch {
			case n.HardLineBreak():
				b.WriteByte('\n')
			case n.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.Emphasis:
			if n.Level == 1 {
				b.WriteString(r.styles.emph.Render(r.inline(n)))
			} else {
				b.WriteString(r.styles.strong.Render(r.inline(n)))
			}
		case *ast.CodeSpan:
			b.WriteString(r.styles.code.Render(r.inline(n)))
		case *ast.Link:
			b.WriteString(r.styles.link.Render(r.inline(n)))
			b.WriteString(" " + r.styles.muted.Render("("+string(n.Destination)+")"))
		case *ast.Image:
			b.WriteString(r.styles.link.Render(r.inline(n)))
			b.WriteString(" " + r.styles.muted.Render("("+string(n.Destination)+")"))
		case *ast.AutoLink:
			b.WriteString(r.styles.link.Render(string(n.URL(r.src))))
		case *ast.RawHTML:
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				b.Write(seg.Value(r.src))
			}
		default:
			b.WriteString(r.inline(n))
		}
	}
	return b.String()
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// prefixLines puts first before the first line of s and rest before every
// following line.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
