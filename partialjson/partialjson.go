// Package partialjson reconstructs a best-effort value from a JSON prefix,
// such as the text accumulated so far from a token stream.
package partialjson

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/fwojciec/wizard"
)

var (
	// errIncomplete means input ended before a value was produced.
	errIncomplete = errors.New("incomplete")
	errSyntax     = errors.New("syntax error")
)

// TryParse parses the longest meaningful prefix of text.
//
// Unterminated strings are closed and open objects and arrays are closed.
// Dangling keys, escapes and half-written literals are dropped. A truncated
// number is kept when it parses. A leading Markdown code fence is skipped and
// anything after a complete top-level value is ignored. Numbers decode to
// float64 as with encoding/json.
//
// It returns false when text is not a JSON prefix or holds no value yet.
func TryParse(text string) (any, bool) {
	p := &parser{s: skipFence(text)}
	v, err := p.value()
	if err != nil {
		return nil, false
	}
	return v, true
}

// ExtractArrayAtPath returns the array at the dot-separated path of parsed.
// It returns false when a key is missing (not yet streamed) or the value is
// not an array. An empty path selects parsed itself.
func ExtractArrayAtPath(parsed any, path string) ([]any, bool) {
	v, ok := wizard.LookupPath(parsed, path)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

func skipFence(text string) string {
	t := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(t, "```") {
		return t
	}
	_, rest, ok := strings.Cut(t, "\n")
	if !ok {
		return ""
	}
	return rest
}

type parser struct {
	s string
	i int
}

func (p *parser) eof() bool { return p.i >= len(p.s) }

func (p *parser) skipSpace() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\r', '\n':
			p.i++
		default:
			return
		}
	}
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, errIncomplete
	}
	switch c := p.s[p.i]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		return p.str()
	case c == 't':
		return p.literal("true", true)
	case c == 'f':
		return p.literal("false", false)
	case c == 'n':
		return p.literal("null", nil)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return nil, errSyntax
	}
}

func (p *parser) object() (any, error) {
	p.i++ // {
	obj := make(map[string]any)
	for {
		p.skipSpace()
		if p.eof() {
			return obj, nil
		}
		if p.s[p.i] == '}' {
			p.i++
			return obj, nil
		}
		if p.s[p.i] != '"' {
			return nil, errSyntax
		}
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.eof() {
			return obj, nil
		}
		if p.s[p.i] != ':' {
			return nil, errSyntax
		}
		p.i++
		v, err := p.value()
		if errors.Is(err, errIncomplete) {
			return obj, nil
		}
		if err != nil {
			return nil, err
		}
		obj[key.(string)] = v
		p.skipSpace()
		if p.eof() {
			return obj, nil
		}
		switch p.s[p.i] {
		case ',':
			p.i++
		case '}':
			p.i++
			return obj, nil
		default:
			return nil, errSyntax
		}
	}
}

func (p *parser) array() (any, error) {
	p.i++ // [
	arr := []any{}
	for {
		p.skipSpace()
		if p.eof() {
			return arr, nil
		}
		if p.s[p.i] == ']' {
			p.i++
			return arr, nil
		}
		v, err := p.value()
		if errors.Is(err, errIncomplete) {
			return arr, nil
		}
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		p.skipSpace()
		if p.eof() {
			return arr, nil
		}
		switch p.s[p.i] {
		case ',':
			p.i++
		case ']':
			p.i++
			return arr, nil
		default:
			return nil, errSyntax
		}
	}
}

// str reads a string, closing it when input ends inside it.
func (p *parser) str() (any, error) {
	p.i++ // "
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch {
		case c == '"':
			p.i++
			return b.String(), nil
		case c == '\\':
			r, n, err := p.escape()
			if errors.Is(err, errIncomplete) {
				p.i = len(p.s)
				return b.String(), nil
			}
			if err != nil {
				return nil, err
			}
			b.WriteRune(r)
			p.i += n
		default:
			r, size := utf8.DecodeRuneInString(p.s[p.i:])
			if r == utf8.RuneError && size == 1 && !utf8.FullRuneInString(p.s[p.i:]) {
				// Split multi-byte sequence at the end of the input.
				p.i = len(p.s)
				return b.String(), nil
			}
			b.WriteRune(r)
			p.i += size
		}
	}
	return b.String(), nil
}

// escape decodes the escape sequence at p.i and reports its byte length.
func (p *parser) escape() (rune, int, error) {
	rest := p.s[p.i:]
	if len(rest) < 2 {
		return 0, 0, errIncomplete
	}
	switch rest[1] {
	case '"', '\\', '/':
		return rune(rest[1]), 2, nil
	case 'b':
		return '\b', 2, nil
	case 'f':
		return '\f', 2, nil
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 't':
		return '\t', 2, nil
	case 'u':
		r, err := hex4(rest[2:])
		if err != nil {
			return 0, 0, err
		}
		if !utf16.IsSurrogate(r) {
			return r, 6, nil
		}
		tail := rest[6:]
		if len(tail) < 6 {
			if strings.HasPrefix(`\u`, tail) || strings.HasPrefix(tail, `\u`) {
				return 0, 0, errIncomplete
			}
			return utf8.RuneError, 6, nil
		}
		if tail[0] != '\\' || tail[1] != 'u' {
			return utf8.RuneError, 6, nil
		}
		lo, err := hex4(tail[2:])
		if err != nil {
			return 0, 0, err
		}
		if dec := utf16.DecodeRune(r, lo); dec != utf8.RuneError {
			return dec, 12, nil
		}
		return utf8.RuneError, 6, nil
	default:
		return 0, 0, errSyntax
	}
}

func hex4(s string) (rune, error) {
	if len(s) < 4 {
		for i := 0; i < len(s); i++ {
			if !isHex(s[i]) {
				return 0, errSyntax
			}
		}
		return 0, errIncomplete
	}
	n, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, errSyntax
	}
	return rune(n), nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (p *parser) literal(word string, v any) (any, error) {
	rest := p.s[p.i:]
	if strings.HasPrefix(rest, word) {
		p.i += len(word)
		return v, nil
	}
	if len(rest) < len(word) && strings.HasPrefix(word, rest) {
		p.i = len(p.s)
		return nil, errIncomplete
	}
	return nil, errSyntax
}

func (p *parser) number() (any, error) {
	start := p.i
	for p.i < len(p.s) && strings.IndexByte("+-0123456789.eE", p.s[p.i]) >= 0 {
		p.i++
	}
	f, err := strconv.ParseFloat(p.s[start:p.i], 64)
	if err == nil {
		return f, nil
	}
	if p.eof() {
		return nil, errIncomplete
	}
	return nil, errSyntax
}
