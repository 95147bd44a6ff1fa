package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/wizard"
)

const (
	dataPrefix     = "data: "
	initialBufSize = 64 * 1024
	maxLineSize    = 1024 * 1024
)

// lines implements [wizard.Lines] over a response body.
type lines struct {
	ctx     context.Context
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// Interface compliance check.
var _ wizard.Lines = (*lines)(nil)

func newLines(ctx context.Context, body io.ReadCloser) *lines {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, initialBufSize), maxLineSize)
	return &lines{ctx: ctx, body: body, scanner: scanner}
}

// Next returns the next "data: " payload. It returns io.EOF when the body
// ends and the context error once the request was cancelled, even if bytes
// are still buffered. A line longer than the scanner limit is reported as
// wizard.ErrProtocol.
func (l *lines) Next() (string, error) {
	if l.closed {
		return "", fmt.Errorf("sse: %w", wizard.ErrClosed)
	}
	for {
		if err := l.ctx.Err(); err != nil {
			return "", fmt.Errorf("sse: %w", err)
		}
		if !l.scanner.Scan() {
			break
		}
		line := strings.TrimSuffix(l.scanner.Text(), "\r")
		if payload, ok := strings.CutPrefix(line, dataPrefix); ok {
			return payload, nil
		}
	}
	if err := l.ctx.Err(); err != nil {
		return "", fmt.Errorf("sse: %w", err)
	}
	if err := l.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", fmt.Errorf("sse: line exceeds %d bytes: %w", maxLineSize, wizard.ErrProtocol)
		}
		return "", fmt.Errorf("sse: read: %w", err)
	}
	return "", io.EOF
}

// Close closes the response body. It is safe to call more than once.
func (l *lines) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.body.Close()
}
