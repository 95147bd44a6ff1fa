// Package mock provides test doubles for wizard interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/wizard"
)

// Interface compliance checks.
var (
	_ wizard.Transport = (*Transport)(nil)
	_ wizard.Lines     = (*Lines)(nil)
)

// Transport is a test double for wizard.Transport.
// Set OpenFn before calling Open.
type Transport struct {
	OpenFn func(ctx context.Context, url string, req wizard.Request) (wizard.Lines, error)
}

// Open delegates to OpenFn.
func (t *Transport) Open(ctx context.Context, url string, req wizard.Request) (wizard.Lines, error) {
	return t.OpenFn(ctx, url, req)
}
