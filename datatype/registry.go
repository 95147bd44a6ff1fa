package datatype

import (
	"fmt"
	"log/slog"

	"github.com/fwojciec/wizard"
)

// Registry maps data type names to configs. It is read-only after New and
// safe for concurrent use.
type Registry struct {
	configs map[string]wizard.DataTypeConfig
	logger  *slog.Logger
}

// NewRegistry builds a registry from configs. A later config replaces an
// earlier one with the same name, so loaded files can override Builtin.
func NewRegistry(logger *slog.Logger, configs ...wizard.DataTypeConfig) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{configs: make(map[string]wizard.DataTypeConfig, len(configs)), logger: logger}
	for _, c := range configs {
		if _, ok := r.configs[c.Name]; ok {
			logger.Debug("data type overridden", slog.String("name", c.Name))
		}
		r.configs[c.Name] = c
	}
	return r
}

// Lookup returns the config registered under name.
func (r *Registry) Lookup(name string) (wizard.DataTypeConfig, error) {
	c, ok := r.configs[name]
	if !ok {
		return wizard.DataTypeConfig{}, fmt.Errorf("datatype %q: %w", name, wizard.ErrUnknownDataType)
	}
	return c, nil
}

// Transform filters, cleans and maps items with the config registered under
// name. Unknown names pass items through unmodified and log a warning.
func (r *Registry) Transform(items []any, name string, mapFn func(map[string]any) any) []any {
	c, ok := r.configs[name]
	if !ok {
		r.logger.Warn("unknown data type, passing items through", slog.String("name", name))
		return items
	}
	return wizard.Transform(items, c, mapFn)
}

// Names returns the registered names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}
