package mock

// Lines is a test double for wizard.Lines.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// because consumers always close what they open.
type Lines struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (l *Lines) Next() (string, error) {
	return l.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (l *Lines) Close() error {
	if l.CloseFn == nil {
		return nil
	}
	return l.CloseFn()
}
