package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/wizard"
	"github.com/fwojciec/wizard/datatype"
	"github.com/fwojciec/wizard/partialjson"
)

// printer writes every new item of a session as one JSON line. It is used
// as a controller OnChange hook and never calls back into the controller.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	session string
	printed int
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) onChange(s wizard.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.SessionID != p.session {
		p.session = s.SessionID
		p.printed = 0
	}
	// PartialData may shrink when a reconnect restarts reconstruction.
	if len(s.PartialData) < p.printed {
		return
	}
	for _, item := range s.PartialData[p.printed:] {
		line, err := json.Marshal(item)
		if err != nil {
			line = []byte(fmt.Sprintf("%q", fmt.Sprint(item)))
		}
		fmt.Fprintf(p.w, "%s\n", line)
	}
	p.printed = len(s.PartialData)
}

// finalItems extracts the item array from the terminal payload and keeps
// the items the data type accepts.
func finalItems(reg *datatype.Registry, arrayPath, dataType string, s wizard.State) ([]any, bool) {
	if s.Phase != wizard.PhaseComplete || s.FinalData == nil || arrayPath == "" {
		return nil, false
	}
	items, ok := partialjson.ExtractArrayAtPath(s.FinalData, arrayPath)
	if !ok {
		return nil, false
	}
	if dataType == "" {
		return items, true
	}
	return reg.Transform(items, dataType, nil), true
}
