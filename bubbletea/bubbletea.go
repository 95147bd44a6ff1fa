// Package bubbletea provides a Bubble Tea TUI that follows a stream
// controller's state.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/wizard"
)

// Streamer is the part of a stream controller the TUI drives.
type Streamer interface {
	Start(ctx context.Context, url string, req wizard.Request) error
	Reset()
	State() wizard.State
}

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, opts...)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StateMsg delivers a controller state snapshot to the model.
type StateMsg struct {
	State wizard.State
}

// startErrMsg reports that Start refused the request.
type startErrMsg struct {
	err error
}

// Subscription is a single-slot mailbox between a controller's OnChange
// hook and the model. Publish never blocks; when the model lags behind,
// older snapshots are replaced by newer ones.
type Subscription struct {
	ch chan wizard.State
}

// NewSubscription creates an empty Subscription.
func NewSubscription() *Subscription {
	return &Subscription{ch: make(chan wizard.State, 1)}
}

// Publish stores s as the latest snapshot. It is meant to be passed to
// stream.WithOnChange.
func (s *Subscription) Publish(st wizard.State) {
	for {
		select {
		case s.ch <- st:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *Subscription) wait() tea.Cmd {
	return func() tea.Msg {
		return StateMsg{State: <-s.ch}
	}
}
