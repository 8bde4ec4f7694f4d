// Package browser models the parts of a browser tab the authorization flow
// touches: navigation, transient per-origin storage and the modal surface.
package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Navigator moves the tab to a new location.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
	Reload(ctx context.Context) error
}

// Visit is one recorded navigation. Reload visits carry an empty URL.
type Visit struct {
	URL    string
	Reload bool
}

// History is a Navigator that records every visit.
type History struct {
	mu     sync.Mutex
	visits []Visit
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

func (h *History) Navigate(_ context.Context, target string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visits = append(h.visits, Visit{URL: target})
	return nil
}

func (h *History) Reload(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visits = append(h.visits, Visit{Reload: true})
	return nil
}

// Visits returns a copy of the recorded visits.
func (h *History) Visits() []Visit {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Visit, len(h.visits))
	copy(out, h.visits)
	return out
}

// Last returns the most recent visit.
func (h *History) Last() (Visit, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.visits) == 0 {
		return Visit{}, false
	}
	return h.visits[len(h.visits)-1], true
}

// PrintNavigator writes each navigation to w and records it.
type PrintNavigator struct {
	History
	w io.Writer
}

// NewPrintNavigator creates a navigator that reports to w.
func NewPrintNavigator(w io.Writer) *PrintNavigator {
	return &PrintNavigator{w: w}
}

func (p *PrintNavigator) Navigate(ctx context.Context, target string) error {
	if _, err := fmt.Fprintf(p.w, "-> %s\n", target); err != nil {
		return err
	}
	return p.History.Navigate(ctx, target)
}

func (p *PrintNavigator) Reload(ctx context.Context) error {
	if _, err := fmt.Fprintln(p.w, "-> (reload)"); err != nil {
		return err
	}
	return p.History.Reload(ctx)
}
