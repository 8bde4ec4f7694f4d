// Package consent holds the two confirmation state machines of the
// authorization flow: device code consent and the post-consent redirect.
package consent

import (
	"context"
	"errors"
	"sync"

	"github.com/godel-oidc/authflow/internal/browser"
)

// Decision is the outcome of a confirmation dialog.
type Decision int

const (
	Pending Decision = iota
	Approved
	Declined
)

func (d Decision) String() string {
	switch d {
	case Approved:
		return "approved"
	case Declined:
		return "declined"
	default:
		return "pending"
	}
}

// ErrAlreadyOpen is returned when a dialog is opened while a decision is pending.
var ErrAlreadyOpen = errors.New("consent: dialog already awaiting a decision")

// Gate is a single-use decision. It resolves exactly once; later attempts
// to resolve it are ignored.
type Gate struct {
	mu       sync.Mutex
	decision Decision
	done     chan struct{}
}

func newGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

func (g *Gate) resolve(d Decision) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.decision != Pending {
		return false
	}
	g.decision = d
	close(g.done)
	return true
}

// Done is closed once the gate resolves.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Decision returns the current decision; Pending until resolved.
func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// Wait blocks until the gate resolves or ctx is done.
func (g *Gate) Wait(ctx context.Context) (Decision, error) {
	select {
	case <-g.done:
		return g.Decision(), nil
	case <-ctx.Done():
		return Pending, ctx.Err()
	}
}

// dialog is a modal that pauses for one decision per opening. Its click
// handlers are methods, bound once for the dialog's lifetime, and act only on
// the gate of the current opening.
type dialog struct {
	mu      sync.Mutex
	kind    browser.Dialog
	surface browser.Surface
	pending *Gate
	last    Decision
}

func (d *dialog) open(text string) (*Gate, error) {
	d.mu.Lock()
	if d.pending != nil {
		d.mu.Unlock()
		return nil, ErrAlreadyOpen
	}
	g := newGate()
	d.pending = g
	d.last = Pending
	d.mu.Unlock()

	// The surface may deliver a click synchronously, so it is called unlocked.
	d.surface.Show(d.kind, text)
	return g, nil
}

func (d *dialog) click(dec Decision) bool {
	d.mu.Lock()
	g := d.pending
	if g == nil {
		d.mu.Unlock()
		return false
	}
	d.pending = nil
	d.last = dec
	d.mu.Unlock()

	d.surface.Hide(d.kind)
	return g.resolve(dec)
}

func (d *dialog) awaiting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *dialog) lastDecision() Decision {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
