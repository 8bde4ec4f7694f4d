package consent

import (
	"sync"

	"github.com/godel-oidc/authflow/internal/browser"
)

// State is the device consent modal state.
type State int

const (
	Idle State = iota
	AwaitingDeviceConsent
	ConsentApproved
	ConsentDeclined
)

func (s State) String() string {
	switch s {
	case AwaitingDeviceConsent:
		return "awaiting_device_consent"
	case ConsentApproved:
		return "approved"
	case ConsentDeclined:
		return "declined"
	default:
		return "idle"
	}
}

// Modal gates the device code path behind explicit approval and carries the
// credential error overlay with its "try again" action. Build one per page load.
type Modal struct {
	dialog

	errMu     sync.Mutex
	errShown  bool
	onRetry   func()
	retryUsed bool
}

// NewModal creates the modal controller for a page. onRetry is invoked by
// Retry and is expected to reload the page.
func NewModal(surface browser.Surface, onRetry func()) *Modal {
	return &Modal{
		dialog:  dialog{kind: browser.DeviceConsent, surface: surface},
		onRetry: onRetry,
	}
}

// Open shows the consent dialog and returns the gate for this opening.
func (m *Modal) Open(text string) (*Gate, error) {
	return m.open(text)
}

// Approve is the approve button handler. It reports whether a pending
// decision was resolved.
func (m *Modal) Approve() bool {
	return m.click(Approved)
}

// Decline is the decline button handler.
func (m *Modal) Decline() bool {
	return m.click(Declined)
}

// State returns the current consent state.
func (m *Modal) State() State {
	if m.awaiting() {
		return AwaitingDeviceConsent
	}
	switch m.lastDecision() {
	case Approved:
		return ConsentApproved
	case Declined:
		return ConsentDeclined
	default:
		return Idle
	}
}

// ShowCredentialError shows the credential error overlay.
func (m *Modal) ShowCredentialError(text string) {
	m.errMu.Lock()
	m.errShown = true
	m.errMu.Unlock()
	m.surface.Show(browser.CredentialError, text)
}

// CredentialErrorShown reports whether the error overlay is visible.
func (m *Modal) CredentialErrorShown() bool {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.errShown
}

// Retry is the "try again" handler. It only acts while the error overlay is
// shown, and only once per page load.
func (m *Modal) Retry() bool {
	m.errMu.Lock()
	if !m.errShown || m.retryUsed {
		m.errMu.Unlock()
		return false
	}
	m.errShown = false
	m.retryUsed = true
	m.errMu.Unlock()

	m.surface.Hide(browser.CredentialError)
	if m.onRetry != nil {
		m.onRetry()
	}
	return true
}
