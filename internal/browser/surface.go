package browser

import (
	"fmt"
	"io"
	"sync"
)

// Dialog identifies one of the fixed modal dialogs.
type Dialog int

const (
	// DeviceConsent asks the user to approve a device code grant.
	DeviceConsent Dialog = iota
	// CredentialError reports a rejected submission and offers "try again".
	CredentialError
	// ServiceAccess shows "service wants access to" before the final redirect.
	ServiceAccess
	// Alert is a plain message box with no decision.
	Alert
)

func (d Dialog) String() string {
	switch d {
	case DeviceConsent:
		return "device_consent"
	case CredentialError:
		return "credential_error"
	case ServiceAccess:
		return "service_access"
	case Alert:
		return "alert"
	default:
		return fmt.Sprintf("dialog(%d)", int(d))
	}
}

// Surface shows and hides a modal. The overlay and the dialog of a modal are
// always toggled together by a single call.
type Surface interface {
	Show(d Dialog, text string)
	Hide(d Dialog)
}

// SurfaceEvent is one recorded Show or Hide.
type SurfaceEvent struct {
	Dialog  Dialog
	Visible bool
	Text    string
}

// Screen is a Surface that records what is visible.
type Screen struct {
	mu      sync.Mutex
	visible map[Dialog]string
	events  []SurfaceEvent
	onShow  func(Dialog, string)
}

// NewScreen creates an empty screen. onShow, if non-nil, is called after
// every Show outside the screen's lock.
func NewScreen(onShow func(Dialog, string)) *Screen {
	return &Screen{visible: make(map[Dialog]string), onShow: onShow}
}

func (s *Screen) Show(d Dialog, text string) {
	s.mu.Lock()
	s.visible[d] = text
	s.events = append(s.events, SurfaceEvent{Dialog: d, Visible: true, Text: text})
	onShow := s.onShow
	s.mu.Unlock()
	if onShow != nil {
		onShow(d, text)
	}
}

func (s *Screen) Hide(d Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.visible, d)
	s.events = append(s.events, SurfaceEvent{Dialog: d, Visible: false})
}

// Visible reports whether d is currently shown, and its text.
func (s *Screen) Visible(d Dialog) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.visible[d]
	return text, ok
}

// Events returns a copy of the recorded events.
func (s *Screen) Events() []SurfaceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SurfaceEvent, len(s.events))
	copy(out, s.events)
	return out
}

// TextSurface renders dialogs as plain text on w.
type TextSurface struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextSurface creates a surface writing to w.
func NewTextSurface(w io.Writer) *TextSurface {
	return &TextSurface{w: w}
}

func (t *TextSurface) Show(d Dialog, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\n[%s] %s\n", d, text)
}

func (t *TextSurface) Hide(Dialog) {}
