package tui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/framestep/pkg/ports"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// PositionMsg reports the frame the scheduler last rendered.
type PositionMsg int

// MarkMsg moves the timeline marker to a time in seconds.
type MarkMsg float64

type redrawMsg struct{}

// Notifier marshals playback callbacks into the UI loop. Callbacks made
// before Attach are dropped.
type Notifier struct {
	mu     sync.RWMutex
	sender Sender

	redrawPending atomic.Bool
}

// NewNotifier creates a detached Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Attach sets the program that receives messages.
func (n *Notifier) Attach(s Sender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sender = s
}

func (n *Notifier) target() Sender {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sender
}

// Position is the transport dispatcher. It blocks until the UI loop accepts
// the update.
func (n *Notifier) Position(frame int) {
	if s := n.target(); s != nil {
		s.Send(PositionMsg(frame))
	}
}

// MarkTime implements ports.TraceOverlay.
func (n *Notifier) MarkTime(seconds float64) {
	if s := n.target(); s != nil {
		s.Send(MarkMsg(seconds))
	}
}

// Redraw asks the UI to repaint the preview. It returns immediately and
// requests made while one is outstanding are merged.
func (n *Notifier) Redraw() {
	s := n.target()
	if s == nil {
		return
	}
	if n.redrawPending.CompareAndSwap(false, true) {
		go s.Send(redrawMsg{})
	}
}

func (n *Notifier) redrawn() {
	n.redrawPending.Store(false)
}

var _ ports.TraceOverlay = (*Notifier)(nil)
