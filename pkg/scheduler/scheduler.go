// Package scheduler drives frame-accurate playback.
//
// The Scheduler owns a play/stop state machine running on its own goroutine.
// Commands arrive through a single-slot mailbox (last writer wins) and are
// drained at the top of every tick, so a Stop or a new Start takes effect
// within one tick. Each tick reports the cursor to a PositionListener,
// renders the frame through the session's VideoHandle and the RenderSink,
// waits out the rest of the frame interval on a timer, then advances the
// cursor, optionally jumping ahead to catch up with wall-clock time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/framestep/pkg/mailbox"
	"github.com/user/framestep/pkg/ports"
)

// DefaultMaxReadRetries is how many consecutive read misses on one cursor end
// a session.
const DefaultMaxReadRetries = 3

// State is the scheduler state.
type State int

const (
	Idle State = iota
	Playing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Event describes one rendered tick.
type Event struct {
	SessionID string
	Frame     int
	TickStart time.Time
	Err       error // non-nil when the frame could not be read
}

// Options configures a Scheduler.
type Options struct {
	// Transpose is passed to every RenderSink.Present call.
	Transpose bool

	// MaxReadRetries consecutive misses on the same cursor end the session.
	MaxReadRetries int

	// OnFrame, when set, is called on the scheduler goroutine after every
	// render attempt. It must not block.
	OnFrame func(Event)
}

// Status is a snapshot of the scheduler.
type Status struct {
	State      State
	SessionID  string
	Cursor     int
	SpeedHz    float64
	Reverse    bool
	SkipFrames bool
	FrameCount int

	Ticks           uint64
	Rendered        uint64
	SkippedFrames   uint64
	ReadMisses      uint64
	PresentFailures uint64
	Sessions        uint64
}

// Scheduler plays frames from a VideoHandle into a RenderSink.
type Scheduler struct {
	sink     ports.RenderSink
	listener ports.PositionListener
	logger   ports.Logger
	opts     Options

	inbox *mailbox.Mailbox[Command]
	shows *mailbox.Mailbox[showRequest]

	mu      sync.Mutex
	status  Status
	changed chan struct{}

	runMu   sync.Mutex
	running bool

	now func() time.Time
}

// New creates a Scheduler. Call Run to start it.
func New(sink ports.RenderSink, listener ports.PositionListener, opts Options, logger ports.Logger) *Scheduler {
	if opts.MaxReadRetries < 1 {
		opts.MaxReadRetries = DefaultMaxReadRetries
	}
	if listener == nil {
		listener = ports.PositionListenerFunc(func(int) {})
	}
	return &Scheduler{
		sink:     sink,
		listener: listener,
		logger:   logger.WithComponent("scheduler"),
		opts:     opts,
		inbox:    mailbox.New[Command](),
		shows:    mailbox.New[showRequest](),
		changed:  make(chan struct{}),
		now:      time.Now,
	}
}

// Submit queues cmd without blocking. A command still pending is replaced.
func (s *Scheduler) Submit(cmd Command) error {
	switch c := cmd.(type) {
	case Start:
		if err := c.Validate(); err != nil {
			return err
		}
	case Stop:
	default:
		return fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
	}
	if s.inbox.Put(cmd) {
		s.logger.Debug("Pending command replaced by %T", cmd)
	}
	return nil
}

// Show renders frame of h once while idle, reporting it like a tick that
// steps the cursor by zero. Requests made during playback are served once
// the scheduler is idle again; only the latest is kept. A Start taken after
// the request discards it.
func (s *Scheduler) Show(h ports.VideoHandle, frame int) {
	if h == nil {
		return
	}
	s.shows.Put(showRequest{handle: h, frame: frame})
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.Status().State
}

// AwaitIdle blocks until the scheduler is idle or ctx is done.
func (s *Scheduler) AwaitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		state, changed := s.status.State, s.changed
		s.mu.Unlock()
		if state == Idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Run processes commands until ctx is done. It returns an error only if the
// scheduler is already running.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	s.runMu.Unlock()
	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	s.logger.Debug("Scheduler started")
	for {
		if ctx.Err() != nil {
			s.logger.Debug("Scheduler stopped")
			return nil
		}

		if cmd, ok := s.inbox.TryTake(); ok {
			switch c := cmd.(type) {
			case Start:
				s.play(ctx, c)
			case Stop:
				s.logger.Debug("Stop received while idle")
			}
			continue
		}

		if req, ok := s.shows.TryTake(); ok {
			s.show(ctx, req)
			continue
		}

		select {
		case <-ctx.Done():
		case <-s.inbox.Ready():
		case <-s.shows.Ready():
		}
	}
}

// play runs one session, following pre-empting Starts, until Stop, the
// boundary, a persistent read miss, or ctx cancellation.
func (s *Scheduler) play(ctx context.Context, cmd Start) {
	sess := newSession(cmd, s.now())
	s.beginSession(sess)
	defer s.endSession()

	misses := 0
	for {
		t := s.now()

		if c, ok := s.inbox.TryTake(); ok {
			switch c := c.(type) {
			case Stop:
				s.logger.Info("Playback stopped at frame %d", sess.cursor)
				return
			case Start:
				s.logger.Debug("Session %s pre-empted at frame %d", sess.id, sess.cursor)
				sess = newSession(c, t)
				misses = 0
				s.beginSession(sess)
			}
		}
		if ctx.Err() != nil {
			return
		}

		s.listener.OnPositionUpdate(sess.cursor)

		err := s.render(ctx, sess.cmd.Handle, sess.cursor)
		s.emit(Event{SessionID: sess.id, Frame: sess.cursor, TickStart: t, Err: err})
		if ctx.Err() != nil {
			return
		}

		advance := true
		if err != nil {
			misses++
			if misses >= s.opts.MaxReadRetries {
				s.logger.Warn("No frame at %d after %d attempts, ending playback", sess.cursor, misses)
				return
			}
			s.logger.Warn("Read miss at frame %d, retrying", sess.cursor)
			advance = false
		} else {
			misses = 0
		}

		completed, ok := s.waitUntil(ctx, t.Add(sess.interval))
		if !ok {
			return
		}
		if !completed {
			// A command arrived; apply it before moving the cursor.
			continue
		}

		if advance {
			if skipped := sess.advance(t); skipped > 0 {
				s.logger.Debug("Skipped %d frames to keep up", skipped)
				s.mu.Lock()
				s.status.SkippedFrames += uint64(skipped)
				s.mu.Unlock()
			}
		}
		s.setCursor(sess.cursor)

		if sess.finished() {
			s.logger.Info("Playback reached the end at frame %d", sess.cursor)
			return
		}
	}
}

// waitUntil sleeps until deadline. completed is false when a command
// arrived first; ok is false when ctx is done.
func (s *Scheduler) waitUntil(ctx context.Context, deadline time.Time) (completed, ok bool) {
	d := deadline.Sub(s.now())
	if d <= 0 {
		return true, ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, false
		case <-timer.C:
			return true, true
		case <-s.inbox.Ready():
			// The signal may be left over from a command already taken.
			if s.inbox.Pending() {
				return false, true
			}
		}
	}
}

// render reads frame from h and presents it. Read failures are returned as
// ErrReadEnd; present failures are logged and swallowed.
func (s *Scheduler) render(ctx context.Context, h ports.VideoHandle, frame int) error {
	s.mu.Lock()
	s.status.Ticks++
	s.mu.Unlock()

	f, err := h.SeekAndRead(ctx, frame)
	if err != nil {
		s.mu.Lock()
		s.status.ReadMisses++
		s.mu.Unlock()
		if errors.Is(err, ports.ErrReadEnd) {
			return err
		}
		return fmt.Errorf("%w: %v", ports.ErrReadEnd, err)
	}

	if err := s.sink.Present(f.Image, s.opts.Transpose); err != nil {
		s.logger.Warn("Failed to present frame %d: %v", frame, err)
		s.mu.Lock()
		s.status.PresentFailures++
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.status.Rendered++
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) show(ctx context.Context, req showRequest) {
	s.listener.OnPositionUpdate(req.frame)
	s.setCursor(req.frame)
	err := s.render(ctx, req.handle, req.frame)
	s.emit(Event{Frame: req.frame, TickStart: s.now(), Err: err})
	if err != nil {
		s.logger.Warn("Read miss at frame %d", req.frame)
	}
}

func (s *Scheduler) emit(ev Event) {
	if s.opts.OnFrame != nil {
		s.opts.OnFrame(ev)
	}
}

func (s *Scheduler) beginSession(sess *session) {
	// A redraw requested before this Start is stale once the session renders.
	s.shows.TryTake()

	s.logger.Info("Session %s: playing from frame %d at %.1f Hz (reverse=%t, skip=%t)",
		sess.id, sess.cursor, sess.cmd.SpeedHz, sess.cmd.Reverse, sess.cmd.SkipFrames)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.SessionID = sess.id
	s.status.Cursor = sess.cursor
	s.status.SpeedHz = sess.cmd.SpeedHz
	s.status.Reverse = sess.cmd.Reverse
	s.status.SkipFrames = sess.cmd.SkipFrames
	s.status.FrameCount = sess.cmd.FrameCount
	s.status.Sessions++
	s.setStateLocked(Playing)
}

func (s *Scheduler) endSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.SessionID = ""
	s.setStateLocked(Idle)
}

func (s *Scheduler) setCursor(frame int) {
	s.mu.Lock()
	s.status.Cursor = frame
	s.mu.Unlock()
}

func (s *Scheduler) setStateLocked(state State) {
	if s.status.State == state {
		return
	}
	s.status.State = state
	close(s.changed)
	s.changed = make(chan struct{})
}
