// Package transport turns user intents into playback commands and relays the
// scheduler's position reports back to the user interface.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/framestep/pkg/mailbox"
	"github.com/user/framestep/pkg/ports"
	"github.com/user/framestep/pkg/probe"
	"github.com/user/framestep/pkg/scheduler"
)

// ErrNoVideo is returned by intents that need a loaded video.
var ErrNoVideo = errors.New("no video loaded")

// Scheduler is the part of scheduler.Scheduler the controller drives.
type Scheduler interface {
	Submit(cmd scheduler.Command) error
	Show(h ports.VideoHandle, frame int)
	AwaitIdle(ctx context.Context) error
	State() scheduler.State
}

// Options configures a Controller.
type Options struct {
	SpeedHz         float64
	SkipFrames      bool
	JumpSize        int
	OverlayInterval time.Duration
}

// DefaultOptions mirrors the reference control panel: 50 Hz, skip frames on,
// jumps of 20 frames, marker redraws at most every 10 ms.
func DefaultOptions() Options {
	return Options{
		SpeedHz:         50,
		SkipFrames:      true,
		JumpSize:        20,
		OverlayInterval: 10 * time.Millisecond,
	}
}

// Controller is the transport between the UI and the scheduler.
type Controller struct {
	source ports.FrameSource
	probes *probe.Cache
	fs     ports.FileSystem
	logger ports.Logger
	sched  Scheduler

	mu        sync.RWMutex
	handle    ports.VideoHandle
	path      string
	lastValid int
	speed     float64
	skip      bool
	reverse   bool
	jump      int

	displayed atomic.Int64
	positions *mailbox.Mailbox[int]

	dispatchMu sync.RWMutex
	dispatch   func(frame int)
	overlay    ports.TraceOverlay
	interval   time.Duration
	lastMark   time.Time

	stopWait time.Duration
}

// New creates a Controller. Attach a scheduler before use.
func New(source ports.FrameSource, probes *probe.Cache, fs ports.FileSystem, opts Options, logger ports.Logger) *Controller {
	def := DefaultOptions()
	if !(opts.SpeedHz > 0) {
		opts.SpeedHz = def.SpeedHz
	}
	if opts.JumpSize < 1 {
		opts.JumpSize = def.JumpSize
	}
	if opts.OverlayInterval <= 0 {
		opts.OverlayInterval = def.OverlayInterval
	}
	return &Controller{
		source:    source,
		probes:    probes,
		fs:        fs,
		logger:    logger.WithComponent("transport"),
		lastValid: -1,
		speed:     opts.SpeedHz,
		skip:      opts.SkipFrames,
		jump:      opts.JumpSize,
		positions: mailbox.New[int](),
		interval:  opts.OverlayInterval,
		stopWait:  stopTimeout,
	}
}

// Attach sets the scheduler the controller submits to.
func (c *Controller) Attach(s Scheduler) {
	c.sched = s
}

// SetDispatcher sets the function that marshals position updates into the
// UI loop, e.g. a tea.Program's Send. It is called from the relay goroutine.
func (c *Controller) SetDispatcher(fn func(frame int)) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	c.dispatch = fn
}

// SetOverlay sets the trace overlay whose time marker follows playback.
func (c *Controller) SetOverlay(o ports.TraceOverlay) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	c.overlay = o
}

// OnPositionUpdate records the latest reported frame. It never blocks;
// updates not yet relayed are replaced.
//
// While idle the displayed frame is owned by the intents that requested the
// redraw, so a late report of an older redraw does not move it back.
func (c *Controller) OnPositionUpdate(frame int) {
	if c.sched != nil && c.sched.State() == scheduler.Playing {
		c.displayed.Store(int64(frame))
	}
	c.positions.Put(frame)
}

// Relay delivers position updates to the dispatcher until ctx is done. Only
// the latest pending update is delivered.
func (c *Controller) Relay(ctx context.Context) error {
	for {
		frame, err := c.positions.Take(ctx)
		if err != nil {
			if dropped := c.positions.Drops(); dropped > 0 {
				c.logger.Debug("Coalesced %d position updates", dropped)
			}
			return nil
		}
		c.dispatchMu.Lock()
		dispatch, overlay := c.dispatch, c.overlay
		mark := overlay != nil && time.Since(c.lastMark) >= c.interval
		if mark {
			c.lastMark = time.Now()
		}
		c.dispatchMu.Unlock()

		if dispatch != nil {
			dispatch(frame)
		}
		if mark {
			overlay.MarkTime(c.FrameTime(frame))
		}
	}
}

// Load opens path, probes its frame count and shows frame 0. A missing path
// or the path already loaded is ignored. Decoder failures are returned so
// the UI can report them.
func (c *Controller) Load(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	abs, err := c.fs.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	c.mu.RLock()
	current := c.path
	c.mu.RUnlock()
	if abs == current {
		c.logger.Debug("%s is already loaded", abs)
		return nil
	}

	exists, err := c.fs.Exists(abs)
	if err != nil {
		return fmt.Errorf("check %s: %w", abs, err)
	}
	if !exists {
		c.logger.Debug("Ignoring missing file %s", abs)
		return nil
	}

	// Frame sources are single-reader; nothing may read the old handle
	// while the new one is probed.
	if err := c.stopAndWait(ctx); err != nil {
		return err
	}

	h, err := c.source.Open(ctx, abs)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.logger.Debug("Ignoring missing file %s", abs)
			return nil
		}
		c.logger.Error("Cannot open %s: %v", abs, err)
		return err
	}

	last, err := c.probes.LastValidFrame(ctx, h)
	if err != nil {
		h.Close()
		return fmt.Errorf("probe %s: %w", abs, err)
	}
	if last == 0 {
		if _, err := h.SeekAndRead(ctx, 0); err != nil {
			h.Close()
			c.logger.Error("Cannot open %s: %v", abs, err)
			return fmt.Errorf("%w: %s has no decodable frames", ports.ErrDecodeInit, abs)
		}
	}

	c.mu.Lock()
	old := c.handle
	c.handle = h
	c.path = abs
	c.lastValid = last
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	c.logger.Info("Loaded %s: %.3f fps, %d frames", abs, h.FrameRate(), last+1)
	c.displayed.Store(0)
	c.Update()
	return nil
}

// stopAndWait also cancels a Start still waiting in the inbox.
func (c *Controller) stopAndWait(ctx context.Context) error {
	if err := c.sched.Submit(scheduler.Stop{}); err != nil {
		return err
	}
	return c.sched.AwaitIdle(ctx)
}

// Submit forwards cmd to the scheduler.
func (c *Controller) Submit(cmd scheduler.Command) error {
	return c.sched.Submit(cmd)
}

// PlayForward plays from the displayed frame towards the end.
func (c *Controller) PlayForward() error {
	return c.play(false)
}

// PlayReverse plays from the displayed frame towards frame 0.
func (c *Controller) PlayReverse() error {
	return c.play(true)
}

func (c *Controller) play(reverse bool) error {
	return c.playFrom(c.CurrentDisplayedFrame(), reverse)
}

func (c *Controller) playFrom(frame int, reverse bool) error {
	c.mu.Lock()
	h, last := c.handle, c.lastValid
	c.reverse = reverse
	speed, skip := c.speed, c.skip
	c.mu.Unlock()
	if h == nil {
		return ErrNoVideo
	}

	return c.sched.Submit(scheduler.Start{
		Handle:      h,
		FrameCursor: clamp(frame, 0, last),
		SpeedHz:     speed,
		Reverse:     reverse,
		SkipFrames:  skip,
		FrameCount:  last + 1,
	})
}

// stopTimeout bounds how long Stop waits for the tick in progress.
const stopTimeout = time.Second

// Stop ends playback and redraws the displayed frame. A tick that outlasts
// the wait still ends the session; the redraw is served after it.
func (c *Controller) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.stopWait)
	defer cancel()
	if err := c.stopAndWait(ctx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		c.logger.Debug("Stop did not wait for the current tick")
	}
	c.Update()
	return nil
}

// Update redraws the displayed frame. The scheduler serves it once idle, so
// the display is never presented from two goroutines.
func (c *Controller) Update() {
	c.mu.RLock()
	h := c.handle
	c.mu.RUnlock()
	c.sched.Show(h, c.CurrentDisplayedFrame())
}

// SetFrame moves to frame, clipped to [0, LastValidFrame]. During playback
// the session restarts from the new frame in the same direction.
func (c *Controller) SetFrame(frame int) error {
	c.mu.RLock()
	h, last, reverse := c.handle, c.lastValid, c.reverse
	c.mu.RUnlock()
	if h == nil {
		return ErrNoVideo
	}

	frame = clamp(frame, 0, last)
	c.displayed.Store(int64(frame))
	if c.sched.State() == scheduler.Playing {
		return c.playFrom(frame, reverse)
	}
	c.sched.Show(h, frame)
	return nil
}

// SeekStart shows frame 0.
func (c *Controller) SeekStart() error {
	return c.SetFrame(0)
}

// SeekEnd shows the last valid frame.
func (c *Controller) SeekEnd() error {
	return c.SetFrame(c.LastValidFrame())
}

// Step moves by delta frames.
func (c *Controller) Step(delta int) error {
	return c.SetFrame(c.CurrentDisplayedFrame() + delta)
}

// Jump moves by direction times the jump size.
func (c *Controller) Jump(direction int) error {
	c.mu.RLock()
	n := c.jump
	c.mu.RUnlock()
	return c.Step(direction * n)
}

// SetSpeed changes the requested speed. A running session restarts at the
// new speed from the displayed frame.
func (c *Controller) SetSpeed(hz float64) error {
	if !(hz > 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", scheduler.ErrInvalidCommand, hz)
	}
	c.mu.Lock()
	c.speed = hz
	reverse := c.reverse
	c.mu.Unlock()
	return c.restartIfPlaying(reverse)
}

// SetSkipFrames toggles catch-up. A running session restarts with the new
// policy.
func (c *Controller) SetSkipFrames(enabled bool) error {
	c.mu.Lock()
	c.skip = enabled
	reverse := c.reverse
	c.mu.Unlock()
	return c.restartIfPlaying(reverse)
}

func (c *Controller) restartIfPlaying(reverse bool) error {
	if c.sched.State() != scheduler.Playing {
		return nil
	}
	return c.play(reverse)
}

// CurrentDisplayedFrame returns the latest frame shown or requested.
func (c *Controller) CurrentDisplayedFrame() int {
	return int(c.displayed.Load())
}

// CurrentRequestedSpeed returns the playback speed in Hz.
func (c *Controller) CurrentRequestedSpeed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.speed
}

// SkipFramesEnabled reports whether catch-up is on.
func (c *Controller) SkipFramesEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skip
}

// LastValidFrame returns the last decodable frame, or -1 with no video.
func (c *Controller) LastValidFrame() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastValid
}

// FrameCount returns the number of decodable frames.
func (c *Controller) FrameCount() int {
	return c.LastValidFrame() + 1
}

// JumpSize returns the number of frames a jump moves.
func (c *Controller) JumpSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jump
}

// Path returns the loaded file, or "".
func (c *Controller) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// FrameRate returns the loaded video's frame rate, or 0.
func (c *Controller) FrameRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.handle == nil {
		return 0
	}
	return c.handle.FrameRate()
}

// FrameTime returns the time of frame in seconds from the start.
func (c *Controller) FrameTime(frame int) float64 {
	rate := c.FrameRate()
	if rate <= 0 {
		return 0
	}
	return float64(frame) / rate
}

// Playing reports whether a session is running.
func (c *Controller) Playing() bool {
	return c.sched.State() == scheduler.Playing
}

// Close stops playback and releases the loaded video.
func (c *Controller) Close(ctx context.Context) error {
	if err := c.stopAndWait(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.path = ""
	c.lastValid = -1
	c.mu.Unlock()
	if c.probes != nil {
		c.probes.Invalidate()
	}
	if h != nil {
		return h.Close()
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
