package ports

// PositionListener receives the frame cursor reported by the scheduler on
// every tick. Implementations must return without blocking; the scheduler
// calls it from its own goroutine.
type PositionListener interface {
	OnPositionUpdate(frame int)
}

// PositionListenerFunc adapts a function to PositionListener.
type PositionListenerFunc func(frame int)

// OnPositionUpdate implements PositionListener.
func (f PositionListenerFunc) OnPositionUpdate(frame int) {
	f(frame)
}

// TraceOverlay draws a vertical time marker over auxiliary traces.
type TraceOverlay interface {
	// MarkTime moves the marker to seconds since the start of the video.
	MarkTime(seconds float64)
}
