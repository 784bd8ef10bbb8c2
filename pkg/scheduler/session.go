package scheduler

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// session is the state of one Start-to-Stop (or boundary) run.
type session struct {
	id     string
	cmd    Start
	cursor int
	step   int

	anchorTime  time.Time
	anchorFrame int
	interval    time.Duration
}

func newSession(cmd Start, now time.Time) *session {
	return &session{
		id:          uuid.NewString(),
		cmd:         cmd,
		cursor:      cmd.FrameCursor,
		step:        cmd.step(),
		anchorTime:  now,
		anchorFrame: cmd.FrameCursor,
		interval:    tickInterval(cmd.SpeedHz),
	}
}

// tickInterval converts a speed to the minimum gap between ticks. Speeds too
// slow for a Duration get the longest one instead of wrapping negative.
func tickInterval(hz float64) time.Duration {
	d := float64(time.Second) / hz
	if d >= math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(d)
}

// advance moves the cursor one step and, with skip frames on, jumps it to
// the wall-clock target when that target is further along. tickStart is the
// start time of the tick just rendered. It returns the number of frames
// skipped by the jump.
func (s *session) advance(tickStart time.Time) int {
	s.cursor += s.step
	if !s.cmd.SkipFrames {
		return 0
	}
	elapsed := tickStart.Sub(s.anchorTime).Seconds()
	target := s.anchorFrame + int(float64(s.step)*s.cmd.SpeedHz*elapsed)
	if s.step*(target-s.cursor) > 0 {
		skipped := s.step * (target - s.cursor)
		s.cursor = target
		return skipped
	}
	return 0
}

// finished reports whether the cursor passed the sequence boundary.
func (s *session) finished() bool {
	if s.step < 0 {
		return s.cursor < 0
	}
	return s.cursor >= s.cmd.FrameCount
}
