package multisink

import (
	"errors"
	"image"
	"testing"

	"github.com/user/framestep/pkg/mocks"
	"github.com/user/framestep/pkg/ports"
)

func TestSink_FansOut(t *testing.T) {
	a, b := mocks.NewRenderSink(), mocks.NewRenderSink()
	s := New(a, nil, b)
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	img := mocks.SyntheticFrame(7, 25, 4, 4).Image
	if err := s.Present(img, true); err != nil {
		t.Fatalf("Present: %v", err)
	}

	for name, sink := range map[string]*mocks.RenderSink{"a": a, "b": b} {
		p := sink.Presentations()
		if len(p) != 1 || p[0].Frame != 7 || !p[0].Transpose {
			t.Errorf("sink %s presentations = %+v", name, p)
		}
	}
}

func TestSink_FailureDoesNotStopOthers(t *testing.T) {
	failing := mocks.NewRenderSink()
	failing.PresentFunc = func(img image.Image, transpose bool) error {
		return errors.New("window gone")
	}
	ok := mocks.NewRenderSink()
	s := New(failing, ok)

	err := s.Present(mocks.SyntheticFrame(1, 25, 4, 4).Image, false)
	if !errors.Is(err, ports.ErrPresent) {
		t.Errorf("error = %v, want ErrPresent", err)
	}
	if len(ok.Frames()) != 1 {
		t.Error("second sink should still receive the frame")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !failing.Closed() || !ok.Closed() {
		t.Error("all sinks should be closed")
	}
}
