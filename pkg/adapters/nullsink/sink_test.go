package nullsink

import (
	"image"
	"testing"
)

func TestSink_CountsFrames(t *testing.T) {
	s := New()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	for i := 0; i < 3; i++ {
		if err := s.Present(img, i%2 == 0); err != nil {
			t.Fatalf("Present: %v", err)
		}
	}
	if got := s.Presented(); got != 3 {
		t.Errorf("Presented = %d, want 3", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
