//go:build gocv

package cvsource

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/user/framestep/pkg/adapters/logger"
	"github.com/user/framestep/pkg/ports"
)

func TestOpen_MissingFile(t *testing.T) {
	s := New(Options{ReopenPerSeek: true}, logger.NewNoop())
	_, err := s.Open(context.Background(), filepath.Join(t.TempDir(), "missing.avi"))
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// writeClip writes n solid frames to an MJPG AVI.
func writeClip(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.avi")
	w, err := gocv.VideoWriterFile(path, "MJPG", 25, 32, 24, true)
	if err != nil {
		t.Skipf("cannot create video writer: %v", err)
	}
	defer w.Close()

	mat := gocv.NewMatWithSize(24, 32, gocv.MatTypeCV8UC3)
	defer mat.Close()
	for i := 0; i < n; i++ {
		if err := w.Write(mat); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}
	return path
}

func TestHandle_SeekAndRead(t *testing.T) {
	path := writeClip(t, 10)

	for _, reopen := range []bool{true, false} {
		s := New(Options{ReopenPerSeek: reopen}, logger.NewNoop())
		h, err := s.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		f, err := h.SeekAndRead(context.Background(), 3)
		if err != nil {
			t.Fatalf("reopen=%t: SeekAndRead(3) failed: %v", reopen, err)
		}
		if f.Width() != 32 || f.Height() != 24 {
			t.Errorf("frame size = %dx%d, want 32x24", f.Width(), f.Height())
		}
		if _, err := h.SeekAndRead(context.Background(), -1); !errors.Is(err, ports.ErrReadEnd) {
			t.Errorf("SeekAndRead(-1) error = %v, want ErrReadEnd", err)
		}
		h.Close()
	}
}
