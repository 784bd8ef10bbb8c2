package ffmpegsource

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/user/framestep/pkg/adapters/logger"
	"github.com/user/framestep/pkg/ports"
	"github.com/user/framestep/pkg/probe"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"24", 24},
		{"", 0},
		{"abc/1", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{"streams":[{"codec_name":"h264","width":1920,"height":1080,"avg_frame_rate":"0/0","r_frame_rate":"50/1"}]}`)

	info, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Codec != "h264" || info.Width != 1920 || info.Height != 1080 {
		t.Errorf("info = %+v", info)
	}
	if info.FrameRate != 50 {
		t.Errorf("FrameRate = %v, want 50 from r_frame_rate", info.FrameRate)
	}
}

func TestParseProbe_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no streams", `{"streams":[]}`},
		{"bad size", `{"streams":[{"width":0,"height":0}]}`},
		{"not json", `oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseProbe([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFindFFmpeg_CustomPathMissing(t *testing.T) {
	_, err := FindFFmpeg(filepath.Join(t.TempDir(), "ffmpeg"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("error = %v, want ErrFFmpegNotFound", err)
	}
}

func TestFindFFprobe_Sibling(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	ffprobe := filepath.Join(dir, "ffprobe")
	for _, p := range []string{ffmpeg, ffprobe} {
		if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("FFPROBE_PATH", "")
	t.Setenv("PATH", dir)

	got, err := FindFFprobe("", ffmpeg)
	if err != nil {
		t.Fatalf("FindFFprobe failed: %v", err)
	}
	if got != ffprobe {
		t.Errorf("FindFFprobe = %s, want %s", got, ffprobe)
	}
}

func TestNew_MissingBinaryIsDecodeInit(t *testing.T) {
	_, err := New(Options{FFmpegPath: filepath.Join(t.TempDir(), "missing")}, logger.NewNoop())
	if !errors.Is(err, ports.ErrDecodeInit) {
		t.Errorf("error = %v, want ErrDecodeInit", err)
	}
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("error = %v, want ErrFFmpegNotFound", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	s := &Source{ffmpeg: "ffmpeg", ffprobe: "ffprobe", logger: logger.NewNoop()}

	_, err := s.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// makeClip renders a 30 frame 25 fps test pattern with ffmpeg.
func makeClip(t *testing.T, ffmpeg string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testsrc.mp4")
	cmd := exec.Command(ffmpeg, "-v", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=25",
		"-frames:v", "30",
		"-c:v", "mpeg4", "-g", "5",
		path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test clip: %v: %s", err, out)
	}
	return path
}

// decodeAll decodes every frame of path in order as packed RGBA.
func decodeAll(t *testing.T, ffmpeg, path string, w, h int) [][]byte {
	t.Helper()
	out, err := exec.Command(ffmpeg, "-v", "error", "-nostdin",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	).Output()
	if err != nil {
		t.Fatalf("sequential decode failed: %v", err)
	}
	size := w * h * 4
	var frames [][]byte
	for len(out) >= size {
		frames = append(frames, out[:size])
		out = out[size:]
	}
	return frames
}

func TestSource_ReadFrames(t *testing.T) {
	s, err := New(Options{}, logger.NewNoop())
	if err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}
	path := makeClip(t, s.ffmpeg)
	ctx := context.Background()

	h, err := s.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer h.Close()

	if h.FrameRate() != 25 {
		t.Errorf("FrameRate = %v, want 25", h.FrameRate())
	}

	f, err := h.SeekAndRead(ctx, 0)
	if err != nil {
		t.Fatalf("SeekAndRead(0) failed: %v", err)
	}
	if f.Width() != 64 || f.Height() != 48 {
		t.Errorf("frame size = %dx%d, want 64x48", f.Width(), f.Height())
	}

	frames := decodeAll(t, s.ffmpeg, path, 64, 48)
	if len(frames) != 30 {
		t.Fatalf("sequential decode gave %d frames, want 30", len(frames))
	}
	if bytes.Equal(frames[19], frames[20]) || bytes.Equal(frames[20], frames[22]) {
		t.Fatal("test clip frames are not distinct")
	}

	// 20 is a keyframe, 22 needs the frames after it.
	for _, n := range []int{20, 22} {
		f, err := h.SeekAndRead(ctx, n)
		if err != nil {
			t.Fatalf("SeekAndRead(%d) failed: %v", n, err)
		}
		if f.Index != n {
			t.Errorf("frame index = %d, want %d", f.Index, n)
		}
		if !bytes.Equal(f.Image.Pix, frames[n]) {
			t.Errorf("SeekAndRead(%d) does not match frame %d of the sequential decode", n, n)
		}
	}

	if _, err := h.SeekAndRead(ctx, 100); !errors.Is(err, ports.ErrReadEnd) {
		t.Errorf("SeekAndRead(100) error = %v, want ErrReadEnd", err)
	}

	last, err := probe.FindLastValidFrame(ctx, h, probe.Options{MaxFrameBound: 64, ExtraIterations: 2}, logger.NewNoop())
	if err != nil {
		t.Fatalf("FindLastValidFrame failed: %v", err)
	}
	if last != 29 {
		t.Errorf("last valid frame = %d, want 29", last)
	}
}

func TestHandle_ClosedRead(t *testing.T) {
	h := &Handle{path: "x.mp4", info: StreamInfo{Width: 2, Height: 2, FrameRate: 25}}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := h.SeekAndRead(context.Background(), 0); !errors.Is(err, ports.ErrReadEnd) {
		t.Errorf("error = %v, want ErrReadEnd", err)
	}
}

func TestHandle_CloseDuringReads(t *testing.T) {
	s := &Source{ffmpeg: filepath.Join(t.TempDir(), "missing"), logger: logger.NewNoop()}
	h := &Handle{source: s, path: "x.mp4", info: StreamInfo{Width: 2, Height: 2, FrameRate: 25}}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(frame int) {
			defer wg.Done()
			if _, err := h.SeekAndRead(ctx, frame); !errors.Is(err, ports.ErrReadEnd) {
				t.Errorf("SeekAndRead(%d) error = %v, want ErrReadEnd", frame, err)
			}
		}(i)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	wg.Wait()

	if _, err := h.SeekAndRead(ctx, 0); !errors.Is(err, ports.ErrReadEnd) {
		t.Errorf("read after close error = %v, want ErrReadEnd", err)
	}
}
