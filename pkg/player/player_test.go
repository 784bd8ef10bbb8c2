package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/framestep/pkg/adapters/logger"
	"github.com/user/framestep/pkg/mocks"
	"github.com/user/framestep/pkg/ports"
	"github.com/user/framestep/pkg/probe"
	"github.com/user/framestep/pkg/scheduler"
)

func TestPlayer_LoadAndPlay(t *testing.T) {
	source := mocks.NewFrameSource()
	source.AddVideo("/work/clip.mp4", 12, 25)
	fs := mocks.NewFileSystem()
	fs.AddFile("/work/clip.mp4", []byte("v"))
	sink := mocks.NewRenderSink()

	cfg := NewConfigBuilder().WithSpeed(1000).WithSkipFrames(false).WithMaxFrameBound(256).Build()
	p := New(cfg, source, sink, fs, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	if err := p.Controller.Load(ctx, "clip.mp4"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := p.Controller.PlayForward(); err != nil {
		t.Fatalf("PlayForward failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st := p.Scheduler.Status()
		if st.Sessions == 1 && st.State == scheduler.Idle {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("playback did not finish: %+v", st)
		}
		time.Sleep(2 * time.Millisecond)
	}

	frames := sink.Frames()
	if got := frames[len(frames)-1]; got != 11 {
		t.Errorf("last presented frame = %d, want 11", got)
	}

	if err := p.Close(context.Background()); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if !sink.Closed() {
		t.Error("sink not closed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestProbe(t *testing.T) {
	source := mocks.NewFrameSource()
	h := source.AddVideo("a.mp4", 3600, 60)

	res, err := Probe(context.Background(), source, "a.mp4", probe.Options{MaxFrameBound: 1 << 14, ExtraIterations: 2}, logger.NewNoop())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if res.LastValidFrame != 3599 || res.FrameCount != 3600 || res.FrameRate != 60 {
		t.Errorf("result = %+v", res)
	}
	if !h.Closed() {
		t.Error("handle not closed")
	}
}

func TestProbe_NoFrames(t *testing.T) {
	source := mocks.NewFrameSource()
	source.AddVideo("empty.mp4", 0, 25)

	_, err := Probe(context.Background(), source, "empty.mp4", probe.DefaultOptions(), logger.NewNoop())
	if !errors.Is(err, ports.ErrDecodeInit) {
		t.Errorf("error = %v, want ErrDecodeInit", err)
	}
}

func TestRenderFrame(t *testing.T) {
	source := mocks.NewFrameSource()
	source.AddVideo("a.mp4", 10, 25)
	sink := mocks.NewRenderSink()

	f, err := RenderFrame(context.Background(), source, "a.mp4", 7, sink, true)
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if f.Index != 7 {
		t.Errorf("Index = %d, want 7", f.Index)
	}
	p := sink.Presentations()
	if len(p) != 1 || p[0].Frame != 7 || !p[0].Transpose {
		t.Errorf("presentations = %+v", p)
	}

	if _, err := RenderFrame(context.Background(), source, "a.mp4", 10, sink, false); !errors.Is(err, ports.ErrReadEnd) {
		t.Errorf("error = %v, want ErrReadEnd", err)
	}
	if _, err := RenderFrame(context.Background(), source, "missing.mp4", 0, sink, false); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
