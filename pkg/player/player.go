package player

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/user/framestep/pkg/ports"
	"github.com/user/framestep/pkg/probe"
	"github.com/user/framestep/pkg/scheduler"
	"github.com/user/framestep/pkg/transport"
)

// Player wires a frame source and a render sink to the scheduler and the
// transport controller.
type Player struct {
	cfg    Config
	sink   ports.RenderSink
	logger ports.Logger

	Scheduler  *scheduler.Scheduler
	Controller *transport.Controller
}

// New assembles a Player. Call Run to start playback processing.
func New(cfg Config, source ports.FrameSource, sink ports.RenderSink, fs ports.FileSystem, logger ports.Logger) *Player {
	probes := probe.NewCache(cfg.ProbeOptions(), logger)
	ctrl := transport.New(source, probes, fs, cfg.TransportOptions(), logger)
	sched := scheduler.New(sink, ctrl, cfg.SchedulerOptions(), logger)
	ctrl.Attach(sched)

	return &Player{
		cfg:        cfg,
		sink:       sink,
		logger:     logger,
		Scheduler:  sched,
		Controller: ctrl,
	}
}

// Run runs the scheduler and the position relay until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Scheduler.Run(ctx) })
	g.Go(func() error { return p.Controller.Relay(ctx) })
	return g.Wait()
}

// Close stops playback and releases the video and the sink.
func (p *Player) Close(ctx context.Context) error {
	return errors.Join(p.Controller.Close(ctx), p.sink.Close())
}

// ProbeResult describes a probed file.
type ProbeResult struct {
	Path           string
	FrameRate      float64
	LastValidFrame int
	FrameCount     int
}

// Probe opens path and finds its last decodable frame.
func Probe(ctx context.Context, source ports.FrameSource, path string, opts probe.Options, logger ports.Logger) (ProbeResult, error) {
	h, err := source.Open(ctx, path)
	if err != nil {
		return ProbeResult{}, err
	}
	defer h.Close()

	last, err := probe.FindLastValidFrame(ctx, h, opts, logger.WithComponent("probe"))
	if err != nil {
		return ProbeResult{}, err
	}
	if last == 0 {
		if _, err := h.SeekAndRead(ctx, 0); err != nil {
			return ProbeResult{}, fmt.Errorf("%w: %s has no decodable frames", ports.ErrDecodeInit, path)
		}
	}
	return ProbeResult{
		Path:           path,
		FrameRate:      h.FrameRate(),
		LastValidFrame: last,
		FrameCount:     last + 1,
	}, nil
}

// RenderFrame reads one frame of path and presents it to sink.
func RenderFrame(ctx context.Context, source ports.FrameSource, path string, frame int, sink ports.RenderSink, transpose bool) (*ports.DisplayFrame, error) {
	h, err := source.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	f, err := h.SeekAndRead(ctx, frame)
	if err != nil {
		return nil, err
	}
	if err := sink.Present(f.Image, transpose); err != nil {
		return nil, err
	}
	return f, nil
}
