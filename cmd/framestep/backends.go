package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/user/framestep/pkg/adapters/ffmpegsource"
	"github.com/user/framestep/pkg/adapters/ggrenderer"
	"github.com/user/framestep/pkg/adapters/multisink"
	"github.com/user/framestep/pkg/adapters/nullsink"
	"github.com/user/framestep/pkg/adapters/osfilesystem"
	"github.com/user/framestep/pkg/adapters/snapshotsink"
	"github.com/user/framestep/pkg/adapters/termsink"
	"github.com/user/framestep/pkg/config"
	"github.com/user/framestep/pkg/ports"
)

type sourceFactory func(cfg config.Config, log ports.Logger) (ports.FrameSource, error)

// sourceFactories holds the decoding backends compiled into the binary.
// Build tags register more.
var sourceFactories = map[string]sourceFactory{
	"ffmpeg": func(cfg config.Config, log ports.Logger) (ports.FrameSource, error) {
		return ffmpegsource.New(ffmpegsource.Options{
			FFmpegPath:  cfg.FFmpegPath,
			FFprobePath: cfg.FFprobePath,
		}, log)
	},
}

func newSource(cfg config.Config, log ports.Logger) (ports.FrameSource, error) {
	factory, ok := sourceFactories[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("backend %q is not built in (available: %v)", cfg.Backend, available(sourceFactories))
	}
	return factory(cfg, log)
}

// sinkEnv carries what sink constructors may need.
type sinkEnv struct {
	cfg      config.Config
	title    string
	fs       ports.FileSystem
	images   ports.Renderer
	log      ports.Logger
	onFrame  func()
	explicit map[string]bool
}

type sinkFactory func(env sinkEnv) (ports.RenderSink, error)

// windowSinks holds display sinks that need their own window. Build tags
// register them.
var windowSinks = map[string]sinkFactory{}

// runMain runs fn on the thread a window sink requires.
var runMain = func(fn func()) { fn() }

// display is the sink set for interactive playback.
type display struct {
	sink    ports.RenderSink
	preview *termsink.Sink
}

func newDisplay(env sinkEnv) (*display, error) {
	d := &display{}
	var sinks []ports.RenderSink

	switch env.cfg.Sink {
	case "terminal":
		d.preview = termsink.New(env.images, termsink.Options{
			Width:   env.cfg.PreviewWidth,
			OnFrame: env.onFrame,
		})
		sinks = append(sinks, d.preview)
	case "snapshot":
		sinks = append(sinks, newSnapshotSink(env, true, env.title))
	case "none":
		sinks = append(sinks, nullsink.New())
	default:
		factory, ok := windowSinks[env.cfg.Sink]
		if !ok {
			return nil, fmt.Errorf("sink %q is not built in", env.cfg.Sink)
		}
		s, err := factory(env)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}

	// An explicit snapshot directory records alongside any other sink
	if env.cfg.Sink != "snapshot" && env.explicit["snapshot-dir"] {
		sinks = append(sinks, newSnapshotSink(env, true, env.title))
	}

	d.sink = multisink.New(sinks...)
	return d, nil
}

func newSnapshotSink(env sinkEnv, writeEach bool, caption string) *snapshotsink.Sink {
	return snapshotsink.New(env.fs, env.images, snapshotsink.Options{
		Dir:        env.cfg.SnapshotDir,
		Background: config.ParseColor(env.cfg.BackgroundColor),
		WriteEach:  writeEach,
		Caption:    func() string { return caption },
	}, env.log)
}

func defaultEnv(cfg config.Config, title string, log ports.Logger) sinkEnv {
	return sinkEnv{
		cfg:    cfg,
		title:  filepath.Base(title),
		fs:     osfilesystem.New(),
		images: ggrenderer.New(),
		log:    log,
	}
}

// frameCaption labels an extracted frame.
func frameCaption(path string, frame int) string {
	return fmt.Sprintf("%s  frame %d", filepath.Base(path), frame)
}

func available[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
