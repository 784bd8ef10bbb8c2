// Package main provides the CLI entry point for framestep.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framestep/pkg/adapters/logger"
	"github.com/user/framestep/pkg/adapters/mp4meta"
	"github.com/user/framestep/pkg/adapters/osfilesystem"
	"github.com/user/framestep/pkg/config"
	"github.com/user/framestep/pkg/player"
	"github.com/user/framestep/pkg/ports"
	"github.com/user/framestep/pkg/summarizer"
	"github.com/user/framestep/pkg/tui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := newApp()

	var err error
	runMain(func() {
		err = app.RunContext(context.Background(), args)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "framestep",
		Usage:       l10n.T("Frame-accurate video player"),
		Description: l10n.T("framestep plays videos frame by frame at a chosen rate, forward or in reverse."),
		Version:     version,
		Flags:       globalFlags(),
		ArgsUsage:   "[FILE]",
		Action:      playAction,
		Commands: []*cli.Command{
			{
				Name:      "play",
				Usage:     l10n.T("Open the player, optionally loading FILE"),
				ArgsUsage: "[FILE]",
				Flags:     playFlags(),
				Action:    playAction,
			},
			{
				Name:      "probe",
				Usage:     l10n.T("Print the frame rate and frame count of FILE"),
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown probe summary to this file")},
				},
				Action: probeAction,
			},
			{
				Name:      "frame",
				Usage:     l10n.T("Extract frame N of FILE as PNG or JPEG"),
				ArgsUsage: "FILE N",
				Flags:     frameFlags(),
				Action:    frameAction,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("framestep version %s", version))
					return nil
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "backend", Usage: l10n.T("Decoding backend (ffmpeg, opencv)"), Category: l10n.T("Decoding")},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to the ffmpeg executable"), EnvVars: []string{"FRAMESTEP_FFMPEG"}, Category: l10n.T("Decoding")},
		&cli.StringFlag{Name: "ffprobe-path", Usage: l10n.T("Path to the ffprobe executable"), EnvVars: []string{"FRAMESTEP_FFPROBE"}, Category: l10n.T("Decoding")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.StringFlag{Name: "log-file", Usage: l10n.T("Write logs to this file"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
	}
}

func playFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "sink", Usage: l10n.T("Display surface (terminal, sdl, snapshot, none)"), Category: l10n.T("Display")},
		&cli.BoolFlag{Name: "transpose", Usage: l10n.T("Swap the horizontal and vertical axes"), Category: l10n.T("Display")},
		&cli.StringFlag{Name: "snapshot-dir", Usage: l10n.T("Save every displayed frame as PNG in this directory"), Category: l10n.T("Display")},
		&cli.Float64Flag{Name: "speed", Usage: l10n.T("Playback speed in frames per second"), Category: l10n.T("Playback")},
		&cli.BoolFlag{Name: "no-skip-frames", Usage: l10n.T("Show every frame even when decoding falls behind"), Category: l10n.T("Playback")},
		&cli.IntFlag{Name: "jump", Usage: l10n.T("Frames moved by a jump"), Category: l10n.T("Playback")},
	}
}

func frameFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output file path, .jpg for JPEG (required)")},
		&cli.BoolFlag{Name: "transpose", Usage: l10n.T("Swap the horizontal and vertical axes")},
	}
}

// isSet reports whether name was given on the command line at any level.
func isSet(c *cli.Context, name string) bool {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return true
		}
	}
	return false
}

// loadConfig reads the configuration file, if any, and applies flags over it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	stringFlags := map[string]*string{
		"backend":      &cfg.Backend,
		"ffmpeg-path":  &cfg.FFmpegPath,
		"ffprobe-path": &cfg.FFprobePath,
		"log-level":    &cfg.LogLevel,
		"log-file":     &cfg.LogFile,
		"sink":         &cfg.Sink,
		"snapshot-dir": &cfg.SnapshotDir,
	}
	for name, dst := range stringFlags {
		if isSet(c, name) {
			*dst = c.String(name)
		}
	}
	if isSet(c, "speed") {
		cfg.SpeedHz = c.Float64("speed")
	}
	if isSet(c, "no-skip-frames") {
		cfg.SkipFrames = !c.Bool("no-skip-frames")
	}
	if isSet(c, "jump") {
		cfg.JumpSize = c.Int("jump")
	}
	if isSet(c, "transpose") {
		cfg.Transpose = c.Bool("transpose")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}

	return cfg, cfg.Validate()
}

// newLogger builds the logger for a command. While the terminal UI owns the
// screen, logs go to the log file or nowhere.
func newLogger(cfg config.Config, screen bool) (ports.Logger, func(), error) {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop(), func() {}, nil
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return logger.NewSlog(level, f), func() { f.Close() }, nil
	}
	if screen {
		return logger.NewNoop(), func() {}, nil
	}
	return logger.NewConsole(level), func() {}, nil
}

// withInterrupt returns a context cancelled on SIGINT or SIGTERM.
func withInterrupt(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// closeTimeout bounds the final stop when the player exits.
const closeTimeout = 2 * time.Second

func playAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return cli.Exit(l10n.T("At most one file argument is accepted"), 2)
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := withInterrupt(c.Context, log)
	defer cancel()

	source, err := newSource(cfg, log)
	if err != nil {
		return err
	}

	notifier := tui.NewNotifier()
	env := defaultEnv(cfg, path, log)
	env.onFrame = notifier.Redraw
	env.explicit = map[string]bool{"snapshot-dir": isSet(c, "snapshot-dir")}
	if path == "" {
		env.title = "framestep"
	}
	disp, err := newDisplay(env)
	if err != nil {
		return err
	}

	p := player.New(cfg.ToPlayerConfig(), source, disp.sink, env.fs, log)
	p.Controller.SetDispatcher(notifier.Position)
	p.Controller.SetOverlay(notifier)

	runDone := make(chan error, 1)
	go func() { runDone <- p.Run(ctx) }()

	opts := tui.Options{Path: path, Notifier: notifier}
	if disp.preview != nil {
		opts.Preview = disp.preview
	}
	prog := tea.NewProgram(tui.New(ctx, p.Controller, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	notifier.Attach(prog)

	_, uiErr := prog.Run()
	if errors.Is(uiErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		uiErr = nil
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
	defer closeCancel()
	closeErr := p.Close(closeCtx)
	cancel()
	<-runDone

	return errors.Join(uiErr, closeErr)
}

func probeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("A file argument is required"), 2)
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := withInterrupt(c.Context, log)
	defer cancel()

	source, err := newSource(cfg, log)
	if err != nil {
		return err
	}

	pc := cfg.ToPlayerConfig()
	started := time.Now()
	res, err := player.Probe(ctx, source, path, pc.ProbeOptions(), log)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	video := summarizer.VideoInfo{Path: res.Path}
	out := c.App.Writer
	fmt.Fprintln(out, l10n.F("File: %s", res.Path))
	fmt.Fprintln(out, l10n.F("Frame rate: %.3f fps", res.FrameRate))
	if meta, err := mp4meta.ReadFile(path); err == nil {
		fmt.Fprintln(out, l10n.F("Container: %s %dx%d, %d samples", meta.Codec, meta.Width, meta.Height, meta.SampleCount))
		video.Codec = string(meta.Codec)
		video.Width, video.Height = meta.Width, meta.Height
		video.ContainerSamples = meta.SampleCount
		video.Fragmented = meta.Fragmented
	}
	fmt.Fprintln(out, l10n.F("Last valid frame: %d", res.LastValidFrame))
	fmt.Fprintln(out, l10n.F("Frame count: %d", res.FrameCount))
	fmt.Fprintln(out, l10n.F("Duration: %.3f s", float64(res.FrameCount)/res.FrameRate))

	summaryPath := c.String("summary")
	if summaryPath == "" {
		return nil
	}
	summary := summarizer.NewBuilder().
		WithVideo(video).
		WithProbe(res.FrameRate, res.LastValidFrame, elapsed).
		WithSettings(summarizer.Settings{
			Backend:         cfg.Backend,
			SpeedHz:         pc.SpeedHz,
			SkipFrames:      pc.SkipFrames,
			JumpSize:        pc.JumpSize,
			MaxFrameBound:   pc.MaxFrameBound,
			ExtraIterations: pc.ExtraIterations,
		}).
		Build()
	if err := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), osfilesystem.New()).Write(summaryPath, summary); err != nil {
		return err
	}
	log.Info("Summary saved to %s", summaryPath)
	return nil
}

func frameAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit(l10n.T("FILE and N are required"), 2)
	}
	path := c.Args().Get(0)
	var frame int
	if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &frame); err != nil || frame < 0 {
		return cli.Exit(l10n.F("Invalid frame number %s", c.Args().Get(1)), 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := withInterrupt(c.Context, log)
	defer cancel()

	source, err := newSource(cfg, log)
	if err != nil {
		return err
	}

	env := defaultEnv(cfg, path, log)
	env.cfg.SnapshotDir = ""
	sink := newSnapshotSink(env, false, frameCaption(path, frame))
	defer sink.Close()

	f, err := player.RenderFrame(ctx, source, path, frame, sink, cfg.Transpose)
	if err != nil {
		return err
	}

	output, err := filepath.Abs(c.String("output"))
	if err != nil {
		return err
	}
	if err := sink.Save(output); err != nil {
		return err
	}
	log.Info("Saved frame %d (%.3f s) to %s", f.Index, f.TimestampMs/1000, output)
	return nil
}
