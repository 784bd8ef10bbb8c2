package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/framestep/pkg/adapters/logger"
	"github.com/user/framestep/pkg/adapters/multisink"
	"github.com/user/framestep/pkg/config"
)

// parseConfig runs loadConfig behind the real flag set.
func parseConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var (
		got    config.Config
		gotErr error
	)
	capture := func(c *cli.Context) error {
		got, gotErr = loadConfig(c)
		return nil
	}
	app := &cli.App{
		Name:   "framestep",
		Flags:  globalFlags(),
		Action: capture,
		Commands: []*cli.Command{
			{Name: "play", Flags: playFlags(), Action: capture},
			{Name: "frame", Flags: frameFlags(), Action: capture},
		},
	}
	if err := app.Run(append([]string{"framestep"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return got, gotErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(t)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg != config.Defaults() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := parseConfig(t,
		"--log-level", "debug",
		"--ffmpeg-path", "/opt/ffmpeg",
		"play",
		"--speed", "24",
		"--no-skip-frames",
		"--jump", "5",
		"--sink", "none",
		"--transpose",
	)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.FFmpegPath != "/opt/ffmpeg" {
		t.Errorf("global flags not applied: %+v", cfg)
	}
	if cfg.SpeedHz != 24 || cfg.SkipFrames || cfg.JumpSize != 5 {
		t.Errorf("playback = %v/%v/%v", cfg.SpeedHz, cfg.SkipFrames, cfg.JumpSize)
	}
	if cfg.Sink != "none" || !cfg.Transpose {
		t.Errorf("display = %s/%v", cfg.Sink, cfg.Transpose)
	}
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framestep.yaml")
	if err := os.WriteFile(path, []byte("speed_hz: 10\njump_size: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseConfig(t, "--config", path, "play", "--speed", "30")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.SpeedHz != 30 {
		t.Errorf("SpeedHz = %v, flag should win", cfg.SpeedHz)
	}
	if cfg.JumpSize != 7 {
		t.Errorf("JumpSize = %d, file value should survive", cfg.JumpSize)
	}
}

func TestLoadConfig_Quiet(t *testing.T) {
	cfg, err := parseConfig(t, "--quiet")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.LogLevel != "quiet" {
		t.Errorf("LogLevel = %s, want quiet", cfg.LogLevel)
	}

	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	defer closeLog()
	if _, ok := log.(*logger.NoopLogger); !ok {
		t.Errorf("logger = %T, want NoopLogger", log)
	}
}

func TestLoadConfig_InvalidSink(t *testing.T) {
	if _, err := parseConfig(t, "play", "--sink", "printer"); err == nil {
		t.Error("expected error for unknown sink")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.Defaults()

	log, closeLog, err := newLogger(cfg, true)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	closeLog()
	if _, ok := log.(*logger.NoopLogger); !ok {
		t.Errorf("screen logger = %T, want NoopLogger without a log file", log)
	}

	cfg.LogFile = filepath.Join(t.TempDir(), "framestep.log")
	log, closeLog, err = newLogger(cfg, true)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	log.Info("Scheduler started")
	closeLog()
	if _, ok := log.(*logger.SlogLogger); !ok {
		t.Errorf("file logger = %T, want SlogLogger", log)
	}
	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected log output in the file")
	}
}

func TestNewSource_Unknown(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend = "vlc"

	_, err := newSource(cfg, logger.NewNoop())
	if err == nil || !strings.Contains(err.Error(), "not built in") {
		t.Errorf("err = %v, want not built in", err)
	}
}

func TestNewDisplay(t *testing.T) {
	tests := []struct {
		sink        string
		snapshotDir bool
		wantSinks   int
		wantPreview bool
	}{
		{"terminal", false, 1, true},
		{"none", false, 1, false},
		{"snapshot", false, 1, false},
		{"terminal", true, 2, true},
		{"snapshot", true, 1, false},
	}
	for _, tt := range tests {
		cfg := config.Defaults()
		cfg.Sink = tt.sink
		cfg.SnapshotDir = t.TempDir()
		env := defaultEnv(cfg, "clip.mp4", logger.NewNoop())
		env.explicit = map[string]bool{"snapshot-dir": tt.snapshotDir}

		d, err := newDisplay(env)
		if err != nil {
			t.Fatalf("newDisplay(%s) failed: %v", tt.sink, err)
		}
		if n := d.sink.(*multisink.Sink).Len(); n != tt.wantSinks {
			t.Errorf("%s/%v: %d sinks, want %d", tt.sink, tt.snapshotDir, n, tt.wantSinks)
		}
		if (d.preview != nil) != tt.wantPreview {
			t.Errorf("%s: preview = %v", tt.sink, d.preview)
		}
	}
}

func TestNewDisplay_Unknown(t *testing.T) {
	cfg := config.Defaults()
	cfg.Sink = "printer"
	if _, err := newDisplay(defaultEnv(cfg, "clip.mp4", logger.NewNoop())); err == nil {
		t.Error("expected error for unknown sink")
	}
}

func TestVersionCommand(t *testing.T) {
	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf

	if err := app.Run([]string{"framestep", "version"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), version) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFrameCaption(t *testing.T) {
	if got := frameCaption("/videos/run.mp4", 120); got != "run.mp4  frame 120" {
		t.Errorf("frameCaption = %q", got)
	}
}

func TestAvailable(t *testing.T) {
	names := available(map[string]int{"b": 1, "a": 2})
	if strings.Join(names, ",") != "a,b" {
		t.Errorf("available = %v", names)
	}
}
