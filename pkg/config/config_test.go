package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.SpeedHz != 50 || !cfg.SkipFrames || cfg.JumpSize != 20 {
		t.Errorf("playback defaults = %v/%v/%v", cfg.SpeedHz, cfg.SkipFrames, cfg.JumpSize)
	}
	if cfg.Backend != "ffmpeg" || cfg.Sink != "terminal" {
		t.Errorf("backend/sink = %s/%s", cfg.Backend, cfg.Sink)
	}
	if cfg.Probe.MaxFrameBound != 4194304 || cfg.Probe.ExtraIterations != 2 {
		t.Errorf("probe = %+v", cfg.Probe)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framestep.yaml")
	data := []byte(`
speed_hz: 24
skip_frames: false
sink: snapshot
probe:
  max_frame_bound: 1024
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.SpeedHz != 24 || cfg.SkipFrames {
		t.Errorf("playback = %v/%v, want 24/false", cfg.SpeedHz, cfg.SkipFrames)
	}
	if cfg.Sink != "snapshot" {
		t.Errorf("Sink = %s", cfg.Sink)
	}
	if cfg.Probe.MaxFrameBound != 1024 || cfg.Probe.ExtraIterations != 2 {
		t.Errorf("probe = %+v, want 1024 with default extra iterations", cfg.Probe)
	}
	if cfg.JumpSize != 20 {
		t.Errorf("JumpSize = %d, want default 20", cfg.JumpSize)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "speed_hz: [1, 2"},
		{"bad backend", "backend: vlc"},
		{"bad sink", "sink: printer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#141428", color.RGBA{R: 20, G: 20, B: 40, A: 255}},
		{"ffffff", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#AbCdEf", color.RGBA{R: 0xab, G: 0xcd, B: 0xef, A: 255}},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "#fff", "nothex"} {
		if got := ParseColor(bad); got != color.Black {
			t.Errorf("ParseColor(%q) = %v, want black", bad, got)
		}
	}
}

func TestToPlayerConfig(t *testing.T) {
	cfg := Defaults()
	cfg.SpeedHz = -1
	cfg.JumpSize = 5
	cfg.OverlayIntervalMs = 40

	pc := cfg.ToPlayerConfig()
	if pc.SpeedHz != 50 {
		t.Errorf("SpeedHz = %v, want clamped default 50", pc.SpeedHz)
	}
	if pc.JumpSize != 5 {
		t.Errorf("JumpSize = %d, want 5", pc.JumpSize)
	}
	if pc.OverlayInterval != 40*time.Millisecond {
		t.Errorf("OverlayInterval = %v, want 40ms", pc.OverlayInterval)
	}
}
