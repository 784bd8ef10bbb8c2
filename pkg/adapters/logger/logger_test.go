package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/framestep/pkg/ports"
)

func TestConsoleWriter_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level ports.LogLevel
		want  []string
		skip  []string
	}{
		{"debug shows all", ports.LevelDebug, []string{"d-msg", "i-msg", "w-msg", "e-msg"}, nil},
		{"warn hides debug and info", ports.LevelWarn, []string{"w-msg", "e-msg"}, []string{"d-msg", "i-msg"}},
		{"quiet hides everything", ports.LevelQuiet, nil, []string{"d-msg", "i-msg", "w-msg", "e-msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewConsoleWriter(tt.level, &buf)
			log.Debug("d-msg")
			log.Info("i-msg")
			log.Warn("w-msg")
			log.Error("e-msg")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q: %q", w, out)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q: %q", s, out)
				}
			}
		})
	}
}

func TestConsoleWriter_Component(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleWriter(ports.LevelDebug, &buf).WithComponent("scheduler")
	log.Info("tick %d", 3)

	if got := strings.TrimSpace(buf.String()); got != "[scheduler] tick 3" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSlog_WritesComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(ports.LevelInfo, &buf).WithComponent("probe")
	log.Debug("hidden")
	log.Info("frame count %d", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered: %q", out)
	}
	if !strings.Contains(out, "frame count 42") {
		t.Errorf("missing message: %q", out)
	}
	if !strings.Contains(out, "component=probe") {
		t.Errorf("missing component attribute: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want ports.LogLevel
	}{
		{"debug", ports.LevelDebug},
		{"warn", ports.LevelWarn},
		{"quiet", ports.LevelQuiet},
		{"bogus", ports.LevelInfo},
	}
	for _, tt := range tests {
		if got := ports.ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
