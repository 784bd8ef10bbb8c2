package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as Markdown tables.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", l10n.T("Probe Summary"))
	fmt.Fprintf(&sb, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))

	// Video
	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Video"))
	writeTableHeader(&sb)
	writeRow(&sb, l10n.T("File"), filepath.Base(s.Video.Path))
	if s.Video.Codec != "" {
		writeRow(&sb, l10n.T("Codec"), s.Video.Codec)
		writeRow(&sb, l10n.T("Frame Size"), fmt.Sprintf("%dx%d", s.Video.Width, s.Video.Height))
		writeRow(&sb, l10n.T("Container Samples"), fmt.Sprintf("%d", s.Video.ContainerSamples))
		writeRow(&sb, l10n.T("Fragmented"), yesNo(s.Video.Fragmented))
	}
	sb.WriteString("\n")

	// Probe
	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Frames"))
	writeTableHeader(&sb)
	writeRow(&sb, l10n.T("Frame Rate"), fmt.Sprintf("%.3f fps", s.Probe.FrameRate))
	writeRow(&sb, l10n.T("Last Valid Frame"), fmt.Sprintf("%d", s.Probe.LastValidFrame))
	writeRow(&sb, l10n.T("Frame Count"), fmt.Sprintf("%d", s.Probe.FrameCount))
	writeRow(&sb, l10n.T("Duration"), fmt.Sprintf("%.3f s", s.Probe.DurationSec()))
	writeRow(&sb, l10n.T("Probe Time"), fmt.Sprintf("%d ms", s.Probe.ElapsedMs))
	if s.Video.ContainerSamples > 0 && s.Video.ContainerSamples != s.Probe.FrameCount {
		writeRow(&sb, l10n.T("Undecodable Samples"), fmt.Sprintf("%d", s.Video.ContainerSamples-s.Probe.FrameCount))
	}
	sb.WriteString("\n")

	// Settings
	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Settings"))
	writeTableHeader(&sb)
	writeRow(&sb, l10n.T("Backend"), s.Settings.Backend)
	writeRow(&sb, l10n.T("Speed"), fmt.Sprintf("%g Hz", s.Settings.SpeedHz))
	writeRow(&sb, l10n.T("Skip Frames"), yesNo(s.Settings.SkipFrames))
	writeRow(&sb, l10n.T("Jump Size"), fmt.Sprintf("%d", s.Settings.JumpSize))
	writeRow(&sb, l10n.T("Frame Bound"), fmt.Sprintf("%d", s.Settings.MaxFrameBound))
	writeRow(&sb, l10n.T("Extra Iterations"), fmt.Sprintf("%d", s.Settings.ExtraIterations))

	return sb.String()
}

func writeTableHeader(sb *strings.Builder) {
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Item"), l10n.T("Value"))
	sb.WriteString("|---|---|\n")
}

func writeRow(sb *strings.Builder, item, value string) {
	fmt.Fprintf(sb, "| %s | %s |\n", item, value)
}

func yesNo(b bool) string {
	if b {
		return l10n.T("Yes")
	}
	return l10n.T("No")
}

var _ Formatter = (*MarkdownFormatter)(nil)
