// Package tui is the terminal control panel: key-bound transport intents,
// editable frame and speed fields, a file prompt, a timeline marker and a
// status line.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/framestep/pkg/ports"
	"github.com/user/framestep/pkg/transport"
)

// Transport is the set of intents and queries the panel uses.
// *transport.Controller satisfies it.
type Transport interface {
	Load(ctx context.Context, path string) error
	PlayForward() error
	PlayReverse() error
	Stop() error
	Step(delta int) error
	Jump(direction int) error
	SeekStart() error
	SeekEnd() error
	SetFrame(frame int) error
	SetSpeed(hz float64) error
	SetSkipFrames(enabled bool) error

	CurrentDisplayedFrame() int
	CurrentRequestedSpeed() float64
	SkipFramesEnabled() bool
	LastValidFrame() int
	FrameRate() float64
	FrameTime(frame int) float64
	Path() string
	Playing() bool
}

// Preview returns the rendered video preview, e.g. a termsink.Sink.
type Preview interface {
	View() string
}

// Options configures a Model.
type Options struct {
	// Path is loaded when the program starts.
	Path string

	// Preview is drawn above the controls when set.
	Preview Preview

	// Notifier receives redraw acknowledgements.
	Notifier *Notifier
}

type mode int

const (
	modeNormal mode = iota
	modeFrame
	modeSpeed
	modeOpen
)

func (m mode) prompt() string {
	switch m {
	case modeFrame:
		return "Frame:"
	case modeSpeed:
		return "Speed (Hz):"
	case modeOpen:
		return "Open:"
	default:
		return ""
	}
}

type loadedMsg struct {
	path string
	err  error
}

type stoppedMsg struct {
	err error
}

// Model is the bubbletea model of the control panel.
type Model struct {
	ctx       context.Context
	transport Transport
	opts      Options

	mode  mode
	input string

	position int
	marker   float64
	width    int

	status    string
	statusErr bool
	loading   bool
}

// New creates a Model. ctx bounds file loads.
func New(ctx context.Context, t Transport, opts Options) *Model {
	return &Model{
		ctx:       ctx,
		transport: t,
		opts:      opts,
		position:  t.CurrentDisplayedFrame(),
		width:     80,
	}
}

// Init loads the initial file, if any.
func (m *Model) Init() tea.Cmd {
	if m.opts.Path == "" {
		return nil
	}
	return m.load(m.opts.Path)
}

func (m *Model) load(path string) tea.Cmd {
	m.loading = true
	m.setInfo("Loading " + path + "...")
	ctx, t := m.ctx, m.transport
	return func() tea.Msg {
		return loadedMsg{path: path, err: t.Load(ctx, path)}
	}
}

// Update handles keys, playback notifications and load results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m, m.editKey(msg)
		}
		return m, m.normalKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case PositionMsg:
		m.position = int(msg)

	case MarkMsg:
		m.marker = float64(msg)

	case stoppedMsg:
		m.apply(msg.err)

	case redrawMsg:
		if m.opts.Notifier != nil {
			m.opts.Notifier.redrawn()
		}

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(loadError(msg.path, msg.err))
			return m, nil
		}
		m.position = m.transport.CurrentDisplayedFrame()
		m.marker = m.transport.FrameTime(m.position)
		if path := m.transport.Path(); path != "" {
			m.setInfo(fmt.Sprintf("%s: %d frames at %.3f fps",
				filepath.Base(path), m.transport.LastValidFrame()+1, m.transport.FrameRate()))
		}
	}
	return m, nil
}

func loadError(path string, err error) string {
	switch {
	case errors.Is(err, ports.ErrDecodeInit):
		return fmt.Sprintf("Cannot decode %s: %v", path, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Sprintf("%s not found", path)
	default:
		return fmt.Sprintf("Cannot load %s: %v", path, err)
	}
}

func (m *Model) normalKey(msg tea.KeyMsg) tea.Cmd {
	t := m.transport
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "l":
		m.apply(t.PlayForward())
	case "h":
		m.apply(t.PlayReverse())
	case "k", "s":
		// Stop waits for the tick in progress.
		return func() tea.Msg {
			return stoppedMsg{err: t.Stop()}
		}
	case "right", ".":
		m.apply(t.Step(1))
	case "left", ",":
		m.apply(t.Step(-1))
	case "]":
		m.apply(t.Jump(1))
	case "[":
		m.apply(t.Jump(-1))
	case "home", "g":
		m.apply(t.SeekStart())
	case "end", "G":
		m.apply(t.SeekEnd())
	case "x":
		m.apply(t.SetSkipFrames(!t.SkipFramesEnabled()))
	case "f":
		m.edit(modeFrame, strconv.Itoa(t.CurrentDisplayedFrame()))
	case "v":
		m.edit(modeSpeed, strconv.FormatFloat(t.CurrentRequestedSpeed(), 'g', -1, 64))
	case "o":
		m.edit(modeOpen, "")
	}
	return nil
}

func (m *Model) edit(md mode, initial string) {
	m.mode = md
	m.input = initial
}

func (m *Model) editKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode = modeNormal
		m.input = ""
	case tea.KeyEnter:
		md, value := m.mode, strings.TrimSpace(m.input)
		m.mode = modeNormal
		m.input = ""
		return m.commit(md, value)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return nil
}

func (m *Model) commit(md mode, value string) tea.Cmd {
	switch md {
	case modeFrame:
		frame, err := strconv.Atoi(value)
		if err != nil {
			m.setError(fmt.Sprintf("Invalid frame %q", value))
			return nil
		}
		m.apply(m.transport.SetFrame(frame))
	case modeSpeed:
		hz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			m.setError(fmt.Sprintf("Invalid speed %q", value))
			return nil
		}
		m.apply(m.transport.SetSpeed(hz))
	case modeOpen:
		if value == "" {
			return nil
		}
		return m.load(value)
	}
	return nil
}

// apply reports an intent's result and refreshes the cursor.
func (m *Model) apply(err error) {
	switch {
	case errors.Is(err, transport.ErrNoVideo):
		m.setError("No video loaded, press o to open a file")
	case err != nil:
		m.setError(err.Error())
	default:
		m.status = ""
		m.statusErr = false
	}
	m.position = m.transport.CurrentDisplayedFrame()
	if !m.transport.Playing() {
		m.marker = m.transport.FrameTime(m.position)
	}
}

func (m *Model) setInfo(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

const helpText = "l play  h reverse  k stop  ←/→ step  [/] jump  g/G start/end  " +
	"f frame  v speed  x skip  o open  q quit"

// View renders the panel.
func (m *Model) View() string {
	t := m.transport
	var rows []string

	title := "framestep"
	if path := t.Path(); path != "" {
		title += "  " + filepath.Base(path)
	}
	rows = append(rows, titleStyle.Render(title))

	if m.opts.Preview != nil {
		if v := m.opts.Preview.View(); v != "" {
			rows = append(rows, v)
		}
	}

	last := t.LastValidFrame()
	rows = append(rows, timeline(m.marker, t.FrameTime(last), m.trackWidth()))

	state := labelStyle.Render("stopped")
	if m.loading {
		state = labelStyle.Render("loading")
	} else if t.Playing() {
		state = playingStyle.Render("playing")
	}
	skip := "off"
	if t.SkipFramesEnabled() {
		skip = "on"
	}
	rows = append(rows, strings.Join([]string{
		state,
		labelStyle.Render("frame ") + valueStyle.Render(fmt.Sprintf("%d / %d", m.position, max(last, 0))),
		labelStyle.Render("speed ") + valueStyle.Render(fmt.Sprintf("%g Hz", t.CurrentRequestedSpeed())),
		labelStyle.Render("skip ") + valueStyle.Render(skip),
	}, "   "))

	if m.mode != modeNormal {
		rows = append(rows, promptStyle.Render(m.mode.prompt())+" "+m.input+"█")
	}

	if m.status != "" {
		if m.statusErr {
			rows = append(rows, errorStyle.Render(m.status))
		} else {
			rows = append(rows, infoStyle.Render(m.status))
		}
	}

	rows = append(rows, helpStyle.Render(helpText))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) trackWidth() int {
	// Room for the time label
	w := m.width - 20
	if w < 10 {
		w = 10
	}
	return w
}

var _ tea.Model = (*Model)(nil)
