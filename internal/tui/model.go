// Package tui is a full-screen browser over an open device file: the cursor
// moves with the arrow keys and every move seeks and reads the device.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibdev/internal/device"
	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/format"
	"github.com/agbru/fibdev/internal/metrics"
	"github.com/agbru/fibdev/internal/session"
	"github.com/agbru/fibdev/internal/sysmon"
)

const (
	historySize  = 48
	tickInterval = time.Second
)

// readingMsg carries the result of a seek and read.
type readingMsg struct {
	reading session.Reading
	err     error
}

// memMsg carries a process heap sample and a host usage sample.
type memMsg struct {
	heap metrics.MemorySnapshot
	host sysmon.Stats
}

// tickMsg triggers the next heap sample.
type tickMsg time.Time

// Model is the bubbletea model of the browser.
type Model struct {
	file   *device.File
	keymap KeyMap
	help   help.Model
	mem    *metrics.MemoryCollector

	reading  session.Reading
	hasValue bool
	err      error
	history  *History
	heap     metrics.MemorySnapshot
	host     sysmon.Stats

	width  int
	height int
}

// NewModel creates a browser over f, which must stay open while the program
// runs.
func NewModel(f *device.File) Model {
	return Model{
		file:    f,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		mem:     metrics.NewMemoryCollector(),
		history: NewHistory(historySize),
	}
}

// Init reads the current cursor and starts heap sampling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(seekCmd(m.file, 0, io.SeekCurrent), sampleMemCmd(m.mem), tickCmd())
}

// Update handles key presses, readings and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case readingMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.reading, m.hasValue = msg.reading, true
		m.history.Push(float64(msg.reading.Elapsed.Nanoseconds()))
		return m, nil

	case memMsg:
		m.heap, m.host = msg.heap, msg.host
		return m, nil

	case tickMsg:
		return m, tea.Batch(sampleMemCmd(m.mem), tickCmd())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Up):
		return m, seekCmd(m.file, 1, io.SeekCurrent)
	case key.Matches(msg, m.keymap.Down):
		return m, seekCmd(m.file, -1, io.SeekCurrent)
	case key.Matches(msg, m.keymap.PageUp):
		return m, seekCmd(m.file, PageStep, io.SeekCurrent)
	case key.Matches(msg, m.keymap.PageDown):
		return m, seekCmd(m.file, -PageStep, io.SeekCurrent)
	case key.Matches(msg, m.keymap.Home):
		return m, seekCmd(m.file, 0, io.SeekStart)
	case key.Matches(msg, m.keymap.End):
		return m, seekCmd(m.file, 0, io.SeekEnd)
	}
	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("fibdev"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  indices 0..%d", m.file.MaxIndex())))
	b.WriteString("\n\n")

	if !m.hasValue {
		b.WriteString(dimStyle.Render("reading..."))
	} else {
		r := m.reading
		b.WriteString(indexStyle.Render(fmt.Sprintf("F(%d)", r.Index)))
		b.WriteString(" = ")
		b.WriteString(digitsStyle.Render(r.Digits))
		b.WriteString("\n\n")
		b.WriteString(field("digits", fmt.Sprintf("%d", len(r.Digits))))
		b.WriteString(field("compute", format.FormatExecutionDuration(r.Elapsed)))
		b.WriteString(field("history", sparklineStyle.Render(RenderSparkline(Normalize(m.history.Values())))))
		if r.Index > fibonacci.MaxSafeIndex {
			b.WriteString(warnStyle.Render(fmt.Sprintf("value wraps modulo 2^128 past F(%d)", fibonacci.MaxSafeIndex)))
			b.WriteString("\n")
		}
	}
	b.WriteString(field("heap", fmt.Sprintf("%.1f MiB", float64(m.heap.HeapAlloc)/(1<<20))))
	b.WriteString(field("host", m.host.String()))
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	body := panelStyle.Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keymap))
}

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + " " + valueStyle.Render(value) + "\n"
}

// seekCmd moves the cursor and reads the new position.
func seekCmd(f *device.File, offset int64, whence int) tea.Cmd {
	return func() tea.Msg {
		if _, err := f.Seek(offset, whence); err != nil {
			return readingMsg{err: err}
		}
		r, err := f.ReadValue()
		return readingMsg{reading: r, err: err}
	}
}

func sampleMemCmd(mc *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		return memMsg{heap: mc.Snapshot(), host: sysmon.Sample(context.Background())}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Run opens node and browses it until the user quits or ctx is canceled.
// It returns a process exit code; a busy device yields ExitErrorBusy.
func Run(ctx context.Context, node *device.Node, in io.Reader, out io.Writer) int {
	initTUIStyles()

	f, err := node.Open()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return apperrors.ExitCode(err)
	}
	defer f.Close()

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out), tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if _, err := tea.NewProgram(NewModel(f), opts...).Run(); err != nil {
		if apperrors.IsContextError(err) || ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
