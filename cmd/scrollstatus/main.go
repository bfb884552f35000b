// SPDX-License-Identifier: Unlicense OR MIT

// Command scrollstatus is a small terminal dashboard (Bubble Tea, Elm
// Architecture) that tails an opensmoothscroll activity log
// (internal/activitylog) and shows recent wheel events and lifecycle
// transitions. It is a diagnostic aid, not a tray or settings GUI.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/activitylog"
)

const pollInterval = 250 * time.Millisecond

const maxRows = 16

var (
	labelSt = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	dimSt   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	upSt    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	downSt  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

func newRowTable() table.Model {
	cols := []table.Column{
		{Title: "time", Width: 12},
		{Title: "axis", Width: 4},
		{Title: "delta", Width: 7},
		{Title: "amount", Width: 8},
		{Title: "event", Width: 24},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(false),
		table.WithHeight(maxRows),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#6b7280")).Bold(true)
	st.Selected = st.Selected.Foreground(lipgloss.NoColor{}).Background(lipgloss.NoColor{})
	t.SetStyles(st)
	return t
}

// tableRow renders a row's fields as a bubbles/table row; the event
// column carries a state transition, a completion summary, or the
// resolved foreground exe, matching what the hand-formatted View used
// to print per line.
func tableRow(r row) table.Row {
	ts := r.when.Format("15:04:05.000")
	switch {
	case r.isState:
		return table.Row{ts, "", "", "", "state -> " + r.state}
	case r.note != "":
		return table.Row{ts, r.axis, "", "", r.note}
	default:
		return table.Row{ts, r.axis, fmt.Sprintf("%+d", r.delta), fmt.Sprintf("%+.1f", r.amount), r.exe}
	}
}

type row struct {
	when    time.Time
	axis    string
	delta   int32
	amount  float64
	exe     string
	note    string // completion summary
	isState bool
	state   string
}

func axisLabel(axis uint8) string {
	if axis == 1 {
		return "H"
	}
	return "V"
}

type tickMsg time.Time

type recordsMsg []row

type model struct {
	path     string
	rows     []row
	tbl      table.Model
	lastErr  error
	read     int
	engineOK bool
}

func initialModel(path string) model {
	return model{path: path, tbl: newRowTable()}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(readNew(m.path, m.read), poll())
}

// readNew reopens the log and skips the first `from` records already
// seen; a full from-scratch re-read is simplest and the log volume
// this tool targets is small enough that it costs nothing noticeable.
func readNew(path string, from int) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return recordsMsg(nil)
		}
		r, err := activitylog.Open(path)
		if err != nil {
			return recordsMsg(nil)
		}
		defer r.Close()

		var out []row
		i := 0
		for {
			rec, err := r.Next()
			if err != nil {
				break
			}
			i++
			if i <= from {
				continue
			}
			switch rec.Type {
			case activitylog.RecordTypeEvent:
				ev := rec.Event
				out = append(out, row{
					when:   time.Unix(0, ev.UnixNanos),
					axis:   axisLabel(ev.Axis),
					delta:  ev.RawDelta,
					amount: ev.Amount,
					exe:    ev.Exe,
				})
			case activitylog.RecordTypeState:
				out = append(out, row{
					when:    time.Unix(0, rec.State.UnixNanos),
					isState: true,
					state:   rec.State.State,
				})
			case activitylog.RecordTypeCompletion:
				c := rec.Completion
				out = append(out, row{
					when: time.Unix(0, c.UnixNanos),
					axis: axisLabel(c.Axis),
					note: fmt.Sprintf("done %+dpx in %dms", c.Total,
						time.Duration(c.DurationNanos).Milliseconds()),
				})
			}
		}
		return recordsMsg(out)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(readNew(m.path, m.read), poll())
	case recordsMsg:
		for _, r := range msg {
			m.rows = append(m.rows, r)
			m.read++
			if r.isState {
				m.engineOK = r.state == "Running"
			}
		}
		if len(m.rows) > maxRows {
			m.rows = m.rows[len(m.rows)-maxRows:]
		}
		trows := make([]table.Row, len(m.rows))
		for i, r := range m.rows {
			trows[i] = tableRow(r)
		}
		m.tbl.SetRows(trows)
		m.tbl.GotoBottom()
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := downSt.Render("stopped")
	if m.engineOK {
		status = upSt.Render("running")
	}
	b := labelSt.Render("opensmoothscroll activity") + "  " + status + "\n"
	b += dimSt.Render(m.path) + "\n\n"
	if len(m.rows) == 0 {
		b += dimSt.Render("(no activity yet)") + "\n"
	} else {
		b += m.tbl.View() + "\n"
	}
	b += "\n" + dimSt.Render("q to quit")
	return b
}

func main() {
	logPath := flag.String("activity-log", "", "path to the activity log written by opensmoothscroll -activity-log")
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "scrollstatus: -activity-log is required (run opensmoothscroll with -activity-log=<path> first)")
		os.Exit(2)
	}

	prog := tea.NewProgram(initialModel(*logPath), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "scrollstatus:", err)
		os.Exit(1)
	}
}
