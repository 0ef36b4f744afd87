package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const historyLen = 200

// Progress is one generation's best-so-far, as reported by an optimizer.
type Progress struct {
	Generation int
	Gains      []float64
	Fitness    float64
}

type progressMsg Progress

type doneMsg struct{}

type model struct {
	title   string
	updates <-chan Progress
	cancel  func()

	last     Progress
	seen     bool
	history  []float64
	started  time.Time
	elapsed  time.Duration
	done     bool
	quitting bool

	width int
}

// NewMonitor builds a live view over updates. cancel is called when the user
// quits before the channel closes.
func NewMonitor(title string, updates <-chan Progress, cancel func()) tea.Model {
	return model{
		title:   title,
		updates: updates,
		cancel:  cancel,
		history: make([]float64, 0, historyLen),
		started: time.Now(),
		width:   80,
	}
}

func (m model) Init() tea.Cmd { return wait(m.updates) }

func wait(ch <-chan Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return progressMsg(p)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.done && m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case progressMsg:
		m.last = Progress(msg)
		m.seen = true
		m.elapsed = time.Since(m.started)
		m.history = append(m.history, msg.Fitness)
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
		return m, wait(m.updates)
	case doneMsg:
		m.done = true
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render(m.title))
	b.WriteString("\n\n")

	if !m.seen {
		b.WriteString(dim.Render("waiting for first generation..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		dim.Render("generation"), white.Render(fmt.Sprintf("%d", m.last.Generation)),
		dim.Render("elapsed"), white.Render(m.elapsed.Round(time.Millisecond).String())))

	labels := []string{"Kp", "Ki", "Kd"}
	for i, g := range m.last.Gains {
		name := fmt.Sprintf("x%d", i)
		if i < len(labels) {
			name = labels[i]
		}
		b.WriteString(fmt.Sprintf("%s %s  ", magenta.Render(name), white.Render(fmt.Sprintf("%.4f", g))))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n\n", dim.Render("best fitness"), green.Render(fmt.Sprintf("%.6g", m.last.Fitness))))

	if len(m.history) > 1 {
		w := m.width - 12
		if w < 20 {
			w = 20
		}
		b.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(10),
			asciigraph.Width(w),
			asciigraph.Caption("best fitness"),
		))
		b.WriteString("\n\n")
	}

	if m.done {
		b.WriteString(green.Render("done"))
	} else {
		b.WriteString(yellow.Render("running"))
	}
	b.WriteString(dim.Render("   q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run drives the monitor until updates closes or the user quits.
func Run(title string, updates <-chan Progress, cancel func()) error {
	p := tea.NewProgram(NewMonitor(title, updates, cancel))
	_, err := p.Run()
	return err
}
