package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cohesort/cohesort/internal/orchestrator"
)

// Status is the monitor's run state.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// LogEntry is one line in the monitor's log panel.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
}

// stageState tracks one pipeline stage's completion counts, fed by the
// orchestrator's progress events.
type stageState struct {
	completed int
	total     int
}

// Monitor is the bubbletea model shown while a run is in flight: a
// progress bar for sketching and completion counts for optimized
// sub-batches, fed by draining the orchestrator's
// lock-free event queue on every animation tick.
type Monitor struct {
	width  int
	height int

	status    Status
	inputPath string
	algorithm string
	startTime time.Time
	endTime   time.Time
	runErr    error

	progress *orchestrator.Progress
	stages   map[string]*stageState

	sketchView *ProgressView
	spinner    *SpinnerProgress

	logs    []LogEntry
	maxLogs int

	tickCount int
}

// NewMonitor creates a monitor wired to the orchestrator's progress
// feed.
func NewMonitor(inputPath, algorithm string, progress *orchestrator.Progress) *Monitor {
	return &Monitor{
		width:      80,
		height:     24,
		status:     StatusIdle,
		inputPath:  inputPath,
		algorithm:  algorithm,
		progress:   progress,
		stages:     make(map[string]*stageState),
		sketchView: NewProgressView(70),
		spinner:    NewSpinnerProgress(),
		logs:       make([]LogEntry, 0, 100),
		maxLogs:    20,
	}
}

// AddLog appends a log line, trimming the oldest past maxLogs.
func (m *Monitor) AddLog(level, message string) {
	m.logs = append(m.logs, LogEntry{Time: time.Now(), Level: level, Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// Start marks the run as started.
func (m *Monitor) Start() {
	m.status = StatusRunning
	m.startTime = time.Now()
	m.spinner.Start()
	m.AddLog("INFO", "ordering started")
}

// TickMsg drives the animation and event drain.
type TickMsg time.Time

// DoneMsg reports run completion to the monitor; Err is nil on success.
type DoneMsg struct {
	Err error
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Monitor) Init() tea.Cmd {
	m.Start()
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sketchView.SetSize(min(msg.Width-4, 70))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case TickMsg:
		m.tickCount++
		m.spinner.Tick()
		m.drainEvents()
		if m.status == StatusRunning {
			return m, tickCmd()
		}
		return m, nil

	case DoneMsg:
		m.drainEvents()
		m.endTime = time.Now()
		m.runErr = msg.Err
		if msg.Err != nil {
			m.status = StatusFailed
			m.AddLog("ERROR", msg.Err.Error())
		} else {
			m.status = StatusCompleted
			m.AddLog("INFO", "ordering complete")
		}
		m.spinner.Stop()
		return m, nil
	}

	return m, nil
}

// drainEvents pulls every queued progress event into per-stage counts.
func (m *Monitor) drainEvents() {
	if m.progress == nil || m.progress.Events == nil {
		return
	}
	for {
		v, ok := m.progress.Events.Dequeue()
		if !ok {
			return
		}
		ev, ok := v.(orchestrator.Event)
		if !ok {
			continue
		}
		st := m.stages[ev.Stage]
		if st == nil {
			st = &stageState{}
			m.stages[ev.Stage] = st
		}
		st.completed++
		st.total = ev.Total
	}
}

// StageProgress returns (completed, total) for a named stage.
func (m *Monitor) StageProgress(stage string) (int, int) {
	st := m.stages[stage]
	if st == nil {
		return 0, 0
	}
	return st.completed, st.total
}

func (m *Monitor) elapsed() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	if !m.endTime.IsZero() {
		return m.endTime.Sub(m.startTime).Round(time.Millisecond)
	}
	return time.Since(m.startTime).Round(time.Second)
}

// View implements tea.Model.
func (m *Monitor) View() string {
	var b strings.Builder

	b.WriteString(GetBannerStyled())
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Input", m.inputPath))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Algorithm", m.algorithm))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Status", m.statusText()))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Elapsed", m.elapsed().String()))
	b.WriteString("\n\n")

	completed, total := m.StageProgress("sketch")
	m.sketchView.SetTitle("Sketching")
	m.sketchView.Update(int64(completed), int64(total))
	b.WriteString(m.sketchView.Render())
	b.WriteString("\n")

	if c, t := m.StageProgress("distance"); t > 0 {
		b.WriteString(RenderLabelValue("Distance rows", fmt.Sprintf("%d / %d", c, t)))
		b.WriteString("\n")
	}
	if c, t := m.StageProgress("optimize"); t > 0 {
		b.WriteString(RenderLabelValue("Batches", fmt.Sprintf("%d / %d", c, t)))
		b.WriteString("\n")
	}
	if m.status == StatusRunning {
		b.WriteString(m.spinner.Render())
		b.WriteString("\n")
	}

	if len(m.logs) > 0 {
		b.WriteString("\n")
		for _, l := range m.logs {
			line := l.Time.Format("15:04:05") + " " + l.Message
			if l.Level == "ERROR" {
				b.WriteString(ErrorStyle.Render(line))
			} else {
				b.WriteString(HelpStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(FooterStyle.Render(RenderHelp("q", "quit")))
	b.WriteString("\n")

	return b.String()
}

func (m *Monitor) statusText() string {
	switch m.status {
	case StatusCompleted:
		return SuccessStyle.Render(m.status.String())
	case StatusFailed:
		return ErrorStyle.Render(m.status.String())
	default:
		return m.status.String()
	}
}
