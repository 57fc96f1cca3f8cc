package ui

import (
	"fmt"
	"strings"
)

// ProgressBar renders a fixed-width bar for one pipeline phase.
type ProgressBar struct {
	width      int
	percentage float64
	label      string
}

// NewProgressBar creates a progress bar of the given total width.
func NewProgressBar(width int) *ProgressBar {
	return &ProgressBar{width: width}
}

// SetProgress sets the fill fraction, clamped to [0, 1].
func (p *ProgressBar) SetProgress(percentage float64) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 1 {
		percentage = 1
	}
	p.percentage = percentage
}

// SetLabel sets the phase label rendered above the bar.
func (p *ProgressBar) SetLabel(label string) {
	p.label = label
}

// SetWidth sets the total bar width.
func (p *ProgressBar) SetWidth(width int) {
	p.width = width
}

// Render renders the bar with its percentage.
func (p *ProgressBar) Render() string {
	var b strings.Builder

	// Reserve space for the percentage and end caps.
	barWidth := p.width - 10
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * p.percentage)
	empty := barWidth - filled

	b.WriteString(ProgressFullStyle.Render("█"))
	for i := 0; i < filled; i++ {
		b.WriteString(ProgressFullStyle.Render("█"))
	}
	for i := 0; i < empty; i++ {
		b.WriteString(ProgressEmptyStyle.Render("░"))
	}
	b.WriteString(ProgressEmptyStyle.Render("░"))

	b.WriteString(" ")
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%5.1f%%", p.percentage*100)))

	return b.String()
}

// RenderWithLabel renders the bar under its label.
func (p *ProgressBar) RenderWithLabel() string {
	if p.label == "" {
		return p.Render()
	}
	return LabelStyle.Render(p.label) + "\n" + p.Render()
}

// ProgressView is the styled panel wrapping one phase's bar and count.
type ProgressView struct {
	width     int
	progress  *ProgressBar
	title     string
	completed int64
	total     int64
}

// NewProgressView creates a progress panel.
func NewProgressView(width int) *ProgressView {
	return &ProgressView{
		width:    width,
		progress: NewProgressBar(width - 6), // panel padding
		title:    "Progress",
	}
}

// SetSize updates the view width.
func (v *ProgressView) SetSize(width int) {
	v.width = width
	v.progress.SetWidth(width - 6)
}

// Update sets the completed/total counts driving the bar.
func (v *ProgressView) Update(completed, total int64) {
	v.completed = completed
	v.total = total

	if total > 0 {
		v.progress.SetProgress(float64(completed) / float64(total))
	} else {
		v.progress.SetProgress(0)
	}
}

// SetTitle sets the panel title.
func (v *ProgressView) SetTitle(title string) {
	v.title = title
}

// Render renders the panel.
func (v *ProgressView) Render() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(v.title))
	b.WriteString("\n\n")

	b.WriteString(v.progress.Render())
	b.WriteString("\n\n")

	if v.total > 0 {
		b.WriteString(RenderLabelValue("Completed", fmt.Sprintf("%d / %d", v.completed, v.total)))
	}

	return PanelStyle.Width(v.width).Render(b.String())
}

// SpinnerProgress shows indeterminate activity for phases with no
// meaningful completion count (e.g. a single optimizer pass).
type SpinnerProgress struct {
	frame   int
	text    string
	running bool
}

// NewSpinnerProgress creates a spinner.
func NewSpinnerProgress() *SpinnerProgress {
	return &SpinnerProgress{
		text:    "Working...",
		running: true,
	}
}

// SetText sets the spinner text.
func (s *SpinnerProgress) SetText(text string) {
	s.text = text
}

// Start starts the spinner.
func (s *SpinnerProgress) Start() {
	s.running = true
}

// Stop stops the spinner.
func (s *SpinnerProgress) Stop() {
	s.running = false
}

// Tick advances the spinner animation.
func (s *SpinnerProgress) Tick() {
	if s.running {
		s.frame = (s.frame + 1) % len(SpinnerChars)
	}
}

// Render renders the spinner.
func (s *SpinnerProgress) Render() string {
	if !s.running {
		return SuccessStyle.Render("✓") + " " + s.text
	}
	return InfoStyle.Render(SpinnerChars[s.frame]) + " " + s.text
}
