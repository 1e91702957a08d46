package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vidgrab/internal/core"
	"vidgrab/internal/manager"
)

const barWidth = 30

// Terminal renders controller state as styled lines for the CLI
type Terminal struct {
	out io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	bar     lipgloss.Style
}

func NewTerminal(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:     out,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("203")),
		bar:     r.NewStyle().Foreground(lipgloss.Color("99")),
	}
}

// Analysis prints the platform, title and quality rows of an analysis
func (t *Terminal) Analysis(a *manager.Analysis) {
	fmt.Fprintf(t.out, "%s %s\n", t.label.Render("Platform:"), a.Result.Platform)
	fmt.Fprintln(t.out, t.title.Render(a.Result.Title))

	if a.Result.Kind == core.AnalysisSingleAsset {
		if a.Result.Caption != "" {
			fmt.Fprintln(t.out, t.muted.Render(a.Result.Caption))
		}
		fmt.Fprintln(t.out, "Single asset: download with --asset")
		return
	}

	if a.Quality.Empty {
		fmt.Fprintln(t.out, t.muted.Render(a.Quality.Message))
		return
	}
	for _, row := range a.Quality.Rows {
		fmt.Fprintf(t.out, "  %-6s %s  %s\n", row.Tier, t.muted.Render(row.SizeLabel), t.muted.Render("format "+row.FormatID))
	}
}

// Progress redraws the progress line in place
func (t *Terminal) Progress(view manager.DownloadView) {
	filled := view.BarWidth() * barWidth / 100
	bar := t.bar.Render(strings.Repeat("█", filled)) + t.muted.Render(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(t.out, "\r%s %s", bar, view.Text())
}

// EndProgress finishes the in-place progress line
func (t *Terminal) EndProgress() {
	fmt.Fprintln(t.out)
}

// Saved lists the local files of a finished download
func (t *Terminal) Saved(paths []string) {
	for _, p := range paths {
		fmt.Fprintf(t.out, "%s %s\n", t.success.Render("Saved"), p)
	}
}

// History prints entries newest first, or the empty state
func (t *Terminal) History(entries []core.HistoryEntry, emptyMessage string) {
	if len(entries) == 0 {
		fmt.Fprintln(t.out, t.muted.Render(emptyMessage))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(t.out, "%s  %s\n", t.label.Render(e.Title), t.muted.Render(e.Type+" • "+e.Time))
		fmt.Fprintf(t.out, "  %s %s\n", t.muted.Render("id"), e.ID)
	}
}

// Notice prints a notice in its level's colour
func (t *Terminal) Notice(n *manager.Notice) {
	if n == nil {
		return
	}
	style := t.success
	if n.Level == manager.NoticeError {
		style = t.failure
	}
	fmt.Fprintln(t.out, style.Render(n.Message))
}

// Error prints a failure message
func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.out, t.failure.Render(msg))
}
