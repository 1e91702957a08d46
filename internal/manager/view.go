package manager

import (
	"time"

	"vidgrab/internal/core"
)

type AnalyzeState string

const (
	AnalyzeIdle    AnalyzeState = "idle"
	AnalyzeRunning AnalyzeState = "analyzing"
	AnalyzeReady   AnalyzeState = "ready"
	AnalyzeFailed  AnalyzeState = "failed"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// How long a notice stays visible
const (
	SuccessNoticeTTL = 2000 * time.Millisecond
	ErrorNoticeTTL   = 2600 * time.Millisecond
)

// Notice is a transient status message
type Notice struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Analysis is the outcome of a successful analyze: the reference downloads
// act on, the backend's description and the quality rows derived from it.
type Analysis struct {
	URL     string               `json:"url"`
	Result  *core.AnalysisResult `json:"result"`
	Quality core.QualityList     `json:"quality"`
}

// DownloadView describes the current (or last) download
type DownloadView struct {
	ID          string                `json:"id,omitempty"`
	Kind        core.DownloadKind     `json:"kind,omitempty"`
	Status      core.DownloadStatus   `json:"status"`
	Label       string                `json:"label,omitempty"`
	Progress    core.ProgressSnapshot `json:"progress"`
	HasProgress bool                  `json:"has_progress"`
	Percent     float64               `json:"percent"`
	LocalPaths  []string              `json:"local_paths,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Text is the progress line: the starting label until the first snapshot arrives
func (d DownloadView) Text() string {
	if !d.HasProgress {
		return d.Label
	}
	return d.Progress.Text()
}

// BarWidth is the progress bar fill in whole percent, clamped to 0..100
func (d DownloadView) BarWidth() int {
	switch {
	case d.Percent <= 0:
		return 0
	case d.Percent >= 100:
		return 100
	}
	return int(d.Percent)
}

// ViewState is everything a renderer needs to draw the controller
type ViewState struct {
	URL            string              `json:"url"`
	Platform       core.Platform       `json:"platform"`
	AnalyzeState   AnalyzeState        `json:"analyze_state"`
	Analysis       *Analysis           `json:"analysis,omitempty"`
	Download       DownloadView        `json:"download"`
	Notice         *Notice             `json:"notice,omitempty"`
	History        []core.HistoryEntry `json:"history"`
	HistoryMessage string              `json:"history_message,omitempty"`
}

// Busy reports whether an analyze or download is in progress
func (v ViewState) Busy() bool {
	return v.AnalyzeState == AnalyzeRunning || v.Download.Status.IsActive()
}
