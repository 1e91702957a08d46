// Package manager drives the analyze and download workflows against the
// backend and keeps the view state renderers draw from.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidgrab/internal/backend"
	"vidgrab/internal/core"
	"vidgrab/internal/history"
	"vidgrab/internal/utils"
)

var (
	ErrEmptyURL      = errors.New("no URL given")
	ErrNotAnalyzed   = errors.New("no analyzed link")
	ErrMissingFormat = errors.New("video download needs a format id")
	ErrDownloadBusy  = errors.New("a download is already in progress")
	ErrSuperseded    = errors.New("analyze superseded by a newer request")
	ErrUnknownKind   = errors.New("unknown download kind")
)

// User-facing notice texts
const (
	MsgPasteFirst      = "Paste a video link first."
	MsgAnalyzeFirst    = "Analyze the link first."
	MsgAnalyzeComplete = "Analyze complete."
	MsgAnalyzeFailed   = "Analyze failed. Try another link."
	MsgAnalyzeNetwork  = "Analyze failed (network error)."
	MsgBusy            = "A download is already running."
	MsgHistoryMissing  = "That download is no longer in history."
)

var successMessages = map[core.DownloadKind]string{
	core.VideoDownload: "Download ready.",
	core.AudioDownload: "MP3 ready.",
	core.AssetDownload: "Reel ready.",
}

var failureMessages = map[core.DownloadKind]string{
	core.VideoDownload: "Video download failed.",
	core.AudioDownload: "MP3 download failed.",
	core.AssetDownload: "Reel download failed.",
}

// Backend is the subset of the backend client the controller drives
type Backend interface {
	ProgressSource
	Analyze(ctx context.Context, mediaURL string) (*core.AnalysisResult, error)
	AnalyzeInstagram(ctx context.Context, mediaURL string) (*core.AnalysisResult, error)
	DownloadVideo(ctx context.Context, mediaURL, formatID string) (string, error)
	DownloadAudio(ctx context.Context, mediaURL string) (string, error)
	DownloadInstagram(ctx context.Context, mediaURL string) ([]string, error)
}

// Fetcher saves a backend file locally and returns the local path
type Fetcher interface {
	Fetch(ctx context.Context, serverPath string) (string, error)
}

// HistoryLog persists completed downloads
type HistoryLog interface {
	Load() ([]core.HistoryEntry, error)
	Save(entry core.HistoryEntry) error
	Find(id string) (core.HistoryEntry, error)
	Clear() error
}

type Options struct {
	PollInterval time.Duration
	// Now is the clock used for history timestamps and notice expiry
	Now func() time.Time
}

// DownloadResult describes a finished download
type DownloadResult struct {
	JobID      string            `json:"job_id"`
	Kind       core.DownloadKind `json:"kind"`
	Files      []string          `json:"files"`
	LocalPaths []string          `json:"local_paths"`
	Entry      core.HistoryEntry `json:"entry"`
}

type job struct {
	id       string
	kind     core.DownloadKind
	formatID string
	url      string
	title    string
}

type Controller struct {
	backend Backend
	fetcher Fetcher
	history HistoryLog
	poller  *Poller
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mutex        sync.RWMutex
	analyzeSeq   uint64
	analyzeState AnalyzeState
	input        string
	platform     core.Platform
	current      *Analysis
	showResults  bool
	download     DownloadView
	notice       *Notice
}

func NewController(b Backend, f Fetcher, h HistoryLog, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		backend:      b,
		fetcher:      f,
		history:      h,
		now:          now,
		ctx:          ctx,
		cancel:       cancel,
		analyzeState: AnalyzeIdle,
		platform:     core.PlatformAuto,
		download:     DownloadView{Status: core.StatusIdle},
	}
	c.poller = NewPoller(b, opts.PollInterval, c.onProgress)
	return c
}

// Analyze classifies mediaURL, asks the backend to describe it and makes it
// the reference later downloads act on. When another Analyze was issued
// after this one, the result is dropped and ErrSuperseded returned.
func (c *Controller) Analyze(ctx context.Context, mediaURL string) (*Analysis, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		c.notify(NoticeError, MsgPasteFirst)
		return nil, ErrEmptyURL
	}

	platform := core.Classify(mediaURL)

	c.mutex.Lock()
	c.analyzeSeq++
	seq := c.analyzeSeq
	c.analyzeState = AnalyzeRunning
	c.input = mediaURL
	c.platform = platform
	c.showResults = false
	c.mutex.Unlock()

	utils.LogInfo("ANALYZE", "Analyzing %s (platform %s)", mediaURL, platform)

	var result *core.AnalysisResult
	var err error
	if platform.SingleAsset() {
		result, err = c.backend.AnalyzeInstagram(ctx, mediaURL)
	} else {
		result, err = c.backend.Analyze(ctx, mediaURL)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if seq != c.analyzeSeq {
		utils.LogDebug("ANALYZE", "Discarding stale result for %s", mediaURL)
		return nil, ErrSuperseded
	}

	if err != nil {
		c.analyzeState = AnalyzeFailed
		msg := MsgAnalyzeFailed
		if backend.IsTransport(err) {
			msg = MsgAnalyzeNetwork
		}
		c.notifyLocked(NoticeError, msg)
		utils.LogError("ANALYZE", "Analyze failed for %s: %v", mediaURL, err)
		return nil, fmt.Errorf("analyze %s: %w", mediaURL, err)
	}

	result.Platform = platform
	analysis := &Analysis{URL: mediaURL, Result: result}
	if result.Kind == core.AnalysisFormats {
		analysis.Quality = core.BuildQualityList(result.Formats)
	}

	c.current = analysis
	c.showResults = true
	c.analyzeState = AnalyzeReady
	c.notifyLocked(NoticeSuccess, MsgAnalyzeComplete)

	utils.LogSuccess("ANALYZE", "%s: %q with %d quality rows", platform, result.Title, len(analysis.Quality.Rows))
	return analysis, nil
}

// Download runs a download of the current analyzed reference to completion
func (c *Controller) Download(ctx context.Context, kind core.DownloadKind, formatID string) (*DownloadResult, error) {
	j, err := c.begin(kind, formatID)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, j)
}

// StartDownload validates like Download, then runs the download in the
// background and returns its job id.
func (c *Controller) StartDownload(kind core.DownloadKind, formatID string) (string, error) {
	j, err := c.begin(kind, formatID)
	if err != nil {
		return "", err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(c.ctx, j)
	}()
	return j.id, nil
}

// begin checks preconditions and claims the single download slot
func (c *Controller) begin(kind core.DownloadKind, formatID string) (*job, error) {
	if _, ok := core.ParseDownloadKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.download.Status.IsActive() {
		c.notifyLocked(NoticeError, MsgBusy)
		return nil, ErrDownloadBusy
	}
	if c.current == nil {
		c.notifyLocked(NoticeError, MsgAnalyzeFirst)
		return nil, ErrNotAnalyzed
	}
	formatID = strings.TrimSpace(formatID)
	if kind == core.VideoDownload && formatID == "" {
		return nil, ErrMissingFormat
	}

	title := c.current.Result.Title
	if kind == core.AssetDownload {
		title = core.SingleAssetTitle
	}

	j := &job{
		id:       uuid.New().String(),
		kind:     kind,
		formatID: formatID,
		url:      c.current.URL,
		title:    title,
	}

	c.download = DownloadView{
		ID:     j.id,
		Kind:   kind,
		Status: core.StatusRequesting,
		Label:  startLabel(kind),
	}
	return j, nil
}

func startLabel(kind core.DownloadKind) string {
	switch kind {
	case core.AudioDownload:
		return "Starting Audio…"
	case core.AssetDownload:
		return "Downloading Reel…"
	default:
		return "Starting Video…"
	}
}

func (c *Controller) run(ctx context.Context, j *job) (*DownloadResult, error) {
	utils.LogInfo("DOWNLOAD", "Job %s: %s download of %s", j.id, j.kind, j.url)

	if j.kind.Polled() {
		c.poller.Start(j.kind.TypeTag())
	}
	files, err := c.request(ctx, j)
	c.poller.Stop()
	if err == nil && len(files) == 0 {
		err = errors.New("backend returned no files")
	}
	if err != nil {
		return nil, c.fail(j, err)
	}

	c.setStatus(j, core.StatusSaving)

	locals := make([]string, 0, len(files))
	for _, file := range files {
		local, err := c.fetcher.Fetch(ctx, file)
		if err != nil {
			return nil, c.fail(j, err)
		}
		locals = append(locals, local)
	}

	entry := core.HistoryEntry{
		ID:        j.id,
		Title:     j.title,
		URL:       j.url,
		Type:      j.kind.TypeTag(),
		Time:      c.now().Format(core.HistoryTimeLayout),
		File:      files[0],
		LocalPath: locals[0],
	}
	if err := c.history.Save(entry); err != nil {
		// The file is already on disk; a history write failure is not a download failure
		utils.LogError("DOWNLOAD", "Job %s: failed to record history: %v", j.id, err)
	}

	c.mutex.Lock()
	if c.download.ID == j.id {
		c.download.Status = core.StatusCompleted
		c.download.LocalPaths = locals
	}
	c.notifyLocked(NoticeSuccess, successMessages[j.kind])
	c.mutex.Unlock()

	utils.LogSuccess("DOWNLOAD", "Job %s saved to %s", j.id, strings.Join(locals, ", "))
	return &DownloadResult{
		JobID:      j.id,
		Kind:       j.kind,
		Files:      files,
		LocalPaths: locals,
		Entry:      entry,
	}, nil
}

func (c *Controller) request(ctx context.Context, j *job) ([]string, error) {
	switch j.kind {
	case core.VideoDownload:
		file, err := c.backend.DownloadVideo(ctx, j.url, j.formatID)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case core.AudioDownload:
		file, err := c.backend.DownloadAudio(ctx, j.url)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return c.backend.DownloadInstagram(ctx, j.url)
	}
}

func (c *Controller) fail(j *job, err error) error {
	utils.LogError("DOWNLOAD", "Job %s failed: %v", j.id, err)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.download.ID == j.id {
		c.download.Status = core.StatusFailed
		c.download.Error = err.Error()
	}
	c.notifyLocked(NoticeError, failureMessages[j.kind])
	return fmt.Errorf("%s download: %w", j.kind, err)
}

func (c *Controller) setStatus(j *job, status core.DownloadStatus) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.download.ID == j.id {
		c.download.Status = status
	}
}

func (c *Controller) onProgress(snap core.ProgressSnapshot) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.download.Status != core.StatusRequesting {
		return
	}
	c.download.Progress = snap
	c.download.HasProgress = true
	c.download.Percent = snap.Value()
}

// Redownload saves the file of a history entry again. No new entry is recorded.
func (c *Controller) Redownload(ctx context.Context, id string) (string, error) {
	entry, err := c.history.Find(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			c.notify(NoticeError, MsgHistoryMissing)
		}
		return "", err
	}

	local, err := c.fetcher.Fetch(ctx, entry.File)
	if err != nil {
		utils.LogError("HISTORY", "Re-download of %s failed: %v", entry.File, err)
		c.notify(NoticeError, failureMessages[kindForTag(entry.Type)])
		return "", err
	}

	c.notify(NoticeSuccess, successMessages[kindForTag(entry.Type)])
	utils.LogSuccess("HISTORY", "Re-downloaded %q to %s", entry.Title, local)
	return local, nil
}

func kindForTag(tag string) core.DownloadKind {
	for _, kind := range []core.DownloadKind{core.VideoDownload, core.AudioDownload, core.AssetDownload} {
		if kind.TypeTag() == tag {
			return kind
		}
	}
	return core.VideoDownload
}

// History returns the stored entries, newest first
func (c *Controller) History() ([]core.HistoryEntry, error) {
	return c.history.Load()
}

// ClearHistory removes every history entry
func (c *Controller) ClearHistory() error {
	return c.history.Clear()
}

// Snapshot returns the current view state. Expired notices are left out.
func (c *Controller) Snapshot() ViewState {
	entries, err := c.history.Load()
	if err != nil {
		utils.LogWarning("HISTORY", "Failed to load history: %v", err)
		entries = []core.HistoryEntry{}
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	state := ViewState{
		URL:          c.input,
		Platform:     c.platform,
		AnalyzeState: c.analyzeState,
		Download:     c.download,
		History:      entries,
	}
	if c.showResults {
		state.Analysis = c.current
	}
	if c.notice != nil && c.now().Before(c.notice.ExpiresAt) {
		n := *c.notice
		state.Notice = &n
	}
	if len(entries) == 0 {
		state.HistoryMessage = history.EmptyMessage
	}
	return state
}

// Shutdown cancels background downloads and polling and waits for them to exit
func (c *Controller) Shutdown() {
	c.cancel()
	c.poller.Stop()
	c.wg.Wait()
}

func (c *Controller) notify(level NoticeLevel, message string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.notifyLocked(level, message)
}

func (c *Controller) notifyLocked(level NoticeLevel, message string) {
	ttl := SuccessNoticeTTL
	if level == NoticeError {
		ttl = ErrorNoticeTTL
	}
	c.notice = &Notice{Level: level, Message: message, ExpiresAt: c.now().Add(ttl)}
}
