package core

import (
	"encoding/json"
	"math"
)

// MediaReference is the user-supplied link submitted for analysis
type MediaReference struct {
	URL string `json:"url"`
}

// FormatDescriptor is one downloadable variant reported by the backend
type FormatDescriptor struct {
	FormatID       string `json:"format_id"`
	Ext            string `json:"ext"`
	Label          string `json:"label"`
	Filesize       *int64 `json:"filesize"`
	FilesizeApprox *int64 `json:"filesize_approx,omitempty"`
}

// UnmarshalJSON accepts any JSON number for the size fields. Estimates
// often arrive fractional; they are rounded to whole bytes.
func (f *FormatDescriptor) UnmarshalJSON(data []byte) error {
	type plain FormatDescriptor
	var raw struct {
		plain
		Filesize       *float64 `json:"filesize"`
		FilesizeApprox *float64 `json:"filesize_approx"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = FormatDescriptor(raw.plain)
	f.Filesize = wholeBytes(raw.Filesize)
	f.FilesizeApprox = wholeBytes(raw.FilesizeApprox)
	return nil
}

func wholeBytes(v *float64) *int64 {
	if v == nil {
		return nil
	}
	n := int64(math.Round(*v))
	return &n
}

type AnalysisKind string

const (
	// AnalysisFormats carries a list of formats to pick a quality tier from
	AnalysisFormats AnalysisKind = "formats"
	// AnalysisSingleAsset carries one implicit downloadable item
	AnalysisSingleAsset AnalysisKind = "single_asset"
)

// SingleAssetTitle is used where the single-asset path has no title of its own
const SingleAssetTitle = "Instagram Reel"

// DefaultTitle is used when the backend reports no title
const DefaultTitle = "Video"

// AnalysisResult is the union of the two analysis shapes, tagged by Kind
type AnalysisResult struct {
	Kind      AnalysisKind       `json:"kind"`
	Platform  Platform           `json:"platform"`
	Title     string             `json:"title"`
	Thumbnail string             `json:"thumbnail,omitempty"`
	Formats   []FormatDescriptor `json:"formats,omitempty"`
	Caption   string             `json:"caption,omitempty"`
}

type DownloadKind string

const (
	VideoDownload DownloadKind = "video"
	AudioDownload DownloadKind = "audio"
	AssetDownload DownloadKind = "asset"
)

// ParseDownloadKind maps a route or flag value to a DownloadKind
func ParseDownloadKind(s string) (DownloadKind, bool) {
	switch DownloadKind(s) {
	case VideoDownload, AudioDownload, AssetDownload:
		return DownloadKind(s), true
	}
	return "", false
}

// TypeTag is the label recorded in history entries
func (k DownloadKind) TypeTag() string {
	switch k {
	case AudioDownload:
		return "MP3"
	case AssetDownload:
		return "Reel"
	default:
		return "MP4"
	}
}

// Polled reports whether the backend exposes stepwise progress for this kind
func (k DownloadKind) Polled() bool {
	return k == VideoDownload || k == AudioDownload
}

type DownloadStatus string

const (
	StatusIdle       DownloadStatus = "idle"
	StatusRequesting DownloadStatus = "requesting"
	StatusSaving     DownloadStatus = "saving"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// IsActive returns true while a download holds the single in-flight slot
func (s DownloadStatus) IsActive() bool {
	return s == StatusRequesting || s == StatusSaving
}

// IsFinished returns true for terminal states
func (s DownloadStatus) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// HistoryEntry records one successful download
type HistoryEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	Time      string `json:"time"`
	File      string `json:"file"`
	LocalPath string `json:"local_path,omitempty"`
}

// HistoryTimeLayout formats HistoryEntry.Time in the local zone
const HistoryTimeLayout = "Jan 2, 2006, 3:04:05 PM"
