package core

import (
	"fmt"
	"regexp"
)

type QualityTier string

// AllowedTiers is the fixed ascending order rows are emitted in.
var AllowedTiers = []QualityTier{"144p", "240p", "360p", "480p", "720p", "1080p"}

// CanonicalContainer is the only container offered in the quality list
const CanonicalContainer = "mp4"

// EmptyQualityMessage is the single placeholder row shown when no tier survives
const EmptyQualityMessage = "No standard 144p–1080p formats found for this video."

// UnknownSize is shown for formats without a reported file size
const UnknownSize = "Unknown size"

var resolutionPattern = regexp.MustCompile(`(\d{3,4}p)`)

// QualityRow is the canonical choice for one tier
type QualityRow struct {
	Tier      QualityTier `json:"tier"`
	FormatID  string      `json:"format_id"`
	Filesize  *int64      `json:"filesize,omitempty"`
	SizeLabel string      `json:"size_label"`
}

// QualityList is the rendered selection list; Empty lists carry only Message
type QualityList struct {
	Rows    []QualityRow `json:"rows"`
	Empty   bool         `json:"empty"`
	Message string       `json:"message,omitempty"`
}

func isAllowedTier(q QualityTier) bool {
	for _, t := range AllowedTiers {
		if t == q {
			return true
		}
	}
	return false
}

func sizeOf(f FormatDescriptor) int64 {
	if f.Filesize == nil {
		return 0
	}
	return *f.Filesize
}

// ResolutionTag extracts the first "NNNp"/"NNNNp" tag from a format label
func ResolutionTag(label string) (QualityTier, bool) {
	m := resolutionPattern.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	return QualityTier(m[1]), true
}

// BuildQualityList keeps one mp4 format per allowed tier, the one with the
// strictly largest file size (first seen wins ties), in ascending tier order.
func BuildQualityList(formats []FormatDescriptor) QualityList {
	best := make(map[QualityTier]FormatDescriptor)

	for _, f := range formats {
		if f.Ext != CanonicalContainer {
			continue
		}
		tier, ok := ResolutionTag(f.Label)
		if !ok || !isAllowedTier(tier) {
			continue
		}
		current, seen := best[tier]
		if !seen || sizeOf(f) > sizeOf(current) {
			best[tier] = f
		}
	}

	list := QualityList{Rows: []QualityRow{}}
	for _, tier := range AllowedTiers {
		f, ok := best[tier]
		if !ok {
			continue
		}
		list.Rows = append(list.Rows, QualityRow{
			Tier:      tier,
			FormatID:  f.FormatID,
			Filesize:  f.Filesize,
			SizeLabel: sizeLabel(f),
		})
	}

	if len(list.Rows) == 0 {
		list.Empty = true
		list.Message = EmptyQualityMessage
	}

	return list
}

// Best returns the highest tier row, used when no format is chosen explicitly
func (l QualityList) Best() (QualityRow, bool) {
	if len(l.Rows) == 0 {
		return QualityRow{}, false
	}
	return l.Rows[len(l.Rows)-1], true
}

// Find returns the row for a tier or format id
func (l QualityList) Find(key string) (QualityRow, bool) {
	for _, row := range l.Rows {
		if string(row.Tier) == key || row.FormatID == key {
			return row, true
		}
	}
	return QualityRow{}, false
}

// sizeLabel falls back to the backend's estimate, marked with "~", when the
// exact size is missing
func sizeLabel(f FormatDescriptor) string {
	if sizeOf(f) == 0 && f.FilesizeApprox != nil && *f.FilesizeApprox > 0 {
		return "~" + FormatSize(f.FilesizeApprox)
	}
	return FormatSize(f.Filesize)
}

// FormatSize renders bytes as megabytes with one decimal place
func FormatSize(bytes *int64) string {
	if bytes == nil || *bytes == 0 {
		return UnknownSize
	}
	return fmt.Sprintf("%.1f MB", float64(*bytes)/1024/1024)
}
