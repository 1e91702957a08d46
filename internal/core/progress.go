package core

import (
	"regexp"
	"strconv"
	"strings"
)

// ProgressSnapshot is one reading of the backend's progress endpoint
type ProgressSnapshot struct {
	Percent string `json:"percent"`
	Speed   string `json:"speed"`
	ETA     string `json:"eta"`
}

var (
	ansiPattern          = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	leadingNumberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

// Value parses Percent as a leading float, ignoring colour codes and the
// percent sign. Anything unparsable reads as 0.
func (p ProgressSnapshot) Value() float64 {
	s := ansiPattern.ReplaceAllString(p.Percent, "")
	s = strings.TrimSpace(strings.Replace(s, "%", "", 1))
	num := leadingNumberPattern.FindString(s)
	if num == "" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return v
}

// Complete reports whether the snapshot marks the end of the transfer
func (p ProgressSnapshot) Complete() bool {
	return p.Value() >= 100
}

// DisplayPercent is the percent string used for the bar width, "0%" when absent
func (p ProgressSnapshot) DisplayPercent() string {
	s := strings.TrimSpace(ansiPattern.ReplaceAllString(p.Percent, ""))
	if s == "" {
		return "0%"
	}
	return s
}

// Text renders "percent • speed • eta"
func (p ProgressSnapshot) Text() string {
	return p.DisplayPercent() + " • " + p.Speed + " • " + p.ETA
}
