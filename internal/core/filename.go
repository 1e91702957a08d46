package core

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var spaceRun = regexp.MustCompile(`\s+`)

// SanitizeFilename makes a server-provided file name safe to create locally.
// Letters, digits, spaces and "-_()" survive; everything else is dropped.
func SanitizeFilename(filename string) string {
	filename = norm.NFC.String(filename)

	ext := ""
	if lastDot := strings.LastIndex(filename, "."); lastDot != -1 {
		potentialExt := filename[lastDot:]
		// Real extensions are short and contain no spaces
		if !strings.Contains(potentialExt, " ") && len(potentialExt) <= 6 && len(potentialExt) > 1 {
			ext = strings.ToLower(potentialExt)
			filename = filename[:lastDot]
		}
	}

	var result strings.Builder
	// Emoji, symbols and variation selectors are neither letters nor digits
	for _, r := range filename {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' || r == '(' || r == ')' {
			result.WriteRune(r)
		}
	}
	filename = spaceRun.ReplaceAllString(result.String(), " ")
	filename = strings.TrimSpace(filename)

	filename = sanitizeWindowsReservedNames(filename)

	if len(filename) > 200 {
		filename = truncateRunes(filename, 200)
		filename = strings.TrimRight(filename, " ")
	}

	if filename == "" {
		filename = "download"
	}

	return filename + ext
}

// LocalFilename derives the local file name from a backend file path,
// which may use either separator.
func LocalFilename(serverPath string) string {
	parts := strings.FieldsFunc(serverPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	base := ""
	if len(parts) > 0 {
		base = parts[len(parts)-1]
	}
	return SanitizeFilename(base)
}

// truncateRunes cuts s to at most n bytes without splitting a rune
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func sanitizeWindowsReservedNames(filename string) string {
	windowsReservedNames := []string{
		"CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
	}

	for _, reserved := range windowsReservedNames {
		if strings.EqualFold(filename, reserved) {
			return filename + " file"
		}
	}

	return filename
}
