package core

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"My Video.mp4", "My Video.mp4"},
		{"Clip: part 1/2?.MP4", "Clip part 12.mp4"},
		{"Party 🎉 time.mp3", "Party time.mp3"},
		{"Love ❤️ song ✂.mp3", "Love song.mp3"},
		{"🇯🇵 Tokyo walk.mp4", "Tokyo walk.mp4"},
		{"  spaced   out  .webm", "spaced out.webm"},
		{"CON.mp4", "CON file.mp4"},
		{"???.mp4", "download.mp4"},
		{"", "download"},
		{"Track (Live) - Band_Name.mp3", "Track (Live) - Band_Name.mp3"},
	}

	for _, tc := range testCases {
		if got := SanitizeFilename(tc.input); got != tc.expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("é", 150) + ".mp4"
	got := SanitizeFilename(long)
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("Expected extension to survive truncation, got %q", got)
	}
	if len(got) > 204 {
		t.Errorf("Expected at most 204 bytes, got %d", len(got))
	}
	if !strings.HasPrefix(got, "é") {
		t.Errorf("Expected valid rune prefix, got %q", got[:4])
	}
}

func TestLocalFilename(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"static/downloads/My Video.mp4", "My Video.mp4"},
		{`C:\srv\downloads\Song.mp3`, "Song.mp3"},
		{"static/downloads/0b1e-44.mp4", "0b1e-44.mp4"},
		{"", "download"},
	}

	for _, tc := range testCases {
		if got := LocalFilename(tc.path); got != tc.expected {
			t.Errorf("LocalFilename(%q) = %q, expected %q", tc.path, got, tc.expected)
		}
	}
}
