package core

import "testing"

func TestClassify(t *testing.T) {
	testCases := []struct {
		url      string
		expected Platform
	}{
		{"", PlatformAuto},
		{"   ", PlatformAuto},
		{"https://youtu.be/x", PlatformYouTube},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", PlatformYouTube},
		{"HTTPS://WWW.YOUTUBE.COM/watch?v=abc", PlatformYouTube},
		{"https://www.tiktok.com/@a/video/1", PlatformTikTok},
		{"https://www.instagram.com/reel/Cx1/", PlatformInstagram},
		{"https://fb.watch/abc/", PlatformFacebook},
		{"https://www.facebook.com/watch/?v=1", PlatformFacebook},
		{"https://twitter.com/u/status/1", PlatformTwitter},
		{"https://x.com/u/status/1", PlatformTwitter},
		{"https://www.reddit.com/r/videos/comments/1", PlatformReddit},
		{"https://vimeo.com/123", PlatformVimeo},
		{"https://example.com/video.mp4", PlatformUnknown},
	}

	for _, tc := range testCases {
		if got := Classify(tc.url); got != tc.expected {
			t.Errorf("Classify(%q) = %s, expected %s", tc.url, got, tc.expected)
		}
	}
}

func TestClassifyFirstSignatureWins(t *testing.T) {
	testCases := []struct {
		url      string
		expected Platform
	}{
		// Instagram precedes YouTube
		{"https://www.instagram.com/p/abc/?ref=youtube.com", PlatformInstagram},
		// YouTube precedes Twitter/X
		{"https://youtube.com/redirect?q=x.com", PlatformYouTube},
		// Twitter/X precedes Vimeo
		{"https://vimeo.com/share?to=twitter.com", PlatformTwitter},
	}

	for _, tc := range testCases {
		if got := Classify(tc.url); got != tc.expected {
			t.Errorf("Classify(%q) = %s, expected %s", tc.url, got, tc.expected)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	url := "https://www.tiktok.com/@a/video/1"
	first := Classify(url)
	for i := 0; i < 10; i++ {
		if got := Classify(url); got != first {
			t.Fatalf("Classify is not deterministic: %s then %s", first, got)
		}
	}
}

func TestPlatformSingleAsset(t *testing.T) {
	if !PlatformInstagram.SingleAsset() {
		t.Error("Expected Instagram to use the single-asset path")
	}
	for _, p := range []Platform{PlatformYouTube, PlatformTikTok, PlatformUnknown, PlatformAuto} {
		if p.SingleAsset() {
			t.Errorf("Expected %s to use the multi-format path", p)
		}
	}
}
