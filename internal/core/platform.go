package core

import (
	"strings"

	"golang.org/x/text/cases"
)

type Platform string

const (
	PlatformAuto      Platform = "Auto"
	PlatformUnknown   Platform = "Unknown"
	PlatformInstagram Platform = "Instagram"
	PlatformYouTube   Platform = "YouTube"
	PlatformTikTok    Platform = "TikTok"
	PlatformFacebook  Platform = "Facebook"
	PlatformTwitter   Platform = "Twitter/X"
	PlatformReddit    Platform = "Reddit"
	PlatformVimeo     Platform = "Vimeo"
)

type signature struct {
	platform Platform
	hosts    []string
}

// Order matters: the first matching signature wins.
var signatures = []signature{
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformFacebook, []string{"facebook.com", "fb.watch"}},
	{PlatformTwitter, []string{"twitter.com", "x.com"}},
	{PlatformReddit, []string{"reddit.com"}},
	{PlatformVimeo, []string{"vimeo.com"}},
}

// Classify maps a URL to a platform label by case-insensitive substring match.
// Empty input yields PlatformAuto, anything unmatched PlatformUnknown.
func Classify(url string) Platform {
	url = strings.TrimSpace(url)
	if url == "" {
		return PlatformAuto
	}

	folded := cases.Fold().String(url)
	for _, sig := range signatures {
		for _, host := range sig.hosts {
			if strings.Contains(folded, host) {
				return sig.platform
			}
		}
	}

	return PlatformUnknown
}

// SingleAsset reports whether analysis goes through the single-asset path
func (p Platform) SingleAsset() bool {
	return p == PlatformInstagram
}

func (p Platform) String() string {
	return string(p)
}
