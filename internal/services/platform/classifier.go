// Package platform maps video URLs to the site they come from.
package platform

import (
	"net/url"
	"strings"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

type hostRule struct {
	fragments []string
	platform  models.Platform
}

// Order matters: the first matching rule wins.
var hostRules = []hostRule{
	{fragments: []string{"youtube.com", "youtu.be"}, platform: models.PlatformYouTube},
	{fragments: []string{"tiktok.com"}, platform: models.PlatformTikTok},
	{fragments: []string{"instagram.com"}, platform: models.PlatformInstagram},
}

// Classify returns the platform for rawURL based on its host. Anything that
// cannot be parsed is PlatformUnknown.
func Classify(rawURL string) models.Platform {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return models.PlatformUnknown
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return models.PlatformUnknown
	}

	for _, rule := range hostRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(host, fragment) {
				return rule.platform
			}
		}
	}
	return models.PlatformUnknown
}
