package platform

import (
	"testing"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected models.Platform
	}{
		{"YouTube watch", "https://www.youtube.com/watch?v=abc123", models.PlatformYouTube},
		{"YouTube mobile", "https://m.youtube.com/watch?v=abc123", models.PlatformYouTube},
		{"YouTube short link", "https://youtu.be/abc123", models.PlatformYouTube},
		{"YouTube upper case host", "HTTPS://WWW.YOUTUBE.COM/shorts/abc", models.PlatformYouTube},
		{"TikTok video", "https://www.tiktok.com/@u/video/1", models.PlatformTikTok},
		{"TikTok short link", "https://vm.tiktok.com/ZMabc/", models.PlatformTikTok},
		{"Instagram reel", "https://www.instagram.com/reel/Cxyz/", models.PlatformInstagram},
		{"Other host", "https://vimeo.com/123", models.PlatformUnknown},
		{"Platform only in path", "https://example.com/youtube.com/watch", models.PlatformUnknown},
		{"Platform only in query", "https://example.com/?u=tiktok.com", models.PlatformUnknown},
		{"Not a URL", "not a url", models.PlatformUnknown},
		{"Malformed", "http://[::1", models.PlatformUnknown},
		{"Empty", "", models.PlatformUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.url); got != tc.expected {
				t.Errorf("Classify(%q) = %s, want %s", tc.url, got, tc.expected)
			}
		})
	}
}
