package models

import "testing"

func TestPlatformDisplayName(t *testing.T) {
	testCases := []struct {
		platform Platform
		expected string
		support  bool
	}{
		{PlatformYouTube, "YouTube", true},
		{PlatformTikTok, "TikTok", true},
		{PlatformInstagram, "Instagram", true},
		{PlatformUnknown, "Unknown", false},
		{Platform("vimeo"), "Unknown", false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.platform), func(t *testing.T) {
			if got := tc.platform.DisplayName(); got != tc.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tc.expected)
			}
			if got := tc.platform.IsSupported(); got != tc.support {
				t.Errorf("IsSupported() = %v, want %v", got, tc.support)
			}
		})
	}
}

func TestRequestStateIsTerminal(t *testing.T) {
	terminal := map[RequestState]bool{
		StateReceived:    false,
		StateValidated:   false,
		StateClassified:  false,
		StateDownloading: false,
		StateSizeChecked: false,
		StateDelivering:  false,
		StateDone:        true,
		StateErrored:     true,
	}

	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}
}
