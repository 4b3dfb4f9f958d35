package downloader

import (
	"fmt"
	"time"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

// Options is built fresh for every Fetch call and never mutated afterwards.
type Options struct {
	WorkDir        string
	OutputTemplate string
	Format         string
	MaxHeight      int
	Timeout        time.Duration
}

// OutputTemplate returns the yt-dlp file naming template for platform.
// Short-video platforms are named by id since their titles are often empty
// or full of characters that make poor file names.
func OutputTemplate(platform models.Platform) string {
	switch platform {
	case models.PlatformTikTok:
		return "tiktok_%(id)s.%(ext)s"
	case models.PlatformInstagram:
		return "instagram_%(id)s.%(ext)s"
	default:
		return "%(title)s.%(ext)s"
	}
}

// FormatSelector caps the stream height. Formats that do not report a
// height (common on Instagram) remain eligible.
func FormatSelector(maxHeight int) string {
	return fmt.Sprintf("best[height<=?%d]", maxHeight)
}

func newOptions(workDir string, platform models.Platform, maxHeight int, timeout time.Duration) Options {
	return Options{
		WorkDir:        workDir,
		OutputTemplate: OutputTemplate(platform),
		Format:         FormatSelector(maxHeight),
		MaxHeight:      maxHeight,
		Timeout:        timeout,
	}
}
