package youtube

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/kkdai/youtube/v2"
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|v/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

type Client struct {
	client *youtube.Client
}

// NewClient creates a new YouTube metadata client
func NewClient(timeout time.Duration) *Client {
	httpClient := &http.Client{
		Timeout: timeout,
	}

	return &Client{
		client: &youtube.Client{HTTPClient: httpClient},
	}
}

// ParseYouTubeURL extracts video ID from YouTube URL
func ParseYouTubeURL(url string) (string, error) {
	matches := videoIDPattern.FindStringSubmatch(url)
	if len(matches) > 1 {
		return matches[1], nil
	}
	return "", fmt.Errorf("could not extract video ID from YouTube URL: %s", url)
}

// GetVideoInfo retrieves video metadata and the size estimate for maxHeight.
func (c *Client) GetVideoInfo(ctx context.Context, url string, maxHeight int) (*VideoInfo, error) {
	videoID, err := ParseYouTubeURL(url)
	if err != nil {
		return nil, err
	}

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	info := &VideoInfo{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration.String(),
	}

	if format := bestProgressiveFormat(video.Formats, maxHeight); format != nil {
		info.Quality = format.QualityLabel
		info.EstimatedSize = format.ContentLength
	}

	return info, nil
}

func (c *Client) EstimateSize(ctx context.Context, url string, maxHeight int) (int64, error) {
	info, err := c.GetVideoInfo(ctx, url, maxHeight)
	if err != nil {
		return 0, err
	}
	if info.EstimatedSize <= 0 {
		return 0, ErrNoEstimate
	}
	return info.EstimatedSize, nil
}

// bestProgressiveFormat mirrors yt-dlp's "best[height<=N]": the tallest format
// carrying both audio and video, ties broken by bitrate.
func bestProgressiveFormat(formats youtube.FormatList, maxHeight int) *youtube.Format {
	var best *youtube.Format

	for i := range formats {
		format := &formats[i]

		// Only formats with both streams
		if format.AudioChannels == 0 || format.Height == 0 {
			continue
		}
		if format.Height > maxHeight || format.ContentLength <= 0 {
			continue
		}

		if best == nil ||
			format.Height > best.Height ||
			(format.Height == best.Height && format.Bitrate > best.Bitrate) {
			best = format
		}
	}

	return best
}
