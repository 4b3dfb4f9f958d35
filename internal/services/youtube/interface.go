package youtube

import (
	"context"
	"errors"
)

// ErrNoEstimate is returned when no rendition at or below the height cap
// reports a content length.
var ErrNoEstimate = errors.New("no size estimate available")

// SizeProber estimates download sizes before any media is fetched.
type SizeProber interface {
	// EstimateSize returns the expected size in bytes of the best rendition
	// with both audio and video at or below maxHeight.
	EstimateSize(ctx context.Context, url string, maxHeight int) (int64, error)
}

// VideoInfo contains YouTube video metadata
type VideoInfo struct {
	ID            string
	Title         string
	Author        string
	Duration      string
	Quality       string
	EstimatedSize int64
}
