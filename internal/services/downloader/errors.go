package downloader

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind classifies extraction failures so callers never need to inspect
// error text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindUnsupported
	KindUnavailable
	KindTimeout
	KindTooLarge
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnsupported:
		return "unsupported"
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	case KindTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// DownloadError is the only error type returned by Downloader.Fetch.
type DownloadError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DownloadError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "download failed"
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

func NewDownloadError(kind ErrorKind, message string, err error) *DownloadError {
	return &DownloadError{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or KindUnknown if it is not a DownloadError.
func KindOf(err error) ErrorKind {
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		return dlErr.Kind
	}
	return KindUnknown
}

var stderrMarkers = []struct {
	kind      ErrorKind
	fragments []string
}{
	{KindUnsupported, []string{"unsupported url", "no suitable extractor", "is not a valid url"}},
	{KindUnavailable, []string{
		"private video", "video unavailable", "this video is private", "has been removed",
		"not available", "login required", "sign in to confirm", "requested content is not available",
		"account has been terminated", "geo restrict",
	}},
	{KindTimeout, []string{"timed out", "timeout"}},
	{KindNetwork, []string{
		"unable to download webpage", "connection refused", "connection reset", "name or service not known",
		"temporary failure in name resolution", "network is unreachable", "http error 5", "tls",
	}},
}

// classifyFailure derives a kind from the extractor's context state and
// diagnostic output.
func classifyFailure(ctx context.Context, diagnostics string) ErrorKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}

	lower := strings.ToLower(diagnostics)
	for _, marker := range stderrMarkers {
		for _, fragment := range marker.fragments {
			if strings.Contains(lower, fragment) {
				return marker.kind
			}
		}
	}
	return KindUnknown
}

// lastErrorLine picks the most relevant line of yt-dlp stderr for users.
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	if len(lines) > 0 {
		return strings.TrimSpace(lines[len(lines)-1])
	}
	return ""
}
