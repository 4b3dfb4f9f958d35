package models

import (
	"time"
)

// Platform identifies the site a video URL belongs to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// DisplayName returns the user-facing platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformTikTok:
		return "TikTok"
	case PlatformInstagram:
		return "Instagram"
	default:
		return "Unknown"
	}
}

func (p Platform) IsSupported() bool {
	return p == PlatformYouTube || p == PlatformTikTok || p == PlatformInstagram
}

// Sender carries what the transport needs to answer an inbound message.
type Sender struct {
	ChatID    int64
	MessageID int
	UserID    int64
	Username  string
}

// IncomingRequest is created per inbound text message and never mutated.
type IncomingRequest struct {
	ID         string
	Text       string
	Sender     Sender
	ReceivedAt time.Time
}

// DownloadResult is handed from the downloader to the orchestrator, which then
// owns FilePath (and WorkDir) until cleanup.
type DownloadResult struct {
	FilePath string
	Title    string
	WorkDir  string
}

// StatusHandle references the editable progress message of one request.
type StatusHandle struct {
	ChatID    int64
	MessageID int
}

type RequestState string

const (
	StateReceived    RequestState = "received"
	StateValidated   RequestState = "validated"
	StateClassified  RequestState = "classified"
	StateDownloading RequestState = "downloading"
	StateSizeChecked RequestState = "size_checked"
	StateDelivering  RequestState = "delivering"
	StateDone        RequestState = "done"
	StateErrored     RequestState = "errored"
)

func (s RequestState) IsTerminal() bool {
	return s == StateDone || s == StateErrored
}
