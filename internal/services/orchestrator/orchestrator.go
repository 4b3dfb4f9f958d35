// Package orchestrator drives a single video request from the inbound link to
// the delivered file.
//
// Each request walks Received → Validated → Classified → Downloading →
// SizeChecked → Delivering → Done. Any step may end the request in Errored,
// and every path ends with a final message to the user and no file left in
// the scratch directory.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime/debug"
	"sync"
	"unicode/utf8"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/downloader"
	"github.com/denisAlshanov/vidgrab/internal/services/platform"
	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

var linkPattern = regexp.MustCompile(`^https?://`)

// Telegram rejects captions longer than 1024 characters.
const maxCaptionTitle = 900

// Fetcher is the download capability.
type Fetcher interface {
	Fetch(ctx context.Context, url string, platform models.Platform) (*models.DownloadResult, error)
}

type Orchestrator struct {
	messenger   telegram.Messenger
	fetcher     Fetcher
	maxFileSize int64
}

func NewOrchestrator(messenger telegram.Messenger, fetcher Fetcher, cfg *config.DownloadConfig) *Orchestrator {
	return &Orchestrator{
		messenger:   messenger,
		fetcher:     fetcher,
		maxFileSize: cfg.MaxFileSize,
	}
}

// run holds the per-request state. It is never shared between requests.
type run struct {
	*Orchestrator
	req    *models.IncomingRequest
	state  models.RequestState
	status *models.StatusHandle
	file   *ownedFile
}

// Handle processes req to completion and returns the terminal state.
func (o *Orchestrator) Handle(ctx context.Context, req *models.IncomingRequest) models.RequestState {
	r := &run{Orchestrator: o, req: req, state: models.StateReceived}
	r.execute(ctx)
	return r.state
}

func (r *run) execute(ctx context.Context) {
	// 1. Received → Validated
	if !linkPattern.MatchString(r.req.Text) {
		r.reply(ctx, utils.NewValidationError(r.req.Text))
		return
	}
	r.transition(ctx, models.StateValidated)

	// 2. Validated → Classified
	p := platform.Classify(r.req.Text)
	if !p.IsSupported() {
		r.reply(ctx, utils.NewUnsupportedPlatformError(r.req.Text))
		return
	}
	r.transition(ctx, models.StateClassified, utils.Fields{"platform": string(p)})

	// 3-6 own a status message and possibly a file
	defer r.release(ctx)
	defer r.recoverPanic(ctx)

	if err := r.deliver(ctx, p); err != nil {
		r.fail(ctx, err)
	}
}

func (r *run) deliver(ctx context.Context, p models.Platform) error {
	// 3. Classified → Downloading
	status, err := r.messenger.SendStatus(ctx, r.req, fmt.Sprintf("⏳ Downloading video from %s...", p.DisplayName()))
	if err != nil {
		// Carry on without a status message; failures will be replied instead
		utils.LogWarn(ctx, "Failed to send status message", utils.Fields{"error": err.Error()})
	}
	r.status = status
	r.transition(ctx, models.StateDownloading)

	result, err := r.fetcher.Fetch(ctx, r.req.Text, p)
	if err != nil {
		return downloadFailure(err)
	}
	r.file = newOwnedFile(result)

	// 4. Downloading → SizeChecked
	info, err := os.Stat(result.FilePath)
	if err != nil {
		return utils.NewInternalError(fmt.Errorf("failed to stat download: %w", err))
	}
	if info.Size() > r.maxFileSize {
		return utils.NewFileTooLargeError(info.Size(), r.maxFileSize)
	}
	r.transition(ctx, models.StateSizeChecked, utils.Fields{"size": info.Size()})

	// 5. SizeChecked → Delivering
	r.transition(ctx, models.StateDelivering)
	if err := r.messenger.SendVideo(ctx, r.req, result.FilePath, caption(result.Title, p)); err != nil {
		return utils.NewInternalError(err)
	}

	// 6. Delivering → Done
	if r.status != nil {
		if err := r.messenger.DeleteStatus(ctx, r.status); err != nil {
			utils.LogWarn(ctx, "Failed to delete status message", utils.Fields{"error": err.Error()})
		}
		r.status = nil
	}
	r.file.Remove(ctx)
	r.transition(ctx, models.StateDone)

	utils.LogInfo(ctx, "Video delivered", utils.Fields{
		"platform": string(p),
		"title":    result.Title,
		"size":     info.Size(),
	})
	return nil
}

// downloadFailure converts a fetch error into the user-facing AppError.
func downloadFailure(err error) *utils.AppError {
	var dlErr *downloader.DownloadError
	if !errors.As(err, &dlErr) {
		return utils.NewInternalError(err)
	}

	switch dlErr.Kind {
	case downloader.KindTooLarge:
		appErr := utils.NewError(utils.ErrorCodeFileTooLarge,
			fmt.Sprintf("❌ The video is too large to send via Telegram: %s.", dlErr.Error()))
		appErr.Err = err
		return appErr
	case downloader.KindUnsupported:
		return utils.NewDownloadError(dlErr, "This link does not point to a downloadable video.")
	case downloader.KindUnavailable:
		return utils.NewDownloadError(dlErr, "The video may be private, removed or region-locked.")
	case downloader.KindTimeout:
		return utils.NewDownloadError(dlErr, "The download took too long. Try a shorter video.")
	case downloader.KindNetwork:
		return utils.NewDownloadError(dlErr, "The source site could not be reached. Try again later.")
	default:
		return utils.NewDownloadError(dlErr, "")
	}
}

func (r *run) fail(ctx context.Context, err error) {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		appErr = utils.NewInternalError(err)
	}

	fields := utils.Fields{
		"code":  string(appErr.Code),
		"state": string(r.state),
	}
	if dlErr := (*downloader.DownloadError)(nil); errors.As(err, &dlErr) {
		fields["kind"] = dlErr.Kind.String()
	}

	switch appErr.Code {
	case utils.ErrorCodeFileTooLarge:
		utils.LogWarn(ctx, "Rejected oversize video", utils.Fields{"code": string(appErr.Code), "details": appErr.Details})
	default:
		utils.LogError(ctx, "Request failed", err, fields)
	}

	// Remove the file before telling the user
	if r.file != nil {
		r.file.Remove(ctx)
	}
	r.reply(ctx, appErr)
}

// reply ends the request with a user-visible message: the status message is
// edited when there is one, otherwise a new reply is sent.
func (r *run) reply(ctx context.Context, appErr *utils.AppError) {
	r.transition(ctx, models.StateErrored, utils.Fields{"code": string(appErr.Code)})

	if r.status != nil {
		status := r.status
		r.status = nil
		err := r.messenger.EditStatus(ctx, status, appErr.Message)
		if err == nil {
			return
		}
		utils.LogWarn(ctx, "Failed to edit status message", utils.Fields{"error": err.Error()})
	}

	if err := r.messenger.Reply(ctx, r.req, appErr.Message, ""); err != nil {
		utils.LogError(ctx, "Failed to notify user", err)
	}
}

func (r *run) recoverPanic(ctx context.Context) {
	if rec := recover(); rec != nil {
		err := fmt.Errorf("panic: %v", rec)
		utils.LogError(ctx, "Recovered from panic in request pipeline", err, utils.Fields{
			"stack": string(debug.Stack()),
		})
		r.fail(ctx, utils.NewInternalError(err))
	}
}

// release is the backstop for every exit path: no file survives the request
// and a leftover status message is removed.
func (r *run) release(ctx context.Context) {
	if r.file != nil {
		r.file.Remove(ctx)
	}
	if r.status != nil && r.state.IsTerminal() {
		if err := r.messenger.DeleteStatus(ctx, r.status); err != nil {
			utils.LogWarn(ctx, "Failed to delete status message", utils.Fields{"error": err.Error()})
		}
		r.status = nil
	}
}

func (r *run) transition(ctx context.Context, to models.RequestState, fields ...utils.Fields) {
	entry := utils.Fields{
		"from":    string(r.state),
		"to":      string(to),
		"chat_id": r.req.Sender.ChatID,
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			entry[k] = v
		}
	}
	utils.LogDebug(ctx, "Request state changed", entry)
	r.state = to
}

func caption(title string, p models.Platform) string {
	if utf8.RuneCountInString(title) > maxCaptionTitle {
		runes := []rune(title)
		title = string(runes[:maxCaptionTitle]) + "…"
	}
	return fmt.Sprintf("🎥 %s\n\n✅ Downloaded from %s", title, p.DisplayName())
}

// ownedFile removes a downloaded file and its request directory exactly once.
type ownedFile struct {
	result *models.DownloadResult
	once   sync.Once
}

func newOwnedFile(result *models.DownloadResult) *ownedFile {
	return &ownedFile{result: result}
}

func (f *ownedFile) Remove(ctx context.Context) {
	f.once.Do(func() {
		if err := os.Remove(f.result.FilePath); err != nil && !os.IsNotExist(err) {
			utils.LogError(ctx, "Failed to remove downloaded file", err, utils.Fields{"path": f.result.FilePath})
		}
		if f.result.WorkDir != "" {
			if err := os.RemoveAll(f.result.WorkDir); err != nil {
				utils.LogError(ctx, "Failed to remove work dir", err, utils.Fields{"path": f.result.WorkDir})
			}
		}
	})
}
