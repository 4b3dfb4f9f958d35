package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/youtube"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// Extractor is the external extraction engine. Implementations write exactly
// one media file into opts.WorkDir.
type Extractor interface {
	Extract(ctx context.Context, url string, opts Options) (filePath, title string, err error)
}

type Downloader struct {
	extractor Extractor
	prober    youtube.SizeProber
	config    *config.DownloadConfig
}

// NewDownloader wires the extraction engine. prober may be nil, which
// disables the size pre-check.
func NewDownloader(extractor Extractor, prober youtube.SizeProber, cfg *config.DownloadConfig) *Downloader {
	return &Downloader{
		extractor: extractor,
		prober:    prober,
		config:    cfg,
	}
}

// Fetch downloads url into a fresh request directory. On success the caller
// owns the returned file and its WorkDir; on failure nothing is left on disk.
// Every error is a *DownloadError.
func (d *Downloader) Fetch(ctx context.Context, url string, platform models.Platform) (result *models.DownloadResult, err error) {
	if err := d.preflight(ctx, url, platform); err != nil {
		return nil, err
	}

	workDir, err := utils.NewWorkDir(d.config.Dir)
	if err != nil {
		return nil, NewDownloadError(KindUnknown, "could not prepare download directory", err)
	}

	// Ownership moves to the caller only when a result is returned
	defer func() {
		if result == nil {
			os.RemoveAll(workDir)
		}
	}()

	opts := newOptions(workDir, platform, d.config.MaxHeight, d.config.DownloadTimeout)

	fetchCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	utils.LogInfo(ctx, "Starting download", utils.Fields{
		"url":      url,
		"platform": string(platform),
		"work_dir": workDir,
		"template": opts.OutputTemplate,
	})

	filePath, title, err := d.extractor.Extract(fetchCtx, url, opts)
	if err != nil {
		return nil, d.normalizeError(fetchCtx, err)
	}

	if !withinDir(workDir, filePath) {
		return nil, NewDownloadError(KindUnknown, "downloaded file is outside the request directory", fmt.Errorf("path %s", filePath))
	}
	if !fileExists(filePath) {
		return nil, NewDownloadError(KindUnknown, "downloaded file is missing", fmt.Errorf("path %s", filePath))
	}

	if strings.TrimSpace(title) == "" {
		title = "video"
	}

	return &models.DownloadResult{
		FilePath: filePath,
		Title:    title,
		WorkDir:  workDir,
	}, nil
}

// preflight rejects YouTube videos whose announced size is already above the
// limit. Probe failures never block a download.
func (d *Downloader) preflight(ctx context.Context, url string, platform models.Platform) error {
	if d.prober == nil || platform != models.PlatformYouTube {
		return nil
	}

	size, err := d.prober.EstimateSize(ctx, url, d.config.MaxHeight)
	if err != nil {
		utils.LogDebug(ctx, "Size pre-check skipped", utils.Fields{"error": err.Error()})
		return nil
	}

	if size > d.config.MaxFileSize {
		return NewDownloadError(KindTooLarge,
			fmt.Sprintf("video is about %dMB, the limit is %dMB", size/(1024*1024), d.config.MaxFileSize/(1024*1024)),
			nil)
	}
	return nil
}

func (d *Downloader) normalizeError(ctx context.Context, err error) *DownloadError {
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && dlErr.Kind != KindTimeout {
			return NewDownloadError(KindTimeout, "download timed out", err)
		}
		return dlErr
	}
	return NewDownloadError(classifyFailure(ctx, err.Error()), err.Error(), err)
}

func withinDir(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}
