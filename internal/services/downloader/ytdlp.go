package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// YTDLPExtractor drives the yt-dlp binary through go-ytdlp.
type YTDLPExtractor struct {
	executable string
}

func NewYTDLPExtractor(executable string) *YTDLPExtractor {
	return &YTDLPExtractor{executable: executable}
}

// EnsureInstalled downloads a yt-dlp build into the go-ytdlp cache when none
// is available.
func EnsureInstalled(ctx context.Context) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	utils.LogInfo(ctx, "yt-dlp available", utils.Fields{
		"executable": resolved.Executable,
		"version":    resolved.Version,
	})
	return nil
}

func (e *YTDLPExtractor) Extract(ctx context.Context, url string, opts Options) (string, string, error) {
	// A new command per call; nothing is shared between requests
	dl := ytdlp.New().
		Output(filepath.Join(opts.WorkDir, opts.OutputTemplate)).
		Format(opts.Format).
		NoPlaylist().
		RestrictFilenames().
		Quiet().
		NoProgress().
		PrintJSON()
	if e.executable != "" {
		dl.SetExecutable(e.executable)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		diagnostics := err.Error()
		if result != nil && strings.TrimSpace(result.Stderr) != "" {
			diagnostics = result.Stderr
		}
		return "", "", NewDownloadError(classifyFailure(ctx, diagnostics), lastErrorLine(diagnostics), err)
	}

	title := ""
	filePath := ""
	if infos, err := result.GetExtractedInfo(); err == nil && len(infos) > 0 {
		if infos[0].Title != nil {
			title = *infos[0].Title
		}
		if infos[0].Filename != nil {
			filePath = *infos[0].Filename
		}
	} else if err != nil {
		utils.LogWarn(ctx, "Could not parse yt-dlp metadata", utils.Fields{"error": err.Error()})
	}

	if filePath == "" || !fileExists(filePath) {
		filePath, err = findDownloadedFile(opts.WorkDir)
		if err != nil {
			return "", "", NewDownloadError(KindUnknown, "yt-dlp finished without producing a file", err)
		}
	}

	return filePath, title, nil
}

// findDownloadedFile returns the single finished media file in dir.
func findDownloadedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var found string
	var largest int64 = -1
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > largest {
			largest = info.Size()
			found = filepath.Join(dir, name)
		}
	}

	if found == "" {
		return "", fmt.Errorf("no media file in %s", dir)
	}
	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
