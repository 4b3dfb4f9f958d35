package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls []Options
	title string
	size  int
	err   error
	// writePartial leaves a .part file behind before failing
	writePartial bool
	wait         time.Duration
}

func (f *fakeExtractor) Extract(ctx context.Context, url string, opts Options) (string, string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}

	if f.writePartial {
		os.WriteFile(filepath.Join(opts.WorkDir, "clip.mp4.part"), []byte("partial"), 0o644)
	}
	if f.err != nil {
		return "", "", f.err
	}

	path := filepath.Join(opts.WorkDir, "clip.mp4")
	if err := os.WriteFile(path, make([]byte, f.size), 0o644); err != nil {
		return "", "", err
	}
	return path, f.title, nil
}

type fakeProber struct {
	size  int64
	err   error
	calls int
}

func (p *fakeProber) EstimateSize(ctx context.Context, url string, maxHeight int) (int64, error) {
	p.calls++
	return p.size, p.err
}

func newTestConfig(t *testing.T) *config.DownloadConfig {
	return &config.DownloadConfig{
		Dir:             t.TempDir(),
		MaxFileSize:     50 * 1024 * 1024,
		MaxHeight:       720,
		DownloadTimeout: time.Minute,
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty scratch dir, found %d entries", len(entries))
	}
}

func TestFetchSuccess(t *testing.T) {
	cfg := newTestConfig(t)
	extractor := &fakeExtractor{title: "My Video", size: 16}
	d := NewDownloader(extractor, nil, cfg)

	result, err := d.Fetch(context.Background(), "https://www.youtube.com/watch?v=abc123", models.PlatformYouTube)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if result.Title != "My Video" {
		t.Errorf("Title = %q", result.Title)
	}
	if filepath.Dir(result.FilePath) != result.WorkDir {
		t.Errorf("file %s is not inside work dir %s", result.FilePath, result.WorkDir)
	}
	if filepath.Dir(result.WorkDir) != cfg.Dir {
		t.Errorf("work dir %s is not inside scratch dir %s", result.WorkDir, cfg.Dir)
	}

	opts := extractor.calls[0]
	if opts.OutputTemplate != "%(title)s.%(ext)s" {
		t.Errorf("OutputTemplate = %q", opts.OutputTemplate)
	}
	if opts.Format != "best[height<=?720]" {
		t.Errorf("Format = %q", opts.Format)
	}
}

func TestFetchDefaultTitle(t *testing.T) {
	d := NewDownloader(&fakeExtractor{size: 1}, nil, newTestConfig(t))

	result, err := d.Fetch(context.Background(), "https://www.tiktok.com/@u/video/1", models.PlatformTikTok)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Title != "video" {
		t.Errorf("Title = %q, want video", result.Title)
	}
}

func TestFetchUsesFreshOptionsPerCall(t *testing.T) {
	extractor := &fakeExtractor{size: 1, title: "x"}
	d := NewDownloader(extractor, nil, newTestConfig(t))

	platforms := []models.Platform{
		models.PlatformTikTok,
		models.PlatformInstagram,
		models.PlatformYouTube,
		models.PlatformTikTok,
	}

	var wg sync.WaitGroup
	for _, p := range platforms {
		wg.Add(1)
		go func(p models.Platform) {
			defer wg.Done()
			if _, err := d.Fetch(context.Background(), "https://example.com/v", p); err != nil {
				t.Errorf("Fetch(%s) error = %v", p, err)
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, opts := range extractor.calls {
		if seen[opts.WorkDir] {
			t.Errorf("work dir %s reused", opts.WorkDir)
		}
		seen[opts.WorkDir] = true
	}

	counts := make(map[string]int)
	for _, opts := range extractor.calls {
		counts[opts.OutputTemplate]++
	}
	if counts["tiktok_%(id)s.%(ext)s"] != 2 || counts["instagram_%(id)s.%(ext)s"] != 1 || counts["%(title)s.%(ext)s"] != 1 {
		t.Errorf("unexpected template distribution: %v", counts)
	}
}

func TestFetchFailureCleansUp(t *testing.T) {
	cfg := newTestConfig(t)
	extractor := &fakeExtractor{
		err:          NewDownloadError(KindNetwork, "network timeout", errors.New("exit status 1")),
		writePartial: true,
	}
	d := NewDownloader(extractor, nil, cfg)

	_, err := d.Fetch(context.Background(), "https://www.tiktok.com/@u/video/1", models.PlatformTikTok)
	if err == nil {
		t.Fatal("expected error")
	}

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected *DownloadError, got %T", err)
	}
	if dlErr.Kind != KindNetwork || dlErr.Error() != "network timeout" {
		t.Errorf("unexpected error %v (%s)", dlErr, dlErr.Kind)
	}
	assertEmptyDir(t, cfg.Dir)
}

func TestFetchWrapsPlainErrors(t *testing.T) {
	cfg := newTestConfig(t)
	d := NewDownloader(&fakeExtractor{err: errors.New("ERROR: [tiktok] 1: Private video")}, nil, cfg)

	_, err := d.Fetch(context.Background(), "https://www.tiktok.com/@u/video/1", models.PlatformTikTok)
	if KindOf(err) != KindUnavailable {
		t.Errorf("KindOf() = %s, want unavailable", KindOf(err))
	}
	assertEmptyDir(t, cfg.Dir)
}

func TestFetchTimeout(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.DownloadTimeout = 20 * time.Millisecond
	d := NewDownloader(&fakeExtractor{wait: time.Second}, nil, cfg)

	_, err := d.Fetch(context.Background(), "https://youtu.be/abc", models.PlatformYouTube)
	if KindOf(err) != KindTimeout {
		t.Errorf("KindOf() = %s, want timeout (err: %v)", KindOf(err), err)
	}
	assertEmptyDir(t, cfg.Dir)
}

func TestFetchPreflight(t *testing.T) {
	t.Run("rejects oversize YouTube video", func(t *testing.T) {
		cfg := newTestConfig(t)
		extractor := &fakeExtractor{size: 1}
		prober := &fakeProber{size: 60 * 1024 * 1024}
		d := NewDownloader(extractor, prober, cfg)

		_, err := d.Fetch(context.Background(), "https://youtu.be/abc", models.PlatformYouTube)
		if KindOf(err) != KindTooLarge {
			t.Fatalf("KindOf() = %s, want too_large", KindOf(err))
		}
		if len(extractor.calls) != 0 {
			t.Error("extractor must not run after a failed pre-check")
		}
		assertEmptyDir(t, cfg.Dir)
	})

	t.Run("probe errors are ignored", func(t *testing.T) {
		prober := &fakeProber{err: errors.New("boom")}
		d := NewDownloader(&fakeExtractor{size: 1}, prober, newTestConfig(t))

		if _, err := d.Fetch(context.Background(), "https://youtu.be/abc", models.PlatformYouTube); err != nil {
			t.Errorf("Fetch() error = %v", err)
		}
	})

	t.Run("other platforms are not probed", func(t *testing.T) {
		prober := &fakeProber{size: 1 << 40}
		d := NewDownloader(&fakeExtractor{size: 1}, prober, newTestConfig(t))

		if _, err := d.Fetch(context.Background(), "https://www.instagram.com/reel/x", models.PlatformInstagram); err != nil {
			t.Errorf("Fetch() error = %v", err)
		}
		if prober.calls != 0 {
			t.Errorf("prober called %d times", prober.calls)
		}
	})
}

func TestFetchRejectsFileOutsideWorkDir(t *testing.T) {
	cfg := newTestConfig(t)
	outside := filepath.Join(t.TempDir(), "elsewhere.mp4")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(extractorFunc(func(ctx context.Context, url string, opts Options) (string, string, error) {
		return outside, "t", nil
	}), nil, cfg)

	if _, err := d.Fetch(context.Background(), "https://youtu.be/abc", models.PlatformYouTube); err == nil {
		t.Error("expected error for file outside work dir")
	}
	assertEmptyDir(t, cfg.Dir)
}

type extractorFunc func(ctx context.Context, url string, opts Options) (string, string, error)

func (f extractorFunc) Extract(ctx context.Context, url string, opts Options) (string, string, error) {
	return f(ctx, url, opts)
}
