// Package downloader fetches an assembled page list into a chapter folder.
// Synthetic pages go through the same client as native images and are
// answered by the interceptor installed on it.
package downloader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/noveltomanga/internal/pages"
)

// Progress receives page counts and bytes written; *ui.ProgressHandle
// implements it.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type Downloader struct {
	client     *http.Client
	log        interface{ Debugf(string, ...any) }
	skipBroken bool
	attempts   int
	backoff    time.Duration
}

func New(c *http.Client, log interface{ Debugf(string, ...any) }, skipBroken bool) *Downloader {
	return &Downloader{
		client:     c,
		log:        log,
		skipBroken: skipBroken,
		attempts:   3,
		backoff:    time.Second,
	}
}

type chapterState struct {
	mu        sync.Mutex
	donePages int
	total     int
	doneBytes int64
	ph        Progress
}

func (cs *chapterState) pageDone() {
	cs.mu.Lock()
	cs.donePages++
	cs.ph.Update(cs.donePages, cs.total, cs.doneBytes)
	cs.mu.Unlock()
}

func (cs *chapterState) addBytes(delta int64) {
	cs.mu.Lock()
	cs.doneBytes += delta
	cs.ph.Update(cs.donePages, cs.total, cs.doneBytes)
	cs.mu.Unlock()
}

// DownloadPages writes each page to folder as page_NNN.<ext>, NNN being the
// page index and ext following the response content type. It returns the
// written files in page order and the bytes written.
func (d *Downloader) DownloadPages(
	ctx context.Context,
	list []pages.Page,
	folder string,
	referer string,
	maxParallel int,
	ph Progress,
) ([]string, int64, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, 0, err
	}

	total := len(list)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	cs := &chapterState{total: total, ph: ph}
	ph.Update(0, total, 0)

	files := make([]string, total)
	var errMu sync.Mutex
	var errs []error

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			p := list[i]
			base := filepath.Join(folder, fmt.Sprintf("page_%03d", p.Index))

			var last int64
			progress := func(done int64) {
				if delta := done - last; delta > 0 {
					last = done
					cs.addBytes(delta)
				}
			}

			file, err := d.downloadWithRetry(ctx, p, base, referer, progress)
			if err != nil {
				errMu.Lock()
				errs = append(errs, fmt.Errorf("page %d (%s): %w", p.Index, p.Origin, err))
				errMu.Unlock()
				d.log.Debugf("page %d failed: %v\n", p.Index, err)
			} else {
				files[i] = file
			}

			cs.pageDone()
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

	for i := range list {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			ph.MarkDone()
			return compact(files), cs.doneBytes, ctx.Err()
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	ph.MarkDone()

	if len(errs) > 0 && !d.skipBroken {
		return compact(files), cs.doneBytes, fmt.Errorf("failed %d/%d pages (use --skip-broken to continue): %w", len(errs), total, errs[0])
	}

	return compact(files), cs.doneBytes, nil
}

func compact(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}

func (d *Downloader) downloadWithRetry(
	ctx context.Context,
	p pages.Page,
	base string,
	referer string,
	progress func(done int64),
) (string, error) {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		var file string
		file, err = d.download(ctx, p, base, referer, progress)
		if err == nil {
			return file, nil
		}
		// Rendering is deterministic: a synthetic page that failed once fails again.
		if p.Origin == pages.Synthetic {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * d.backoff):
		}
	}

	return "", err
}

func (d *Downloader) download(
	ctx context.Context,
	p pages.Page,
	base, referer string,
	progress func(done int64),
) (file string, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return "", err
	}

	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	ext, err := extensionFor(resp.Header.Get("Content-Type"), p.URL)
	if err != nil {
		return "", err
	}

	file = base + ext
	f, err := os.Create(file)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	written, err := copyWithProgress(f, resp.Body, progress)
	if err != nil {
		return "", err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return file, nil
}

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// extensionFor picks a file extension from the content type, falling back to
// the URL's extension when the server sent none.
func extensionFor(contentType, rawURL string) (string, error) {
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", fmt.Errorf("bad content type %q: %w", contentType, err)
		}
		if !strings.HasPrefix(mt, "image/") {
			return "", fmt.Errorf("unexpected MIME: %s", contentType)
		}
		if ext, ok := imageExt[mt]; ok {
			return ext, nil
		}
		if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
			return exts[0], nil
		}
	}

	if ext := strings.ToLower(path.Ext(urlPath(rawURL))); ext != "" && len(ext) <= 5 {
		return ext, nil
	}

	return ".jpg", nil
}

func urlPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}

	return raw
}
