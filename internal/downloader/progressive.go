package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
)

// errRangeNotSupported marks a server that answered a ranged GET with a
// plain 200; the download restarts as one sequential fetch.
var errRangeNotSupported = errors.New("server ignored the range request")

// ProgressiveDownloader downloads a progressive stream URL by splitting
// it into byte ranges and fetching them in parallel. The destination is
// an io.WriterAt so workers write their ranges independently.
type ProgressiveDownloader struct {
	client   *http.Client
	url      string
	workers  int
	headers  http.Header
	cfg      TransportConfig
	progress ProgressReporter
}

func NewProgressiveDownloader(client *http.Client, url string, workers int) *ProgressiveDownloader {
	if workers < 1 {
		workers = 1
	}
	return &ProgressiveDownloader{client: client, url: url, workers: workers}
}

func (p *ProgressiveDownloader) WithRequestHeaders(h http.Header) *ProgressiveDownloader {
	p.headers = h.Clone()
	return p
}

func (p *ProgressiveDownloader) WithTransportConfig(cfg TransportConfig) *ProgressiveDownloader {
	p.cfg = cfg
	return p
}

func (p *ProgressiveDownloader) WithProgress(r ProgressReporter) *ProgressiveDownloader {
	p.progress = r
	return p
}

// Download fetches the whole stream into w and returns the byte count.
func (p *ProgressiveDownloader) Download(ctx context.Context, w io.WriterAt) (int64, error) {
	total, err := p.contentLength(ctx)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	workers := p.workers
	if int64(workers) > total {
		workers = int(total)
	}
	chunk := total / int64(workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var written atomic.Int64
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := int64(i) * chunk
		end := start + chunk - 1
		if i == workers-1 {
			end = total - 1
		}
		wg.Add(1)
		go func(i int, start, end int64) {
			defer wg.Done()
			if err := p.downloadRange(runCtx, w, start, end, total, &written); err != nil {
				errs[i] = err
				cancel()
			}
		}(i, start, end)
	}
	wg.Wait()

	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		// Siblings cancelled by the 200 worker fail with context.Canceled;
		// the fallback signal wins over those.
		if errors.Is(err, errRangeNotSupported) {
			return p.downloadFull(ctx, w, total)
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return written.Load(), firstErr
	}
	return written.Load(), nil
}

// downloadFull streams the whole resource in one unranged GET. Partial
// worker writes are overwritten from offset zero; without range support
// a failed attempt cannot resume, so each retry starts over.
func (p *ProgressiveDownloader) downloadFull(ctx context.Context, w io.WriterAt, total int64) (int64, error) {
	cfg := p.cfg.normalized()
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		var written atomic.Int64
		n, err := p.tryFull(ctx, w, total, &written)
		if err == nil {
			return n, nil
		}
		lastErr = err
		if !cfg.retryable(lastErr) || attempt == cfg.MaxRetries {
			return n, lastErr
		}
		if err := waitBackoff(ctx, cfg.backoffFor(attempt)); err != nil {
			return n, err
		}
	}
	return 0, lastErr
}

func (p *ProgressiveDownloader) tryFull(ctx context.Context, w io.WriterAt, total int64, written *atomic.Int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, err
	}
	applyRequestHeaders(req, p.headers)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &fetchStatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	n, err := p.copyBody(resp.Body, w, 0, total, written)
	if err != nil {
		return n, err
	}
	if n < total {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (p *ProgressiveDownloader) contentLength(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return 0, err
	}
	applyRequestHeaders(req, p.headers)
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &fetchStatusError{StatusCode: resp.StatusCode}
	}
	length, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || length < 0 {
		return 0, fmt.Errorf("stream has no content length")
	}
	return length, nil
}

func (p *ProgressiveDownloader) downloadRange(ctx context.Context, w io.WriterAt, start, end, total int64, written *atomic.Int64) error {
	cfg := p.cfg.normalized()
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		n, err := p.tryRange(ctx, w, start, end, total, written)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(lastErr, errRangeNotSupported) {
			return lastErr
		}
		// Resume after whatever the failed attempt already wrote.
		start += n
		if !cfg.retryable(lastErr) || attempt == cfg.MaxRetries {
			return lastErr
		}
		if err := waitBackoff(ctx, cfg.backoffFor(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func (p *ProgressiveDownloader) tryRange(ctx context.Context, w io.WriterAt, start, end, total int64, written *atomic.Int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, err
	}
	applyRequestHeaders(req, p.headers)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// A 200 means the server served the whole resource instead of the
	// range; writing its body at this worker's offset would corrupt the
	// output.
	if resp.StatusCode == http.StatusOK {
		return 0, errRangeNotSupported
	}
	if resp.StatusCode != http.StatusPartialContent {
		return 0, &fetchStatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	want := end - start + 1
	n, err := p.copyBody(resp.Body, w, start, total, written)
	if err != nil {
		return n, err
	}
	if n < want {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (p *ProgressiveDownloader) copyBody(body io.Reader, w io.WriterAt, offset, total int64, written *atomic.Int64) (int64, error) {
	var n int64
	buf := make([]byte, 256<<10)
	for {
		read, readErr := body.Read(buf)
		if read > 0 {
			if _, err := w.WriteAt(buf[:read], offset+n); err != nil {
				return n, err
			}
			n += int64(read)
			if p.progress != nil {
				p.progress.OnProgress(written.Add(int64(read)), total)
			} else {
				written.Add(int64(read))
			}
		}
		if readErr == io.EOF {
			return n, nil
		}
		if readErr != nil {
			return n, readErr
		}
	}
}
