package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/wallpaperio/wallpaperio/util/log"
)

// progressStep is how many bytes pass between progress log lines.
const progressStep = 1 << 20

// Downloader streams remote images to disk with bounded retry.
type Downloader struct {
	client  *http.Client
	retries *RetryCounter
	pacer   *rate.Limiter
}

// NewDownloader creates a downloader sharing the retry counter and pacer with its caller.
func NewDownloader(client *http.Client, retries *RetryCounter, pacer *rate.Limiter) *Downloader {
	return &Downloader{client: client, retries: retries, pacer: pacer}
}

// Download streams url into dest, overwriting it. Failed attempts are retried
// from scratch until the retry ceiling is reached, at which point the partial
// file is removed and ErrDownloadExhausted is returned.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	for {
		err := d.attempt(ctx, url, dest)
		if err == nil {
			d.retries.Reset()
			return nil
		}

		if ctx.Err() != nil {
			d.discard(dest)
			d.retries.Reset()
			return ctx.Err()
		}

		log.Printf("Download of %s failed (attempt %d/%d): %v", url, d.retries.Value()+1, d.retries.Ceiling(), err)
		if !d.retries.Fail() {
			d.discard(dest)
			return fmt.Errorf("%w: %v", ErrDownloadExhausted, err)
		}

		if err := d.pacer.Wait(ctx); err != nil {
			d.discard(dest)
			d.retries.Reset()
			return err
		}
	}
}

// attempt performs a single download. The file is closed before it returns.
func (d *Downloader) attempt(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return err
	}

	progress := &progressWriter{name: dest, total: resp.ContentLength}
	if _, err := io.Copy(io.MultiWriter(file, progress), resp.Body); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// discard removes a partial download.
func (d *Downloader) discard(dest string) {
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to remove partial download %s: %v", dest, err)
	}
}

// progressWriter logs received bytes at debug level.
type progressWriter struct {
	name    string
	total   int64
	written int64
	next    int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.written >= p.next {
		if p.total > 0 {
			log.Debugf("Downloading %s: %d/%d bytes", p.name, p.written, p.total)
		} else {
			log.Debugf("Downloading %s: %d bytes", p.name, p.written)
		}
		p.next = p.written + progressStep
	}
	return len(b), nil
}
