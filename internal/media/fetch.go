// Package media fetches job source files under size, time and
// content-type constraints before they are handed to the clip pipeline.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// FetchError is the single retryable failure category for source
// acquisition: timeouts, disallowed types, oversize bodies and missing
// local files all land here. The worker counts them against the job's
// attempts.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to acquire source %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// extensions maps allowed content types to destination file extensions.
var extensions = map[string]string{
	"video/mp4":                ".mp4",
	"video/webm":               ".webm",
	"video/quicktime":          ".mov",
	"video/x-matroska":         ".mkv",
	"audio/mpeg":               ".mp3",
	"audio/wav":                ".wav",
	"audio/x-wav":              ".wav",
	"audio/ogg":                ".ogg",
	"application/octet-stream": ".bin",
}

// Fetcher downloads remote source media to the local filesystem.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher builds a fetcher with a hard request timeout and a byte
// ceiling. The underlying client retries transient transport errors a
// couple of times before the failure is reported to the caller.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil // Silence default debug logger

	client := retryClient.StandardClient()
	client.Timeout = timeout

	return &Fetcher{
		client:   client,
		maxBytes: maxBytes,
	}
}

// Fetch downloads rawURL into destDir and returns the path of the
// completed file. The body streams through a .partial file that is only
// renamed into place on success, so an aborted transfer never leaves a
// usable file at the destination.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{Source: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Source: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{Source: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	ext, err := extensionForContentType(resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{Source: rawURL, Err: err}
	}

	// Reject on the declared length before reading any body bytes. A
	// missing or lying Content-Length is caught by the streaming check
	// below.
	if resp.ContentLength > f.maxBytes {
		return "", &FetchError{
			Source: rawURL,
			Err:    fmt.Errorf("declared size %d exceeds limit %d", resp.ContentLength, f.maxBytes),
		}
	}

	dest := filepath.Join(destDir, "source"+ext)
	partial := dest + ".partial"

	out, err := os.Create(partial)
	if err != nil {
		return "", &FetchError{Source: rawURL, Err: err}
	}

	// Copy at most maxBytes+1: a full read of the extra byte means the
	// server sent more than allowed and the transfer is aborted.
	written, err := io.Copy(out, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := out.Close()

	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err == nil && written > f.maxBytes {
		err = fmt.Errorf("body exceeds limit %d", f.maxBytes)
	}
	if err != nil {
		os.Remove(partial)
		return "", &FetchError{Source: rawURL, Err: err}
	}

	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return "", &FetchError{Source: rawURL, Err: err}
	}

	return dest, nil
}

// ResolveLocal resolves a local source path to an absolute path and
// verifies it is a readable regular file. The path is never interpreted
// through a shell.
func ResolveLocal(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &FetchError{Source: path, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &FetchError{Source: path, Err: err}
	}
	if info.IsDir() {
		return "", &FetchError{Source: path, Err: fmt.Errorf("source is a directory")}
	}

	file, err := os.Open(abs)
	if err != nil {
		return "", &FetchError{Source: path, Err: err}
	}
	file.Close()

	return abs, nil
}

// IsRemote reports whether the source URI points at a remote HTTP(S) URL.
func IsRemote(sourceURI string) bool {
	return strings.HasPrefix(sourceURI, "http://") || strings.HasPrefix(sourceURI, "https://")
}

func extensionForContentType(header string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("invalid content type %q", header)
	}

	if ext, ok := extensions[mediaType]; ok {
		return ext, nil
	}
	// Any video/* or audio/* subtype is acceptable even without a known
	// extension mapping.
	if strings.HasPrefix(mediaType, "video/") {
		return ".mp4", nil
	}
	if strings.HasPrefix(mediaType, "audio/") {
		return ".mp3", nil
	}

	return "", fmt.Errorf("disallowed content type %q", mediaType)
}
