package resources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FetchOptions configures Fetch.
type FetchOptions struct {
	URL     string
	SHA256  string
	OutPath string
	Token   string
	Stdout  io.Writer
	Client  *http.Client
}

// ErrAccessDenied is returned when the server rejects the credentials.
type ErrAccessDenied struct {
	URL string
}

func (e *ErrAccessDenied) Error() string {
	return fmt.Sprintf("access denied for %s; provide a token with --token or POLYTTS_TOKEN", e.URL)
}

var shaHexPattern = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

// Fetch downloads a resource archive to OutPath. When SHA256 is set, an
// existing file with a matching checksum is kept and a downloaded file
// with a different checksum is rejected and removed. The archive is
// written to a temporary file and renamed into place once complete.
func Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	if opts.URL == "" {
		return "", fmt.Errorf("url is required")
	}
	if opts.OutPath == "" {
		return "", fmt.Errorf("out path is required")
	}
	if opts.SHA256 != "" && !isSHA256Hex(opts.SHA256) {
		return "", fmt.Errorf("invalid sha256 %q", opts.SHA256)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 0}
	}
	expected := strings.ToLower(opts.SHA256)

	if err := os.MkdirAll(filepath.Dir(opts.OutPath), 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	if expected != "" {
		if ok, err := existingMatches(opts.OutPath, expected); err != nil {
			return "", err
		} else if ok {
			fmt.Fprintf(opts.Stdout, "skip %s (checksum match)\n", opts.OutPath)
			return expected, nil
		}
	}

	fmt.Fprintf(opts.Stdout, "download %s -> %s\n", opts.URL, opts.OutPath)
	actual, err := downloadWithProgress(ctx, opts)
	if err != nil {
		return "", err
	}
	if expected != "" && actual != expected {
		_ = os.Remove(opts.OutPath)
		return "", fmt.Errorf("checksum mismatch for %s: expected %s got %s", opts.OutPath, expected, actual)
	}
	fmt.Fprintf(opts.Stdout, "verified %s (sha256=%s)\n", opts.OutPath, actual)
	return actual, nil
}

func existingMatches(path, expected string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat existing file: %w", err)
	}
	if fi.IsDir() {
		return false, fmt.Errorf("expected file at %s, found directory", path)
	}
	actual, err := FileSHA256(path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}

func downloadWithProgress(ctx context.Context, opts FetchOptions) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &ErrAccessDenied{URL: opts.URL}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download failed for %s: %s", opts.URL, resp.Status)
	}

	tmp := opts.OutPath + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	h := sha256.New()
	mw := io.MultiWriter(fh, h)

	var written int64
	buf := make([]byte, 64*1024)
	total := resp.ContentLength
	lastPrint := time.Now()
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			wn, writeErr := mw.Write(buf[:n])
			if writeErr != nil {
				_ = fh.Close()
				_ = os.Remove(tmp)
				return "", fmt.Errorf("write temp file: %w", writeErr)
			}
			written += int64(wn)
			if time.Since(lastPrint) > 700*time.Millisecond {
				if total > 0 {
					pct := float64(written) * 100 / float64(total)
					fmt.Fprintf(opts.Stdout, "  progress: %.1f%% (%d/%d bytes)\n", pct, written, total)
				} else {
					fmt.Fprintf(opts.Stdout, "  progress: %d bytes\n", written)
				}
				lastPrint = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = fh.Close()
			_ = os.Remove(tmp)
			return "", fmt.Errorf("download read failed: %w", readErr)
		}
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, opts.OutPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("move temp file into place: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func isSHA256Hex(v string) bool {
	return shaHexPattern.MatchString(v)
}

// FileSHA256 returns the hex sha256 of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file for checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
