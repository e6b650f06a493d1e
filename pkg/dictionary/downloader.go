package dictionary

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxListSize bounds downloaded word lists.
const maxListSize = 20 * 1024 * 1024

// HTTPClient is used for downloads. Tests may replace it.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// EnsureWordList checks if a word list exists at path. If not, it downloads
// it from url. URLs ending in .gz are decompressed. The file is written to a
// temporary name first so a failed download leaves nothing behind.
func EnsureWordList(ctx context.Context, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if url == "" {
		return fmt.Errorf("word list %s is missing and no download URL is configured", path)
	}
	return download(ctx, url, path)
}

func download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "semnet-cli")

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}
	if resp.ContentLength > maxListSize {
		return fmt.Errorf("word list of %d bytes exceeds limit of %d bytes", resp.ContentLength, maxListSize)
	}

	var body io.Reader = io.LimitReader(resp.Body, maxListSize+1)
	if strings.HasSuffix(strings.ToLower(url), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		body = io.LimitReader(gz, maxListSize+1)
	}

	if dir := filepath.Dir(destPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".wordlist-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	if n > maxListSize {
		return fmt.Errorf("word list exceeds limit of %d bytes", maxListSize)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("failed to move word list into place: %w", err)
	}
	return nil
}
