// Package importer copies audio files into the song storage directory.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Retry configuration
const (
	maxRetries       = 3
	initialBackoff   = 500 * time.Millisecond
	maxBackoff       = 5 * time.Second
	operationTimeout = 30 * time.Second
)

// partialSuffix marks a copy in progress; it is renamed into place once complete.
const partialSuffix = ".part"

var (
	// ErrExists is returned when storage already holds a file with the same name.
	ErrExists = errors.New("file already in storage")
	// ErrNotRegular is returned when the source is a directory or a device.
	ErrNotRegular = errors.New("not a regular file")
)

// Result describes a file copied into storage.
type Result struct {
	Path     string // absolute path of the stored copy
	FileName string
	Size     int64
}

// Import copies src into storageDir under its base name.
// The source is left untouched. Missing sources return an error matching
// fs.ErrNotExist; an existing file of the same name returns ErrExists.
func Import(ctx context.Context, src, storageDir string) (*Result, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", src, ErrNotRegular)
	}

	dir, err := filepath.Abs(storageDir)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(src)
	dst := filepath.Join(dir, name)

	if _, err := os.Stat(dst); err == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat destination: %w", err)
	}

	err = retryWithBackoff(ctx, "create directory", func() error {
		return os.MkdirAll(dir, 0o755)
	})
	if err != nil {
		return nil, err
	}

	err = retryWithBackoff(ctx, "copy file", func() error {
		return copyFile(src, dst)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Path: dst, FileName: name, Size: info.Size()}, nil
}

// copyFile copies src to dst through a temporary sibling file so that dst
// never holds a partial copy.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	tmp := dst + partialSuffix
	dstFile, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp) //nolint:errcheck // no-op once renamed
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, dst)
}

// retryWithBackoff executes an operation with exponential backoff retry.
// Returns the last error if all retries fail.
func retryWithBackoff(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: cancelled after %d attempts: %w", operation, attempt, lastErr)
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		done := make(chan error, 1)
		go func() {
			done <- fn()
		}()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: cancelled: %w", operation, ctx.Err())
		case err := <-done:
			if err == nil {
				return nil
			}
			lastErr = err
			if !isRetryableError(err) {
				return fmt.Errorf("%s: %w", operation, err)
			}
		case <-time.After(operationTimeout):
			lastErr = fmt.Errorf("timeout after %v", operationTimeout)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", operation, maxRetries+1, lastErr)
}

// isRetryableError checks if an error is likely temporary and worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist) {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, hint := range retryHints {
		if strings.Contains(errStr, hint) {
			return true
		}
	}
	return false
}

// retryHints are substrings of errors caused by file locks, sync clients
// and network mounts.
var retryHints = []string{
	"locked",
	"in use",
	"busy",
	"timeout",
	"connection",
	"network",
	"i/o",
	"temporary",
}
