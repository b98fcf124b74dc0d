// Package export copies stored songs to a destination folder such as a
// mounted music player.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of files copied in parallel.
const DefaultWorkers = 4

// MaxWorkers caps the configured parallelism.
const MaxWorkers = 16

// Exporter copies songs into a folder layout.
type Exporter struct {
	structure FolderStructure
	workers   int
	log       zerolog.Logger
	progress  func(done, total int)
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithWorkers sets the copy parallelism, clamped to [1, MaxWorkers].
func WithWorkers(n int) Option {
	return func(e *Exporter) { e.workers = min(max(n, 1), MaxWorkers) }
}

// WithProgress registers a callback invoked after each track.
// Calls are serialised.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Exporter) { e.progress = fn }
}

// NewExporter creates a new Exporter.
func NewExporter(structure FolderStructure, log zerolog.Logger, opts ...Option) *Exporter {
	e := &Exporter{
		structure: structure,
		workers:   DefaultWorkers,
		log:       log.With().Str("component", "export").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export copies every track below dest. Files already present at the
// destination are skipped. A failing track does not stop the others; its
// error is listed in Summary.Failed. The returned error is only set when
// ctx is canceled.
func (e *Exporter) Export(ctx context.Context, tracks []Track, dest string) (Summary, error) {
	j := &job{total: len(tracks), progress: e.progress}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, t := range tracks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dst := filepath.Join(dest, GenerateExportPath(t.Info(), e.structure))
			copied, n, err := e.CopyFile(t.SrcPath, dst)
			if err != nil {
				e.log.Warn().Err(err).Str("src", t.SrcPath).Msg("export failed")
			} else if copied {
				e.log.Debug().Str("src", t.SrcPath).Str("dst", dst).Msg("exported")
			}
			j.record(t, copied, n, err)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	summary := j.result()
	e.log.Info().
		Int("copied", summary.Copied).
		Int("skipped", summary.Skipped).
		Int("failed", len(summary.Failed)).
		Int64("bytes", summary.Bytes).
		Msg("export finished")
	return summary, err
}

// CopyFile copies a file from src to dst, creating parent directories.
// It reports copied=false without error when dst already exists.
func (e *Exporter) CopyFile(src, dst string) (copied bool, n int64, err error) {
	if _, err := os.Stat(dst); err == nil {
		return false, 0, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, 0, fmt.Errorf("stat destination: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, 0, fmt.Errorf("create directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return false, 0, fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("create destination: %w", err)
	}

	n, err = io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		os.Remove(dst)
		return false, 0, fmt.Errorf("copy: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return false, 0, fmt.Errorf("close destination: %w", err)
	}
	return true, n, nil
}
