package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/songvault/internal/library"
)

// Track contains info needed to export a single song.
type Track struct {
	ID       string
	SrcPath  string
	Artist   string
	Album    string
	Title    string
	TrackNum int
}

// FromSong builds a Track from a catalog entry. Songs without a title are
// exported under their stored file name.
func FromSong(s library.Song) Track {
	title := s.Title
	if title == "" {
		title = strings.TrimSuffix(s.FileName, filepath.Ext(s.FileName))
	}
	return Track{
		ID:       s.ID,
		SrcPath:  s.Path,
		Artist:   s.Artist,
		Album:    s.Album,
		Title:    title,
		TrackNum: s.TrackNumber,
	}
}

// Info returns the path generation input for t.
func (t Track) Info() TrackInfo {
	return TrackInfo{
		Artist:      t.Artist,
		Album:       t.Album,
		Title:       t.Title,
		TrackNumber: t.TrackNum,
		Extension:   strings.ToLower(filepath.Ext(t.SrcPath)),
	}
}

// TrackError records a failed export.
type TrackError struct {
	Track Track
	Err   error
}

func (e TrackError) Error() string {
	return fmt.Sprintf("%s: %v", e.Track.SrcPath, e.Err)
}

func (e TrackError) Unwrap() error {
	return e.Err
}

// Summary reports the outcome of an export.
type Summary struct {
	Copied  int
	Skipped int
	Failed  []TrackError
	Bytes   int64
}

// Total returns the number of tracks processed.
func (s Summary) Total() int {
	return s.Copied + s.Skipped + len(s.Failed)
}

func (s Summary) String() string {
	msg := fmt.Sprintf("%d copied (%s), %d skipped", s.Copied, humanize.Bytes(uint64(max(s.Bytes, 0))), s.Skipped)
	if len(s.Failed) > 0 {
		msg += fmt.Sprintf(", %d failed", len(s.Failed))
	}
	return msg
}

// job accumulates a Summary from concurrent workers.
type job struct {
	mu       sync.Mutex
	summary  Summary
	done     int
	total    int
	progress func(done, total int)
}

func (j *job) record(t Track, copied bool, n int64, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case err != nil:
		j.summary.Failed = append(j.summary.Failed, TrackError{Track: t, Err: err})
	case copied:
		j.summary.Copied++
		j.summary.Bytes += n
	default:
		j.summary.Skipped++
	}
	j.done++
	if j.progress != nil {
		j.progress(j.done, j.total)
	}
}

func (j *job) result() Summary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary
}
