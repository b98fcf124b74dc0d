// Package tags probes audio files for the descriptive metadata and stream
// properties stored alongside each song in the library.
package tags

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtWAV  = ".wav"
)

// ErrUnsupportedFormat is returned by Probe for files it cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Info is what Probe learns about a file. Zero values mean unknown.
type Info struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
	Composer    string
	Publisher   string

	Length  time.Duration
	Bitrate int // kbit/s
}

// LengthString returns the length formatted by FormatLength, or "" if unknown.
func (i *Info) LengthString() string {
	if i.Length <= 0 {
		return ""
	}
	return FormatLength(i.Length)
}

// BitrateString returns the bitrate formatted by FormatBitrate, or "" if unknown.
func (i *Info) BitrateString() string {
	return FormatBitrate(i.Bitrate)
}

// IsAudioFile returns true if the path has a supported audio file extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtM4A, ExtMP4, ExtWAV:
		return true
	}
	return false
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// parseTrackNumber parses a track number string like "5" or "5/10".
func parseTrackNumber(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return num, total
}

// yearFromDate extracts the year of a "YYYY", "YYYY-MM-DD" or similar date.
// Returns 0 if no leading year can be parsed.
func yearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if idx := strings.IndexAny(date, "-/ T"); idx >= 0 {
		date = date[:idx]
	}
	y, err := strconv.Atoi(date)
	if err != nil || y < 0 {
		return 0
	}
	return y
}
