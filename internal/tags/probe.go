package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Probe reads descriptive tags and stream properties of an audio file.
//
// Missing or unreadable tags are not an error; the corresponding Info
// fields are left empty. Errors are returned for unsupported extensions
// and files that cannot be opened.
func Probe(path string) (*Info, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsAudioFile(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &Info{}
	if m, err := tag.ReadFrom(f); err == nil {
		fillFromMetadata(info, m)
	} else {
		// dhowden/tag fails on some UTF-16 ID3 tags and some ffmpeg output
		readTaglibTags(path, info)
	}

	if ext == ExtMP3 {
		readMP3Frames(path, info)
	}
	readProperties(path, ext, info)

	return info, nil
}

func fillFromMetadata(info *Info, m tag.Metadata) {
	info.Title = strings.TrimSpace(m.Title())
	info.Artist = strings.TrimSpace(m.Artist())
	info.Album = strings.TrimSpace(m.Album())
	info.Genre = strings.TrimSpace(m.Genre())
	info.Composer = strings.TrimSpace(m.Composer())
	info.Year = m.Year()
	info.TrackNumber, _ = m.Track()
}

// readTaglibTags fills empty fields from TagLib's property map.
func readTaglibTags(path string, info *Info) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return
	}
	tags := taglibTags(raw)

	setIfEmpty(&info.Title, tags.get(taglib.Title))
	setIfEmpty(&info.Artist, tags.get(taglib.Artist))
	setIfEmpty(&info.Album, tags.get(taglib.Album))
	setIfEmpty(&info.Genre, tags.get(taglib.Genre))
	setIfEmpty(&info.Composer, tags.get(taglib.Composer))
	setIfEmpty(&info.Publisher, tags.get(taglib.Label, "PUBLISHER", "ORGANIZATION"))
	if info.Year == 0 {
		info.Year = yearFromDate(tags.get(taglib.Date, "YEAR"))
	}
	if info.TrackNumber == 0 {
		info.TrackNumber, _ = parseTrackNumber(tags.get(taglib.TrackNumber))
	}
}

// readProperties sets Length and Bitrate, preferring TagLib and falling
// back to a container-specific duration read.
func readProperties(path, ext string, info *Info) {
	if props, err := taglib.ReadProperties(path); err == nil {
		info.Length = props.Length
		info.Bitrate = int(props.Bitrate)
	}

	if info.Length <= 0 {
		if d, err := readDuration(path, ext); err == nil {
			info.Length = d
		}
	}

	if info.Bitrate == 0 && info.Length > 0 {
		if fi, err := os.Stat(path); err == nil {
			info.Bitrate = int(float64(fi.Size()) * 8 / info.Length.Seconds() / 1000)
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}
