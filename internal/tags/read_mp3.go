package tags

import (
	"strings"

	"github.com/bogem/id3v2/v2"
)

// readMP3Frames fills the fields dhowden/tag does not expose (publisher)
// and those it sometimes misses on ID3v2.3 files.
func readMP3Frames(path string, info *Info) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return
	}
	defer id3tag.Close()

	setIfEmpty(&info.Publisher, getID3TextFrame(id3tag, "TPUB"))
	setIfEmpty(&info.Composer, getID3TextFrame(id3tag, "TCOM"))
	setIfEmpty(&info.Title, id3tag.Title())
	setIfEmpty(&info.Artist, id3tag.Artist())
	setIfEmpty(&info.Album, id3tag.Album())
	setIfEmpty(&info.Genre, id3tag.Genre())

	if info.Year == 0 {
		// ID3v2.4 recording date first, then the ID3v2.3 year frame
		date := getID3TextFrame(id3tag, "TDRC")
		if date == "" {
			date = getID3TextFrame(id3tag, "TYER")
		}
		info.Year = yearFromDate(date)
	}
	if info.TrackNumber == 0 {
		info.TrackNumber, _ = parseTrackNumber(getID3TextFrame(id3tag, "TRCK"))
	}
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return strings.TrimRight(tf.Text, "\x00")
	}
	return ""
}
