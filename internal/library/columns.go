package library

import (
	"strings"

	"github.com/llehouerou/songvault/internal/id3win"
)

// Column names a descriptive attribute of a song. Its value is the SQL
// column name; only the values declared here are ever interpolated into
// queries.
type Column string

const (
	ColFileName    Column = "file_name"
	ColTitle       Column = "title"
	ColArtist      Column = "artist"
	ColAlbum       Column = "album"
	ColGenre       Column = "genre"
	ColReleaseYear Column = "release_year"
	ColTrackNumber Column = "track_num"
	ColComposer    Column = "composer"
	ColPublisher   Column = "publisher"
	ColTrackLength Column = "track_length"
	ColBitrate     Column = "bitrate"
)

type columnInfo struct {
	col     Column
	display string
	numeric bool
	// tag is the tag window field mirrored by this column, if any.
	tag id3win.Field
}

var columnTable = []columnInfo{
	{col: ColFileName, display: "File Name"},
	{col: ColTitle, display: "Title", tag: id3win.Title},
	{col: ColArtist, display: "Artist", tag: id3win.Artist},
	{col: ColAlbum, display: "Album", tag: id3win.Album},
	{col: ColGenre, display: "Genre"},
	{col: ColReleaseYear, display: "Release Year", numeric: true, tag: id3win.ReleaseDate},
	{col: ColTrackNumber, display: "Track Number", numeric: true, tag: id3win.TrackNumber},
	{col: ColComposer, display: "Composer"},
	{col: ColPublisher, display: "Publisher"},
	{col: ColTrackLength, display: "Track Length"},
	{col: ColBitrate, display: "Bitrate"},
}

// columnAliases are extra accepted spellings, normalized like ParseColumn input.
var columnAliases = map[string]Column{
	"filename":     ColFileName,
	"file":         ColFileName,
	"year":         ColReleaseYear,
	"release date": ColReleaseYear,
	"track":        ColTrackNumber,
	"track num":    ColTrackNumber,
	"length":       ColTrackLength,
}

// Columns returns every column in display order.
func Columns() []Column {
	cols := make([]Column, len(columnTable))
	for i, c := range columnTable {
		cols[i] = c.col
	}
	return cols
}

// DescriptiveColumns returns the columns a user can set, in display order.
func DescriptiveColumns() []Column {
	return Columns()[1:]
}

func (c Column) info() (columnInfo, bool) {
	for _, ci := range columnTable {
		if ci.col == c {
			return ci, true
		}
	}
	return columnInfo{}, false
}

// Valid reports whether c is a known column.
func (c Column) Valid() bool {
	_, ok := c.info()
	return ok
}

// DisplayName returns the human readable name, e.g. "Release Year".
func (c Column) DisplayName() string {
	if ci, ok := c.info(); ok {
		return ci.display
	}
	return string(c)
}

// Numeric reports whether the column stores an integer.
func (c Column) Numeric() bool {
	ci, _ := c.info()
	return ci.numeric
}

// TagField returns the tag window field mirrored by c.
func (c Column) TagField() (id3win.Field, bool) {
	ci, ok := c.info()
	if !ok || ci.tag == "" {
		return "", false
	}
	return ci.tag, true
}

// ParseColumn resolves a column from its SQL name or display name.
// Matching ignores case, and underscores, dashes and repeated spaces are
// treated as single spaces.
func ParseColumn(name string) (Column, error) {
	norm := normalizeName(name)
	for _, ci := range columnTable {
		if norm == normalizeName(string(ci.col)) || norm == normalizeName(ci.display) {
			return ci.col, nil
		}
	}
	if c, ok := columnAliases[norm]; ok {
		return c, nil
	}
	return "", &UnknownColumnError{Name: name}
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
