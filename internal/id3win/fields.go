// Package id3win reads and edits the text frames stored in the first
// 128 bytes of an audio file.
//
// The window is a simplified ID3v2 layout: a 10-byte header starting with
// "ID3", followed by frames made of a 4-byte identifier, a 4-byte big-endian
// content size, the content itself and 2 trailing gap bytes. Only the frames listed
// in the field table are interpreted; anything else is skipped untouched.
// Tags that extend past the window are not supported.
package id3win

import "strings"

// Field is the semantic name of a recognized text frame.
type Field string

// Recognized fields.
const (
	Title       Field = "Title"
	Artist      Field = "Artist"
	ReleaseDate Field = "Release Date"
	TrackNumber Field = "Track Number"
	Album       Field = "Album"
)

// Fields maps recognized fields to their cleaned text values.
type Fields map[Field]string

type tableEntry struct {
	id    [4]byte
	field Field
}

// fieldTable is shared by the reader and the writer.
var fieldTable = [...]tableEntry{
	{[4]byte{'T', 'I', 'T', '2'}, Title},
	{[4]byte{'T', 'P', 'E', '1'}, Artist},
	{[4]byte{'T', 'Y', 'E', 'R'}, ReleaseDate},
	{[4]byte{'T', 'R', 'C', 'K'}, TrackNumber},
	{[4]byte{'T', 'A', 'L', 'B'}, Album},
}

// AllFields returns the recognized fields in table order.
func AllFields() []Field {
	out := make([]Field, len(fieldTable))
	for i, e := range fieldTable {
		out[i] = e.field
	}
	return out
}

// FieldForID returns the field stored under a frame identifier.
func FieldForID(id [4]byte) (Field, bool) {
	for _, e := range fieldTable {
		if e.id == id {
			return e.field, true
		}
	}
	return "", false
}

// FrameID returns the frame identifier used to store f.
func (f Field) FrameID() ([4]byte, bool) {
	for _, e := range fieldTable {
		if e.field == f {
			return e.id, true
		}
	}
	return [4]byte{}, false
}

// Valid reports whether f is one of the recognized fields.
func (f Field) Valid() bool {
	_, ok := f.FrameID()
	return ok
}

// ParseField resolves a user supplied name to a field.
// It accepts the display name in any case, snake_case or kebab-case
// spellings ("track_number") and the raw frame identifier ("TRCK").
func ParseField(name string) (Field, bool) {
	norm := normalizeName(name)
	if norm == "" {
		return "", false
	}
	for _, e := range fieldTable {
		if normalizeName(string(e.field)) == norm || strings.EqualFold(string(e.id[:]), name) {
			return e.field, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
