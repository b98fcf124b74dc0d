// Package library manages the song catalog: stored audio files, their
// descriptive metadata in sqlite, and the tag window kept in sync with it.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	dbutil "github.com/llehouerou/songvault/internal/db"
	"github.com/llehouerou/songvault/internal/tags"
)

// Unknown is displayed in place of missing values.
const Unknown = "Unknown"

var (
	ErrNotFound  = errors.New("song not found")
	ErrDuplicate = errors.New("song with this file name already exists")
	// ErrImmutableColumn is returned when an edit targets the file name.
	ErrImmutableColumn = errors.New("column cannot be modified")
)

// UnknownColumnError reports a column name that is not part of the catalog.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

// InvalidValueError reports a value that does not fit its column.
type InvalidValueError struct {
	Column Column
	Value  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: must be a non-negative integer", e.Value, e.Column.DisplayName())
}

// Song is one catalog entry. Empty strings and zero numbers mean unknown.
type Song struct {
	ID          string
	FileName    string
	Path        string
	Title       string
	Artist      string
	Album       string
	Genre       string
	ReleaseYear int
	TrackNumber int
	Composer    string
	Publisher   string
	TrackLength string
	Bitrate     string
	AddedAt     time.Time
	UpdatedAt   time.Time
}

// Value returns the raw value of column c, "" when unknown.
func (s *Song) Value(c Column) string {
	switch c {
	case ColFileName:
		return s.FileName
	case ColTitle:
		return s.Title
	case ColArtist:
		return s.Artist
	case ColAlbum:
		return s.Album
	case ColGenre:
		return s.Genre
	case ColReleaseYear:
		return itoaKnown(s.ReleaseYear)
	case ColTrackNumber:
		return itoaKnown(s.TrackNumber)
	case ColComposer:
		return s.Composer
	case ColPublisher:
		return s.Publisher
	case ColTrackLength:
		return s.TrackLength
	case ColBitrate:
		return s.Bitrate
	}
	return ""
}

// Display returns the value of column c, or Unknown.
func (s *Song) Display(c Column) string {
	if v := s.Value(c); v != "" {
		return v
	}
	return Unknown
}

// Metadata holds the descriptive values supplied when adding a song.
// Zero values are filled from the file.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	ReleaseYear int
	TrackNumber int
	Composer    string
	Publisher   string
	TrackLength string
	Bitrate     string
}

// MetadataFromValues builds Metadata from column values as typed by a user.
func MetadataFromValues(values map[Column]string) (Metadata, error) {
	var m Metadata
	for c, v := range values {
		if !c.Valid() {
			return Metadata{}, &UnknownColumnError{Name: string(c)}
		}
		if c == ColFileName {
			return Metadata{}, fmt.Errorf("%s: %w", c.DisplayName(), ErrImmutableColumn)
		}
		if c.Numeric() {
			n, err := parseNumeric(c, v)
			if err != nil {
				return Metadata{}, err
			}
			setNumeric(&m, c, n)
			continue
		}
		setText(&m, c, v)
	}
	return m, nil
}

func setNumeric(m *Metadata, c Column, n int) {
	switch c {
	case ColReleaseYear:
		m.ReleaseYear = n
	case ColTrackNumber:
		m.TrackNumber = n
	}
}

func setText(m *Metadata, c Column, v string) {
	switch c {
	case ColTitle:
		m.Title = v
	case ColArtist:
		m.Artist = v
	case ColAlbum:
		m.Album = v
	case ColGenre:
		m.Genre = v
	case ColComposer:
		m.Composer = v
	case ColPublisher:
		m.Publisher = v
	case ColTrackLength:
		m.TrackLength = v
	case ColBitrate:
		m.Bitrate = v
	}
}

// Prober extracts metadata from an audio file.
type Prober func(path string) (*tags.Info, error)

type Library struct {
	db         *sql.DB
	storageDir string
	log        zerolog.Logger
	probe      Prober
	locks      pathLocks
}

// Option configures a Library.
type Option func(*Library)

// WithProber replaces tags.Probe.
func WithProber(p Prober) Option {
	return func(l *Library) { l.probe = p }
}

// New returns a Library storing files under storageDir.
func New(db *sql.DB, storageDir string, log zerolog.Logger, opts ...Option) *Library {
	l := &Library{
		db:         db,
		storageDir: storageDir,
		log:        log.With().Str("component", "library").Logger(),
		probe:      tags.Probe,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// StorageDir returns the directory holding stored song files.
func (l *Library) StorageDir() string {
	return l.storageDir
}

const songColumns = `id, file_name, path, title, artist, album, genre, release_year, track_num,
	composer, publisher, track_length, bitrate, added_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (*Song, error) {
	var (
		s                                        Song
		title, artist, album, genre              sql.NullString
		composer, publisher, trackLength, bitrate sql.NullString
		year, trackNum                           sql.NullInt64
		addedAt, updatedAt                       int64
	)
	err := row.Scan(&s.ID, &s.FileName, &s.Path, &title, &artist, &album, &genre, &year, &trackNum,
		&composer, &publisher, &trackLength, &bitrate, &addedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	s.Title = dbutil.NullStringValue(title)
	s.Artist = dbutil.NullStringValue(artist)
	s.Album = dbutil.NullStringValue(album)
	s.Genre = dbutil.NullStringValue(genre)
	s.ReleaseYear = int(dbutil.NullInt64Value(year))
	s.TrackNumber = int(dbutil.NullInt64Value(trackNum))
	s.Composer = dbutil.NullStringValue(composer)
	s.Publisher = dbutil.NullStringValue(publisher)
	s.TrackLength = dbutil.NullStringValue(trackLength)
	s.Bitrate = dbutil.NullStringValue(bitrate)
	s.AddedAt = time.Unix(addedAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

func scanSongs(rows *sql.Rows) ([]Song, error) {
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *s)
	}
	return songs, rows.Err()
}

func parseNumeric(c Column, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &InvalidValueError{Column: c, Value: v}
	}
	return n, nil
}

func itoaKnown(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
