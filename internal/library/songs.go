package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	dbutil "github.com/llehouerou/songvault/internal/db"
	"github.com/llehouerou/songvault/internal/id3win"
	"github.com/llehouerou/songvault/internal/importer"
	"github.com/llehouerou/songvault/internal/tags"
)

// Add copies the file at src into storage and records it in the catalog.
//
// Values come from meta first, then from the stored copy's tag window, then
// from a probe of the audio file. A source whose base name is already
// cataloged returns ErrDuplicate; a missing source returns an error
// matching fs.ErrNotExist.
func (l *Library) Add(ctx context.Context, src string, meta Metadata) (*Song, error) {
	name := filepath.Base(src)
	exists, err := l.fileNameExists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", name, ErrDuplicate)
	}

	stored, err := importer.Import(ctx, src, l.storageDir)
	if err != nil {
		if errors.Is(err, importer.ErrExists) {
			return nil, fmt.Errorf("%s: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("import %s: %w", src, err)
	}

	song, err := l.catalog(ctx, stored, meta)
	if err != nil {
		if rmErr := os.Remove(stored.Path); rmErr != nil {
			l.log.Warn().Err(rmErr).Str("path", stored.Path).Msg("remove stored copy")
		}
		return nil, err
	}

	l.log.Info().
		Str("id", song.ID).
		Str("file", song.FileName).
		Str("title", song.Title).
		Msg("song added")
	return song, nil
}

func (l *Library) catalog(ctx context.Context, stored *importer.Result, meta Metadata) (*Song, error) {
	window, err := id3win.ReadFile(stored.Path)
	if err != nil {
		return nil, err
	}

	var probed tags.Info
	if info, err := l.probe(stored.Path); err != nil {
		l.log.Debug().Err(err).Str("path", stored.Path).Msg("probe failed")
	} else if info != nil {
		probed = *info
	}

	now := time.Now()
	song := mergeMetadata(meta, window, probed)
	song.ID = uuid.NewString()
	song.FileName = stored.FileName
	song.Path = stored.Path
	song.AddedAt = time.Unix(now.Unix(), 0)
	song.UpdatedAt = song.AddedAt

	err = dbutil.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO songs (`+songColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			song.ID, song.FileName, song.Path,
			dbutil.NullString(song.Title), dbutil.NullString(song.Artist),
			dbutil.NullString(song.Album), dbutil.NullString(song.Genre),
			dbutil.NullInt64(song.ReleaseYear), dbutil.NullInt64(song.TrackNumber),
			dbutil.NullString(song.Composer), dbutil.NullString(song.Publisher),
			dbutil.NullString(song.TrackLength), dbutil.NullString(song.Bitrate),
			now.Unix(), now.Unix(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s: %w", song.FileName, ErrDuplicate)
			}
			return err
		}
		return insertFTS(tx, &song)
	})
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// mergeMetadata picks each value from meta, then the tag window, then the probe.
func mergeMetadata(meta Metadata, window id3win.Fields, probed tags.Info) Song {
	return Song{
		Title:       firstNonEmpty(meta.Title, window[id3win.Title], probed.Title),
		Artist:      firstNonEmpty(meta.Artist, window[id3win.Artist], probed.Artist),
		Album:       firstNonEmpty(meta.Album, window[id3win.Album], probed.Album),
		Genre:       firstNonEmpty(meta.Genre, probed.Genre),
		ReleaseYear: firstNonZero(meta.ReleaseYear, leadingInt(window[id3win.ReleaseDate]), probed.Year),
		TrackNumber: firstNonZero(meta.TrackNumber, leadingInt(window[id3win.TrackNumber]), probed.TrackNumber),
		Composer:    firstNonEmpty(meta.Composer, probed.Composer),
		Publisher:   firstNonEmpty(meta.Publisher, probed.Publisher),
		TrackLength: firstNonEmpty(meta.TrackLength, probed.LengthString()),
		Bitrate:     firstNonEmpty(meta.Bitrate, probed.BitrateString()),
	}
}

// Delete removes a song from the catalog, and its stored file when removeFile is set.
//
// The file is removed before the catalog change commits. If the removal
// fails the row is kept, so the catalog never loses track of a stored file.
func (l *Library) Delete(id string, removeFile bool) error {
	song, err := l.Get(id)
	if err != nil {
		return err
	}

	err = dbutil.WithTx(context.Background(), l.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM songs WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		if err := deleteFTS(tx, id); err != nil {
			return err
		}
		if !removeFile {
			return nil
		}
		return l.removeStored(song.Path)
	})
	if err != nil {
		return err
	}

	l.log.Info().Str("id", id).Str("file", song.FileName).Bool("file_removed", removeFile).Msg("song deleted")
	return nil
}

// removeStored deletes a stored file. A file that is already gone is fine.
func (l *Library) removeStored(path string) error {
	unlock := l.locks.lock(path)
	defer unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Get returns the song with the given id.
func (l *Library) Get(id string) (*Song, error) {
	row := l.db.QueryRow(`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	s, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s, err
}

// List returns every song ordered by title, then file name.
func (l *Library) List() ([]Song, error) {
	rows, err := l.db.Query(`
		SELECT ` + songColumns + `
		FROM songs
		ORDER BY title IS NULL, title COLLATE NOCASE, file_name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	return scanSongs(rows)
}

// Count returns the number of songs.
func (l *Library) Count() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

// ReadTag re-reads the tag window of the song's stored file.
func (l *Library) ReadTag(id string) (id3win.Fields, error) {
	song, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	unlock := l.locks.lock(song.Path)
	defer unlock()
	return id3win.ReadFile(song.Path)
}

func (l *Library) fileNameExists(name string) (bool, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM songs WHERE file_name = ?`, name).Scan(&n)
	return n > 0, err
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// leadingInt parses the leading digits of s, as in "2019-05-01" or "4/11".
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
