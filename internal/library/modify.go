package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	dbutil "github.com/llehouerou/songvault/internal/db"
	"github.com/llehouerou/songvault/internal/id3win"
)

// TagWrite records the outcome of mirroring one edited column into the
// stored file's tag window.
type TagWrite struct {
	Column  Column
	Field   id3win.Field
	Written bool
	// Reason explains why Written is false: an id3win refusal such as
	// id3win.ErrFrameNotFound, or the I/O error.
	Reason error
}

// ModifyResult is the state of a song after Modify.
type ModifyResult struct {
	Song      *Song
	TagWrites []TagWrite
}

// Written returns the tag fields that reached the file.
func (r *ModifyResult) Written() []id3win.Field {
	var fields []id3win.Field
	for _, w := range r.TagWrites {
		if w.Written {
			fields = append(fields, w.Field)
		}
	}
	return fields
}

// Modify updates the given columns of a song.
//
// The catalog row and search index are updated in one transaction. Each
// edited column that mirrors a tag field is then written into the stored
// file. A refused tag write (no tag, no matching frame, no room) is not an
// error; it shows up in TagWrites. File I/O failures are returned together
// with the result, since the catalog update has already been committed.
func (l *Library) Modify(id string, updates map[Column]string) (*ModifyResult, error) {
	values, err := validateUpdates(updates)
	if err != nil {
		return nil, err
	}

	song, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return &ModifyResult{Song: song}, nil
	}

	updated := *song
	for _, u := range values {
		applyUpdate(&updated, u)
	}
	updated.UpdatedAt = time.Unix(time.Now().Unix(), 0)

	err = dbutil.WithTx(context.Background(), l.db, func(tx *sql.Tx) error {
		if err := updateRow(tx, id, values, updated.UpdatedAt); err != nil {
			return err
		}
		if err := deleteFTS(tx, id); err != nil {
			return err
		}
		return insertFTS(tx, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", id, err)
	}

	res := &ModifyResult{Song: &updated}
	var ioErrs []error
	for _, u := range values {
		field, ok := u.col.TagField()
		if !ok {
			continue
		}
		w := l.writeTag(updated.Path, u.col, field, u.tagValue())
		if w.Reason != nil && errors.Is(w.Reason, id3win.ErrIO) {
			ioErrs = append(ioErrs, w.Reason)
		}
		res.TagWrites = append(res.TagWrites, w)
	}

	l.log.Info().
		Str("id", id).
		Int("columns", len(values)).
		Int("tag_fields_written", len(res.Written())).
		Msg("song modified")
	return res, errors.Join(ioErrs...)
}

func (l *Library) writeTag(path string, col Column, field id3win.Field, value string) TagWrite {
	unlock := l.locks.lock(path)
	defer unlock()

	w := TagWrite{Column: col, Field: field}
	res, err := id3win.WriteFieldResult(path, field, value)
	switch {
	case err != nil:
		w.Reason = err
		l.log.Error().Err(err).Str("path", path).Str("field", string(field)).Msg("tag write failed")
	case !res.Written:
		w.Reason = res.Reason
		l.log.Warn().
			Str("path", path).
			Str("field", string(field)).
			AnErr("reason", res.Reason).
			Msg("tag field not changed")
	default:
		w.Written = true
		l.log.Debug().
			Str("path", path).
			Str("field", string(field)).
			Uint32("old_size", res.OldSize).
			Uint32("new_size", res.NewSize).
			Msg("tag field written")
	}
	return w
}

type columnUpdate struct {
	col Column
	raw string // trimmed user value, "" clears
	num int
}

// tagValue is the text written to the tag. Numeric columns write the value
// as stored in the catalog, so "007" becomes "7" and 0 clears.
func (u columnUpdate) tagValue() string {
	if u.col.Numeric() {
		return itoaKnown(u.num)
	}
	return u.raw
}

// validateUpdates checks every column and value before anything is written.
// The result is in column display order so that SQL and tag writes are
// deterministic.
func validateUpdates(updates map[Column]string) ([]columnUpdate, error) {
	for c := range updates {
		if !c.Valid() {
			return nil, &UnknownColumnError{Name: string(c)}
		}
		if c == ColFileName {
			return nil, fmt.Errorf("%s: %w", c.DisplayName(), ErrImmutableColumn)
		}
	}

	var values []columnUpdate
	for _, c := range Columns() {
		v, ok := updates[c]
		if !ok {
			continue
		}
		u := columnUpdate{col: c, raw: strings.TrimSpace(v)}
		if c.Numeric() {
			n, err := parseNumeric(c, u.raw)
			if err != nil {
				return nil, err
			}
			u.num = n
		}
		values = append(values, u)
	}
	return values, nil
}

func updateRow(tx *sql.Tx, id string, values []columnUpdate, at time.Time) error {
	sets := make([]string, 0, len(values)+1)
	args := make([]any, 0, len(values)+2)
	for _, u := range values {
		sets = append(sets, string(u.col)+" = ?")
		if u.col.Numeric() {
			args = append(args, dbutil.NullInt64(u.num))
		} else {
			args = append(args, dbutil.NullString(u.raw))
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, at.Unix(), id)

	res, err := tx.Exec(`UPDATE songs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func applyUpdate(s *Song, u columnUpdate) {
	switch u.col {
	case ColTitle:
		s.Title = u.raw
	case ColArtist:
		s.Artist = u.raw
	case ColAlbum:
		s.Album = u.raw
	case ColGenre:
		s.Genre = u.raw
	case ColReleaseYear:
		s.ReleaseYear = u.num
	case ColTrackNumber:
		s.TrackNumber = u.num
	case ColComposer:
		s.Composer = u.raw
	case ColPublisher:
		s.Publisher = u.raw
	case ColTrackLength:
		s.TrackLength = u.raw
	case ColBitrate:
		s.Bitrate = u.raw
	}
}
