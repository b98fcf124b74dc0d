package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/songvault/internal/id3win"
)

func addTagged(t *testing.T, lib *Library, name string, frames ...frame) *Song {
	t.Helper()
	song, err := lib.Add(context.Background(), writeSong(t, name, tagWindow(frames...)), Metadata{})
	require.NoError(t, err)
	return song
}

func TestModify_UpdatesRowAndTag(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3",
		frame{"TIT2", "Hello"},
		frame{"TYER", "1999"},
	)

	res, err := lib.Modify(song.ID, map[Column]string{
		ColTitle:       "Hi",
		ColReleaseYear: "2001",
		ColPublisher:   "Cineva",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi", res.Song.Title)
	assert.Equal(t, 2001, res.Song.ReleaseYear)
	assert.Equal(t, "Cineva", res.Song.Publisher)
	assert.ElementsMatch(t, []id3win.Field{id3win.Title, id3win.ReleaseDate}, res.Written())
	require.Len(t, res.TagWrites, 2, "publisher has no tag field")

	stored, err := lib.Get(song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", stored.Title)
	assert.Equal(t, 2001, stored.ReleaseYear)
	assert.Equal(t, "Cineva", stored.Publisher)

	fields, err := lib.ReadTag(song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", fields[id3win.Title])
	assert.Equal(t, "2001", fields[id3win.ReleaseDate])

	raw, err := os.ReadFile(song.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 'H', 'i', 0x00, 0x00}, raw[18:23])
}

func TestModify_NumericTagMatchesCatalog(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3",
		frame{"TYER", "1999"},
		frame{"TRCK", "12"},
	)

	res, err := lib.Modify(song.ID, map[Column]string{
		ColReleaseYear: "007",
		ColTrackNumber: "0",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Song.ReleaseYear)
	assert.Equal(t, Unknown, res.Song.Display(ColTrackNumber))
	assert.ElementsMatch(t, []id3win.Field{id3win.ReleaseDate, id3win.TrackNumber}, res.Written())

	fields, err := lib.ReadTag(song.ID)
	require.NoError(t, err)
	assert.Equal(t, "7", fields[id3win.ReleaseDate])
	track, present := fields[id3win.TrackNumber]
	assert.True(t, present)
	assert.Empty(t, track)
}

func TestModify_MissingFrameStillUpdatesCatalog(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3", frame{"TIT2", "Hello"})
	before, err := os.ReadFile(song.Path)
	require.NoError(t, err)

	res, err := lib.Modify(song.ID, map[Column]string{ColArtist: "Somebody"})
	require.NoError(t, err)

	require.Len(t, res.TagWrites, 1)
	w := res.TagWrites[0]
	assert.False(t, w.Written)
	assert.Equal(t, id3win.Artist, w.Field)
	assert.ErrorIs(t, w.Reason, id3win.ErrFrameNotFound)

	stored, err := lib.Get(song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Somebody", stored.Artist)

	after, err := os.ReadFile(song.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestModify_ClearValue(t *testing.T) {
	lib := setupLibrary(t)
	song, err := lib.Add(context.Background(), writeSong(t, "c.mp3", tagWindow()), Metadata{Genre: "Rock", TrackNumber: 3})
	require.NoError(t, err)

	res, err := lib.Modify(song.ID, map[Column]string{ColGenre: "  ", ColTrackNumber: ""})
	require.NoError(t, err)
	assert.Equal(t, Unknown, res.Song.Display(ColGenre))
	assert.Equal(t, Unknown, res.Song.Display(ColTrackNumber))

	var genreNull, trackNull bool
	err = lib.db.QueryRow(`SELECT genre IS NULL, track_num IS NULL FROM songs WHERE id = ?`, song.ID).Scan(&genreNull, &trackNull)
	require.NoError(t, err)
	assert.True(t, genreNull)
	assert.True(t, trackNull)
}

func TestModify_ValidationIsAllOrNothing(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3", frame{"TIT2", "Hello"})

	tests := []struct {
		name    string
		updates map[Column]string
		check   func(error) bool
	}{
		{"bad number", map[Column]string{ColTitle: "Changed", ColTrackNumber: "four"}, func(err error) bool {
			var ive *InvalidValueError
			return errors.As(err, &ive) && ive.Column == ColTrackNumber
		}},
		{"negative", map[Column]string{ColReleaseYear: "-1"}, func(err error) bool {
			var ive *InvalidValueError
			return errors.As(err, &ive)
		}},
		{"file name", map[Column]string{ColTitle: "Changed", ColFileName: "x.mp3"}, func(err error) bool {
			return errors.Is(err, ErrImmutableColumn)
		}},
		{"unknown column", map[Column]string{Column("mood"): "happy"}, func(err error) bool {
			var uce *UnknownColumnError
			return errors.As(err, &uce)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lib.Modify(song.ID, tt.updates)
			assert.True(t, tt.check(err), "unexpected error %v", err)

			stored, err := lib.Get(song.ID)
			require.NoError(t, err)
			assert.Equal(t, "Hello", stored.Title)

			fields, err := lib.ReadTag(song.ID)
			require.NoError(t, err)
			assert.Equal(t, "Hello", fields[id3win.Title])
		})
	}
}

func TestModify_NotFound(t *testing.T) {
	lib := setupLibrary(t)
	_, err := lib.Modify("missing", map[Column]string{ColTitle: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModify_NoUpdates(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3", frame{"TIT2", "Hello"})

	res, err := lib.Modify(song.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, song.Title, res.Song.Title)
	assert.Empty(t, res.TagWrites)
}

func TestModify_RefreshesSearchIndex(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3", frame{"TIT2", "Hello"})

	_, err := lib.Modify(song.ID, map[Column]string{ColTitle: "Goodbye"})
	require.NoError(t, err)

	found, err := lib.Find("goodbye")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, song.ID, found[0].ID)

	found, err = lib.Find("hello")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestModify_StoredFileMissing(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3", frame{"TIT2", "Hello"})
	require.NoError(t, os.Remove(song.Path))

	res, err := lib.Modify(song.ID, map[Column]string{ColTitle: "Hi", ColGenre: "Pop"})
	assert.ErrorIs(t, err, id3win.ErrIO)
	require.NotNil(t, res)
	assert.Empty(t, res.Written())

	stored, getErr := lib.Get(song.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "Hi", stored.Title, "catalog update is kept")
}

func TestModify_ConcurrentEditsOfSameFile(t *testing.T) {
	lib := setupLibrary(t)
	song := addTagged(t, lib, "song.mp3",
		frame{"TIT2", "0000000000"},
		frame{"TPE1", "0000000000"},
	)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := fmt.Sprintf("value-%d", i)
			_, err := lib.Modify(song.ID, map[Column]string{ColTitle: v, ColArtist: v})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	fields, err := lib.ReadTag(song.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^value-\d$`, fields[id3win.Title])
	assert.Regexp(t, `^value-\d$`, fields[id3win.Artist])
}
