package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLibrary(t *testing.T) *Library {
	t.Helper()
	lib := setupLibrary(t)
	ctx := context.Background()

	seed := []struct {
		file string
		meta Metadata
	}{
		{"floating.mp3", Metadata{Title: "Floating Point", Artist: "The Rounding Errors", Album: "Precision", Genre: "Electronic", ReleaseYear: 2019, TrackNumber: 4}},
		{"overflow.mp3", Metadata{Title: "Overflow", Artist: "The Rounding Errors", Album: "Precision", Genre: "Rock", ReleaseYear: 2019, TrackNumber: 5}},
		{"null.mp3", Metadata{Title: "Null Pointer", Artist: "Segfault", Album: "Core Dump", Genre: "Rock", ReleaseYear: 2021, TrackNumber: 1}},
		{"100%_pure.mp3", Metadata{Title: "100% Pure", Artist: "Segfault"}},
	}
	for _, s := range seed {
		_, err := lib.Add(ctx, writeSong(t, s.file, tagWindow()), s.meta)
		require.NoError(t, err)
	}
	return lib
}

func titles(songs []Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return out
}

func TestSearch(t *testing.T) {
	lib := seedLibrary(t)

	tests := []struct {
		name     string
		criteria map[Column]string
		want     []string
	}{
		{"empty criteria", nil, []string{"100% Pure", "Floating Point", "Null Pointer", "Overflow"}},
		{"case insensitive", map[Column]string{ColArtist: "rounding"}, []string{"Floating Point", "Overflow"}},
		{"and", map[Column]string{ColArtist: "ROUNDING", ColGenre: "rock"}, []string{"Overflow"}},
		{"numeric", map[Column]string{ColReleaseYear: "2019"}, []string{"Floating Point", "Overflow"}},
		{"numeric substring", map[Column]string{ColReleaseYear: "202"}, []string{"Null Pointer"}},
		{"percent is literal", map[Column]string{ColTitle: "100%"}, []string{"100% Pure"}},
		{"underscore is literal", map[Column]string{ColFileName: "_"}, []string{"100% Pure"}},
		{"unknown values never match", map[Column]string{ColAlbum: ""}, []string{"Floating Point", "Null Pointer", "Overflow"}},
		{"no match", map[Column]string{ColTitle: "nothing like this"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			songs, err := lib.Search(tt.criteria)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, songs)
				return
			}
			assert.Equal(t, tt.want, titles(songs))
		})
	}
}

func TestSearch_UnknownColumn(t *testing.T) {
	lib := seedLibrary(t)

	_, err := lib.Search(map[Column]string{Column("title = title OR 1"): "x"})
	var uce *UnknownColumnError
	assert.True(t, errors.As(err, &uce))
}

func TestFind(t *testing.T) {
	lib := seedLibrary(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"trigram title", "float", []string{"Floating Point"}},
		{"case insensitive", "SEGFAULT", []string{"100% Pure", "Null Pointer"}},
		{"words are anded", "rounding overflow", []string{"Overflow"}},
		{"album", "precision", []string{"Floating Point", "Overflow"}},
		{"file name", "pure", []string{"100% Pure"}},
		{"short word falls back to like", "ov", []string{"Overflow"}},
		{"short and long words", "nu pointer", []string{"Null Pointer"}},
		{"quotes are matched literally", `"point`, nil},
		{"no match", "zzzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			songs, err := lib.Find(tt.query)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, songs)
				return
			}
			assert.ElementsMatch(t, tt.want, titles(songs))
		})
	}
}

func TestFind_EmptyQueryListsAll(t *testing.T) {
	lib := seedLibrary(t)

	songs, err := lib.Find("   ")
	require.NoError(t, err)
	assert.Len(t, songs, 4)
}

func TestRebuildFTSIndex(t *testing.T) {
	lib := seedLibrary(t)

	_, err := lib.db.Exec(`DELETE FROM songs_fts`)
	require.NoError(t, err)

	songs, err := lib.Find("overflow")
	require.NoError(t, err)
	assert.Empty(t, songs)

	require.NoError(t, lib.EnsureFTSIndex())

	songs, err = lib.Find("overflow")
	require.NoError(t, err)
	assert.Equal(t, []string{"Overflow"}, titles(songs))

	var indexed int
	require.NoError(t, lib.db.QueryRow(`SELECT COUNT(*) FROM songs_fts`).Scan(&indexed))
	assert.Equal(t, 4, indexed)
}

func TestEscapeFTSQuery(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{nil, `""`},
		{[]string{"hello"}, `"hello"`},
		{[]string{"hello", "world"}, `"hello" "world"`},
		{[]string{`say"hi`}, `"say""hi"`},
	}
	for _, tt := range tests {
		if got := escapeFTSQuery(tt.words); got != tt.want {
			t.Errorf("escapeFTSQuery(%q) = %q, want %q", tt.words, got, tt.want)
		}
	}
}
