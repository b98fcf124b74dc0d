package library

import (
	"database/sql"
	"path/filepath"
	"strings"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// searchText is the text indexed for full-text search.
func searchText(s *Song) string {
	parts := []string{s.Title, s.Artist, s.Album, strings.TrimSuffix(s.FileName, filepath.Ext(s.FileName))}
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

func insertFTS(db execer, s *Song) error {
	_, err := db.Exec(`INSERT INTO songs_fts (search_text, song_id) VALUES (?, ?)`, searchText(s), s.ID)
	return err
}

func deleteFTS(db execer, id string) error {
	_, err := db.Exec(`DELETE FROM songs_fts WHERE song_id = ?`, id)
	return err
}

// EnsureFTSIndex rebuilds the FTS index only if it's out of step with songs.
// Call this on startup to populate the index for existing databases.
func (l *Library) EnsureFTSIndex() error {
	var songs, indexed int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&songs); err != nil {
		return err
	}
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM songs_fts`).Scan(&indexed); err != nil {
		return err
	}
	if songs != indexed {
		return l.RebuildFTSIndex()
	}
	return nil
}

// RebuildFTSIndex rebuilds the full-text search index from songs.
func (l *Library) RebuildFTSIndex() error {
	songs, err := l.List()
	if err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(`DELETE FROM songs_fts`); err != nil {
		return err
	}
	for i := range songs {
		if err := insertFTS(tx, &songs[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	l.log.Debug().Int("songs", len(songs)).Msg("search index rebuilt")
	return nil
}

// escapeFTSQuery escapes a query string for FTS5 trigram search.
// Each word is wrapped in quotes for substring matching, with implicit AND between words.
func escapeFTSQuery(words []string) string {
	if len(words) == 0 {
		return `""`
	}

	quoted := make([]string, len(words))
	for i, word := range words {
		escaped := strings.ReplaceAll(word, `"`, `""`)
		quoted[i] = `"` + escaped + `"`
	}

	return strings.Join(quoted, " ")
}
