package state

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			album TEXT,
			genre TEXT,
			release_year INTEGER,
			track_num INTEGER,
			composer TEXT,
			publisher TEXT,
			track_length TEXT,
			bitrate TEXT,
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist COLLATE NOCASE);
		CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(album COLLATE NOCASE);
		CREATE INDEX IF NOT EXISTS idx_songs_added_at ON songs(added_at);

		CREATE VIRTUAL TABLE IF NOT EXISTS songs_fts USING fts5(
			search_text,
			song_id UNINDEXED,
			tokenize='trigram'
		);
	`)
	if err != nil {
		return err
	}

	var version int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return err
	}

	// Migration 1 -> 2: composer and publisher were added after the first release.
	if version == 1 {
		_, _ = db.Exec(`ALTER TABLE songs ADD COLUMN composer TEXT`)
		_, _ = db.Exec(`ALTER TABLE songs ADD COLUMN publisher TEXT`)
	}

	if version < currentSchemaVersion {
		_, err = db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
		if err != nil {
			return err
		}
		_, err = db.Exec(`DELETE FROM schema_version WHERE version < ?`, currentSchemaVersion)
	}
	return err
}
