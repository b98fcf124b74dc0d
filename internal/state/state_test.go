package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n > 0
}

func schemaVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var v int
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	return v
}

func TestOpenMemory_CreatesSchema(t *testing.T) {
	m, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer m.Close()

	for _, name := range []string{"songs", "songs_fts", "schema_version"} {
		if !tableExists(t, m.DB(), name) {
			t.Errorf("table %s missing", name)
		}
	}
	if v := schemaVersion(t, m.DB()); v != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "songs.db")

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if m.Path() != path {
		t.Errorf("Path() = %q, want %q", m.Path(), path)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.db")

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = m.DB().Exec(`INSERT INTO songs (id, file_name, path, added_at, updated_at) VALUES ('a', 'a.mp3', '/x/a.mp3', 1, 1)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m.Close()

	var n int
	if err := m.DB().QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("songs = %d, want 1", n)
	}
	if v := schemaVersion(t, m.DB()); v != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestInitSchema_MigratesVersion1(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE schema_version (version INTEGER PRIMARY KEY);
		INSERT INTO schema_version (version) VALUES (1);
		CREATE TABLE songs (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			title TEXT, artist TEXT, album TEXT, genre TEXT,
			release_year INTEGER, track_num INTEGER,
			track_length TEXT, bitrate TEXT,
			added_at INTEGER NOT NULL, updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("seed v1 schema: %v", err)
	}

	if err := initSchema(db); err != nil {
		t.Fatalf("initSchema: %v", err)
	}

	_, err = db.Exec(`INSERT INTO songs (id, file_name, path, composer, publisher, added_at, updated_at)
		VALUES ('a', 'a.mp3', '/a.mp3', 'C', 'P', 1, 1)`)
	if err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
	if v := schemaVersion(t, db); v != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	m, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer m.Close()

	if err := initSchema(m.DB()); err != nil {
		t.Fatalf("second initSchema: %v", err)
	}
	var rows int
	if err := m.DB().QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("schema_version rows = %d, want 1", rows)
	}
}
