package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT, rating INTEGER)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_Commits(t *testing.T) {
	db := setupTestDB(t)

	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		for _, body := range []string{"first", "second"} {
			if _, err := tx.Exec(`INSERT INTO notes (body) VALUES (?)`, body); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if got := countRows(t, db); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO notes (body) VALUES (?)`, "lost"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if got := countRows(t, db); got != 0 {
		t.Errorf("count = %d, want 0 (rolled back)", got)
	}
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, db, func(*sql.Tx) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if called {
		t.Error("fn should not run when the transaction cannot start")
	}
}

func TestNullHelpers_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		body      string
		rating    int
		wantBody  bool
		wantScore bool
	}{
		{"", 0, false, false},
		{"text", 0, true, false},
		{"", 5, false, true},
		{"both", -3, true, true},
	}
	for _, tt := range tests {
		res, err := db.Exec(`INSERT INTO notes (body, rating) VALUES (?, ?)`,
			NullString(tt.body), NullInt64(tt.rating))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id, _ := res.LastInsertId()

		var (
			body   sql.NullString
			rating sql.NullInt64
		)
		if err := db.QueryRow(`SELECT body, rating FROM notes WHERE id = ?`, id).Scan(&body, &rating); err != nil {
			t.Fatalf("select: %v", err)
		}
		if body.Valid != tt.wantBody {
			t.Errorf("body %q valid = %v, want %v", tt.body, body.Valid, tt.wantBody)
		}
		if rating.Valid != tt.wantScore {
			t.Errorf("rating %d valid = %v, want %v", tt.rating, rating.Valid, tt.wantScore)
		}
		if NullStringValue(body) != tt.body {
			t.Errorf("NullStringValue = %q, want %q", NullStringValue(body), tt.body)
		}
		if NullInt64Value(rating) != int64(tt.rating) {
			t.Errorf("NullInt64Value = %d, want %d", NullInt64Value(rating), tt.rating)
		}
	}
}

func TestNullValue_InvalidIgnoresPayload(t *testing.T) {
	if got := NullStringValue(sql.NullString{String: "stale", Valid: false}); got != "" {
		t.Errorf("NullStringValue = %q, want empty", got)
	}
	if got := NullInt64Value(sql.NullInt64{Int64: 9, Valid: false}); got != 0 {
		t.Errorf("NullInt64Value = %d, want 0", got)
	}
}
