package library

import (
	"strings"
	"unicode/utf8"
)

// minTrigramQuery is the shortest word the trigram index can match.
const minTrigramQuery = 3

// Search returns the songs matching every criterion. Each value is a
// case-insensitive substring of the column's value. Empty criteria return
// all songs.
func (l *Library) Search(criteria map[Column]string) ([]Song, error) {
	for c := range criteria {
		if !c.Valid() {
			return nil, &UnknownColumnError{Name: string(c)}
		}
	}

	var (
		conds []string
		args  []any
	)
	for _, c := range Columns() {
		v, ok := criteria[c]
		if !ok {
			continue
		}
		expr := string(c)
		if c.Numeric() {
			expr = "CAST(" + expr + " AS TEXT)"
		}
		conds = append(conds, "LOWER("+expr+") LIKE ? ESCAPE '\\'")
		args = append(args, likePattern(v))
	}

	query := `SELECT ` + songColumns + ` FROM songs`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY title IS NULL, title COLLATE NOCASE, file_name COLLATE NOCASE`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanSongs(rows)
}

// Find runs a free-text search over title, artist, album and file name.
// Every word of query must match. Results are ranked by relevance.
func (l *Library) Find(query string) ([]Song, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return l.List()
	}

	for _, w := range words {
		if utf8.RuneCountInString(w) < minTrigramQuery {
			return l.findLike(words)
		}
	}

	rows, err := l.db.Query(`
		SELECT `+prefixed("s.", songColumns)+`
		FROM songs_fts f
		JOIN songs s ON s.id = f.song_id
		WHERE f.search_text MATCH ?
		ORDER BY f.rank
	`, escapeFTSQuery(words))
	if err != nil {
		return nil, err
	}
	return scanSongs(rows)
}

// findLike is the fallback for words too short for the trigram index.
func (l *Library) findLike(words []string) ([]Song, error) {
	conds := make([]string, len(words))
	args := make([]any, len(words))
	for i, w := range words {
		conds[i] = "LOWER(f.search_text) LIKE ? ESCAPE '\\'"
		args[i] = likePattern(w)
	}

	rows, err := l.db.Query(`
		SELECT `+prefixed("s.", songColumns)+`
		FROM songs_fts f
		JOIN songs s ON s.id = f.song_id
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY s.title IS NULL, s.title COLLATE NOCASE, s.file_name COLLATE NOCASE
	`, args...)
	if err != nil {
		return nil, err
	}
	return scanSongs(rows)
}

// likePattern wraps v for a substring LIKE match, escaping wildcards.
func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(v)) + "%"
}

// prefixed qualifies each column of a comma separated list.
func prefixed(prefix, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
