package corpus

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// The scraper can also hand over its corpus as a sqlite database with the
// schema below instead of JSON files:
//
//	CREATE TABLE songs(id TEXT PRIMARY KEY, chords TEXT NOT NULL);
//	CREATE TABLE vocabulary(chord TEXT PRIMARY KEY);

// LoadSQLite reads all songs from a scraper database, ordered by id.
func LoadSQLite(path string) ([]Song, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT id, chords FROM songs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var id, chords string
		if err := rows.Scan(&id, &chords); err != nil {
			return nil, fmt.Errorf("scan song row: %w", err)
		}
		songs = append(songs, Song{ID: id, Chords: strings.Fields(chords)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// LoadVocabularySQLite reads the chord vocabulary from a scraper database.
// The caller is expected to pass the result through vocab.New, which sorts.
func LoadVocabularySQLite(path string) ([]string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT chord FROM vocabulary")
	if err != nil {
		return nil, fmt.Errorf("query vocabulary: %w", err)
	}
	defer rows.Close()

	var chords []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan vocabulary row: %w", err)
		}
		chords = append(chords, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vocabulary: %w", err)
	}
	return chords, nil
}
