package logging

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{sqlStore{db: db, bind: func(int) string { return "?" }}}
	err = s.migrate(`CREATE TABLE IF NOT EXISTS run_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        run_id TEXT,
        domain TEXT,
        status TEXT,
        record TEXT
    );`)
	if err != nil {
		return nil, err
	}
	return s, nil
}
