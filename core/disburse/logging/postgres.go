package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists records to PostgreSQL through the pgx driver.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore connects to dsn and ensures schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{sqlStore{db: db, bind: func(n int) string { return fmt.Sprintf("$%d", n) }}}
	err = s.migrate(`CREATE TABLE IF NOT EXISTS run_logs (
        id BIGSERIAL PRIMARY KEY,
        ts BIGINT NOT NULL,
        run_id TEXT NOT NULL,
        domain TEXT NOT NULL,
        status TEXT NOT NULL,
        record JSONB NOT NULL
    );
    CREATE INDEX IF NOT EXISTS run_logs_run_id_idx ON run_logs (run_id);`)
	if err != nil {
		return nil, err
	}
	return s, nil
}
