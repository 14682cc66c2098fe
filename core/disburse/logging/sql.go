package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// sqlStore persists records in a run_logs table. bind renders the n-th
// placeholder for the driver in use.
type sqlStore struct {
	db   *sql.DB
	bind func(n int) string
}

func (s *sqlStore) migrate(schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		if cerr := s.db.Close(); cerr != nil {
			return fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return err
	}
	return nil
}

// Append writes the record to the database.
func (s *sqlStore) Append(ctx context.Context, rec RunRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO run_logs (ts, run_id, domain, status, record) VALUES (%s, %s, %s, %s, %s)`,
		s.bind(1), s.bind(2), s.bind(3), s.bind(4), s.bind(5))
	_, err = s.db.ExecContext(ctx, q, rec.Timestamp.UnixNano(), rec.RunID, rec.Domain, rec.Status, string(b))
	return err
}

// Query returns records matching q ordered by timestamp.
func (s *sqlStore) Query(ctx context.Context, q RunQuery) ([]RunRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, s.bind(len(args))))
	}
	if q.RunID != "" {
		add("run_id = %s", q.RunID)
	}
	if q.Domain != "" {
		add("domain = %s", q.Domain)
	}
	if q.Status != "" {
		add("status = %s", q.Status)
	}
	if !q.Start.IsZero() {
		add("ts >= %s", q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		add("ts <= %s", q.End.UnixNano())
	}
	query := `SELECT record FROM run_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ts, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r RunRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *sqlStore) Close() error { return s.db.Close() }
