package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/fragview/internal/db"
	"github.com/ziadkadry99/fragview/internal/preview"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by GetByID for unknown ids.
var ErrNotFound = errors.New("journal: entry not found")

// Store provides access to recorded loads.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a load reported by a preview session. If the load has no
// ID a UUID is generated.
func (s *Store) Record(ctx context.Context, l preview.Load) error {
	return s.Insert(ctx, Entry{
		ID:         l.ID,
		At:         l.At,
		Page:       l.Page,
		URL:        l.URL,
		Depth:      l.Depth,
		Bytes:      l.Bytes,
		DurationMS: l.Duration.Milliseconds(),
		Status:     string(l.Status),
		Error:      l.Error,
	})
}

// Insert stores e.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	var errText sql.NullString
	if e.Error != "" {
		errText = sql.NullString{String: e.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loads (id, at, page, url, depth, bytes, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.At.UTC().Format(timeLayout),
		e.Page,
		e.URL,
		e.Depth,
		e.Bytes,
		e.DurationMS,
		e.Status,
		errText,
	)
	if err != nil {
		return fmt.Errorf("inserting load: %w", err)
	}
	return nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, at, page, url, depth, bytes, duration_ms, status, error
		FROM loads WHERE id = ?`, id)

	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Page != "" {
		clauses = append(clauses, "page = ?")
		args = append(args, filter.Page)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Since != nil {
		clauses = append(clauses, "at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := "SELECT id, at, page, url, depth, bytes, duration_ms, status, error FROM loads"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY at DESC, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying loads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Summarize counts entries per status.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM loads GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("summarizing loads: %w", err)
	}
	defer rows.Close()

	sum := &Summary{Status: make(map[string]int)}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		sum.Status[status] = n
		sum.Total += n
	}
	return sum, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM loads WHERE at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old loads: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e       Entry
		at      string
		errText sql.NullString
	)

	err := sc.Scan(&e.ID, &at, &e.Page, &e.URL, &e.Depth, &e.Bytes, &e.DurationMS, &e.Status, &errText)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(timeLayout, at); parseErr == nil {
		e.At = t
	}
	if errText.Valid {
		e.Error = errText.String
	}
	return &e, nil
}
