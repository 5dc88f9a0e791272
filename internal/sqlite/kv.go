package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tupadhub/tupadhub/internal/repository"
	"github.com/tupadhub/tupadhub/internal/store"
)

// ErrBusy is returned when another process holds the write lock past the busy timeout.
var ErrBusy = errors.New("database busy")

var _ store.Backend = (*KVRepository)(nil)

// KVRepository implements store.Backend for SQLite
type KVRepository struct {
	db *DB
}

// NewKVRepository creates a new KVRepository
func NewKVRepository(db *DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves the entry stored under key
func (r *KVRepository) Get(ctx context.Context, key string) (store.Entry, error) {
	query := `
		SELECT key, value, revision
		FROM kv
		WHERE key = ?
	`

	var entry store.Entry
	err := r.db.QueryRowContext(ctx, query, key).Scan(&entry.Key, &entry.Value, &entry.Revision)
	if err == sql.ErrNoRows {
		return store.Entry{}, repository.ErrNotFound
	}
	if err != nil {
		return store.Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

// Put upserts the value under key and returns its new revision. Revisions
// are global and strictly increasing across keys.
func (r *KVRepository) Put(ctx context.Context, key string, value []byte) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(revision), 0) + 1 FROM kv`).Scan(&revision); err != nil {
		return 0, fmt.Errorf("failed to allocate revision: %w", err)
	}

	upsert := `
		INSERT INTO kv (key, value, revision, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = excluded.revision,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, key, value, revision, time.Now().UTC()); err != nil {
		if isBusy(err) {
			return 0, ErrBusy
		}
		return 0, fmt.Errorf("failed to put entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return 0, ErrBusy
		}
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return revision, nil
}

// Since returns entries written after the given revision, oldest first
func (r *KVRepository) Since(ctx context.Context, revision int64) ([]store.Entry, error) {
	query := `
		SELECT key, value, revision
		FROM kv
		WHERE revision > ?
		ORDER BY revision ASC
	`

	rows, err := r.db.QueryContext(ctx, query, revision)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		var entry store.Entry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.Revision); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	return entries, nil
}
