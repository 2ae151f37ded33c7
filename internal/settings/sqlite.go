package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mobil-koeln/station-cli/internal/logging"
	"github.com/mobil-koeln/station-cli/internal/storage"
)

const (
	selectPreferences = `SELECT key, value FROM preferences WHERE key IN (?, ?)`
	upsertPreference  = `INSERT INTO preferences (key, value) VALUES (:key, :value)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deletePreference = `DELETE FROM preferences WHERE key = ?`
)

var preferenceKeys = []string{KeyCurrentStation, KeyRecentStations}

type preferenceRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// SQLiteStore is a durable Store backed by the preferences table.
// The database handle is owned by the caller.
type SQLiteStore struct {
	db     *sqlx.DB
	log    *zap.Logger
	mu     sync.Mutex
	notify notifier

	watcher *fsnotify.Watcher
	done    chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
}

// SQLiteOption configures a SQLiteStore
type SQLiteOption func(*SQLiteStore)

// WithLogger sets the store logger
func WithLogger(l *zap.Logger) SQLiteOption {
	return func(s *SQLiteStore) {
		s.log = l
	}
}

// NewSQLiteStore creates a store on db. When path names a database file,
// the store also watches it so that writes made by other processes reach
// subscribers.
func NewSQLiteStore(db *sqlx.DB, path string, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNop(s.log)

	if path != "" && path != storage.MemoryPath {
		if err := s.watch(path); err != nil {
			s.log.Warn("external preference changes will not be observed",
				zap.String("path", path), zap.Error(err))
		}
	}
	return s
}

// watch signals subscribers whenever the database file or its journal changes.
func (s *SQLiteStore) watch(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}

	s.watcher = w
	s.done = make(chan struct{})
	base := filepath.Base(path)

	go func() {
		defer close(s.done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), base) {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					s.log.Debug("database file changed", zap.String("file", ev.Name))
					s.notify.broadcast()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("database watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Data reads the current snapshot.
func (s *SQLiteStore) Data(ctx context.Context) (Preferences, error) {
	if s.closed.Load() {
		return Preferences{}, ErrClosed
	}
	var rows []preferenceRow
	if err := s.db.SelectContext(ctx, &rows, selectPreferences, KeyCurrentStation, KeyRecentStations); err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	return decodeRows(rows)
}

// Update runs fn inside one database transaction.
func (s *SQLiteStore) Update(ctx context.Context, fn func(Preferences) (Preferences, error)) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return Preferences{}, ErrClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rows []preferenceRow
	if err := tx.SelectContext(ctx, &rows, selectPreferences, KeyCurrentStation, KeyRecentStations); err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	current, err := decodeRows(rows)
	if err != nil {
		return Preferences{}, err
	}

	next, err := fn(current)
	if err != nil {
		return Preferences{}, err
	}

	entries, err := encode(next)
	if err != nil {
		return Preferences{}, err
	}
	for _, key := range preferenceKeys {
		value, ok := entries[key]
		if !ok {
			if _, err := tx.ExecContext(ctx, deletePreference, key); err != nil {
				return Preferences{}, fmt.Errorf("failed to delete %s: %w", key, err)
			}
			continue
		}
		if _, err := tx.NamedExecContext(ctx, upsertPreference, preferenceRow{Key: key, Value: value}); err != nil {
			return Preferences{}, fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Preferences{}, fmt.Errorf("failed to commit preferences: %w", err)
	}

	s.log.Debug("preferences updated",
		zap.Int("current", next.CurrentStation),
		zap.Ints("recent", next.RecentStations))
	s.notify.broadcast()
	return next.Clone(), nil
}

// Subscribe returns a change notification channel.
func (s *SQLiteStore) Subscribe() (<-chan struct{}, func()) {
	return s.notify.subscribe()
}

// Close stops the file watcher and closes all subscriptions. It does not
// close the database handle.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
			<-s.done
		}
		s.notify.close()
	})
	return err
}

func decodeRows(rows []preferenceRow) (Preferences, error) {
	entries := make(map[string]string, len(rows))
	for _, r := range rows {
		entries[r.Key] = r.Value
	}
	return decode(entries)
}
