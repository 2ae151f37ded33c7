// Package stations remembers the names of stations seen in search and nearby
// results so that lists of bare station codes can be shown by name.
package stations

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mobil-koeln/station-cli/internal/logging"
	"github.com/mobil-koeln/station-cli/internal/models"
)

// Directory maps station codes to names in the stations table.
type Directory struct {
	db  *sqlx.DB
	log *zap.Logger
	now func() time.Time
}

type stationRow struct {
	Code   int    `db:"code"`
	Name   string `db:"name"`
	SeenAt int64  `db:"seen_at"` // unix milliseconds
}

// NewDirectory creates a directory on db
func NewDirectory(db *sqlx.DB, log *zap.Logger) *Directory {
	return &Directory{db: db, log: logging.OrNop(log), now: time.Now}
}

// Remember stores the names of stations that have a code. Later names
// replace earlier ones.
func (d *Directory) Remember(ctx context.Context, stations []models.Station) error {
	seenAt := d.now().UnixMilli()
	var rows []stationRow
	for _, s := range stations {
		if s.Code > 0 && s.Name != "" {
			rows = append(rows, stationRow{Code: s.Code, Name: s.Name, SeenAt: seenAt})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO stations (code, name, seen_at) VALUES (:code, :name, :seen_at)
			ON CONFLICT(code) DO UPDATE SET name = excluded.name, seen_at = excluded.seen_at`, r)
		if err != nil {
			return fmt.Errorf("failed to store station %d: %w", r.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stations: %w", err)
	}

	d.log.Debug("remembered station names", zap.Int("count", len(rows)))
	return nil
}

// Names returns the known names for codes. Unknown codes are absent from
// the map.
func (d *Directory) Names(ctx context.Context, codes []int) (map[int]string, error) {
	names := make(map[int]string, len(codes))
	if len(codes) == 0 {
		return names, nil
	}

	query, args, err := sqlx.In(`SELECT code, name FROM stations WHERE code IN (?)`, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to build station query: %w", err)
	}

	var rows []stationRow
	if err := d.db.SelectContext(ctx, &rows, d.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to read station names: %w", err)
	}
	for _, r := range rows {
		names[r.Code] = r.Name
	}
	return names, nil
}
