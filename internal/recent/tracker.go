// Package recent tracks the most recently selected stations.
//
// The list is ordered most recent first, holds no duplicates and never
// grows beyond a fixed limit. Every selection recomputes the whole ordered
// list and writes it together with the current station in one store
// transaction, so the two values can never disagree.
package recent

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mobil-koeln/station-cli/internal/logging"
	"github.com/mobil-koeln/station-cli/internal/settings"
)

// DefaultLimit is the default maximum length of the recent list
const DefaultLimit = 3

// Push returns list with id moved or inserted at the front, truncated to
// limit entries. list is not modified.
func Push(list []int, id, limit int) []int {
	if limit < 1 {
		limit = 1
	}
	out := make([]int, 0, min(len(list)+1, limit))
	out = append(out, id)
	for _, v := range list {
		if len(out) == limit {
			break
		}
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Tracker records station selections in a settings.Store.
type Tracker struct {
	store settings.Store
	limit int
	log   *zap.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithLimit sets the maximum list length
func WithLimit(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.limit = n
		}
	}
}

// WithLogger sets the tracker logger
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		t.log = l
	}
}

// New creates a Tracker on store.
func New(store settings.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = logging.OrNop(t.log)
	return t
}

// Limit returns the maximum list length
func (t *Tracker) Limit() int {
	return t.limit
}

// SetCurrentStation makes id the current station and moves it to the front
// of the recent list in a single store transaction.
func (t *Tracker) SetCurrentStation(ctx context.Context, id int) error {
	next, err := t.store.Update(ctx, func(p settings.Preferences) (settings.Preferences, error) {
		p.RecentStations = Push(p.RecentStations, id, t.limit)
		p.CurrentStation = id
		p.HasCurrentStation = true
		return p, nil
	})
	if err != nil {
		return fmt.Errorf("failed to set current station %d: %w", id, err)
	}

	t.log.Debug("current station set",
		zap.Int("station", id),
		zap.Ints("recent", next.RecentStations))
	return nil
}

// CurrentStation returns the current station, if one has been selected.
func (t *Tracker) CurrentStation(ctx context.Context) (int, bool, error) {
	p, err := t.store.Data(ctx)
	if err != nil {
		return 0, false, err
	}
	return p.CurrentStation, p.HasCurrentStation, nil
}

// Snapshot returns the recent list as currently persisted.
func (t *Tracker) Snapshot(ctx context.Context) ([]int, error) {
	p, err := t.store.Data(ctx)
	if err != nil {
		return nil, err
	}
	return t.view(p), nil
}

// Clear forgets the current station and the recent list.
func (t *Tracker) Clear(ctx context.Context) error {
	_, err := t.store.Update(ctx, func(settings.Preferences) (settings.Preferences, error) {
		return settings.Preferences{}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear recent stations: %w", err)
	}
	return nil
}

// RecentStations streams the recent list. The first value is the persisted
// state at call time; later values follow each change. Consecutive equal
// lists are emitted once. The channel is closed when ctx is done or the
// store is closed.
func (t *Tracker) RecentStations(ctx context.Context) <-chan []int {
	out := make(chan []int)
	changes, unsubscribe := t.store.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		var last []int
		emitted := false
		for {
			p, err := t.store.Data(ctx)
			switch {
			case err != nil:
				if ctx.Err() != nil || errors.Is(err, settings.ErrClosed) {
					return
				}
				t.log.Warn("failed to read recent stations", zap.Error(err))
			case !emitted || !slices.Equal(last, t.view(p)):
				list := t.view(p)
				select {
				case out <- list:
				case <-ctx.Done():
					return
				}
				last = list
				emitted = true
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()

	return out
}

// view trims a persisted list to the configured limit. A lower limit than
// the one used when the list was written must still hold.
func (t *Tracker) view(p settings.Preferences) []int {
	list := p.RecentStations
	if len(list) > t.limit {
		list = list[:t.limit]
	}
	if list == nil {
		return []int{}
	}
	return slices.Clone(list)
}
