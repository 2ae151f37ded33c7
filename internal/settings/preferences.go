// Package settings implements the durable key-value preference store that
// holds the current station and the recent stations list.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Preference keys as persisted in the store
const (
	KeyCurrentStation = "currentStationCode"
	KeyRecentStations = "recentStations"
)

var (
	// ErrCorrupt indicates a persisted value could not be decoded
	ErrCorrupt = errors.New("corrupt preference value")

	// ErrClosed indicates the store has been closed
	ErrClosed = errors.New("preference store closed")
)

// Preferences is an immutable snapshot of the persisted preferences.
// RecentStations is ordered most recent first.
type Preferences struct {
	CurrentStation    int
	HasCurrentStation bool
	RecentStations    []int
}

// Clone returns a deep copy of p.
func (p Preferences) Clone() Preferences {
	p.RecentStations = slices.Clone(p.RecentStations)
	return p
}

// Store is a transactional, observable preference store.
type Store interface {
	// Data returns the current snapshot.
	Data(ctx context.Context) (Preferences, error)

	// Update runs fn as one atomic read-modify-write. If fn returns an
	// error nothing is written and the error is returned.
	Update(ctx context.Context, fn func(Preferences) (Preferences, error)) (Preferences, error)

	// Subscribe returns a channel signalled after the stored data may have
	// changed. Signals coalesce. The returned func unsubscribes.
	Subscribe() (<-chan struct{}, func())

	Close() error
}

// encode turns p into persisted key/value pairs. Keys missing from the
// result are deleted from the store.
func encode(p Preferences) (map[string]string, error) {
	entries := make(map[string]string, 2)
	if p.HasCurrentStation {
		entries[KeyCurrentStation] = strconv.Itoa(p.CurrentStation)
	}
	if len(p.RecentStations) > 0 {
		// The set members are written in recency order so the ordering
		// is recoverable from the serialized value.
		members := make([]string, 0, len(p.RecentStations))
		for _, code := range p.RecentStations {
			members = append(members, strconv.Itoa(code))
		}
		data, err := json.Marshal(members)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", KeyRecentStations, err)
		}
		entries[KeyRecentStations] = string(data)
	}
	return entries, nil
}

// decode rebuilds a snapshot from persisted key/value pairs.
func decode(entries map[string]string) (Preferences, error) {
	var p Preferences

	if v, ok := entries[KeyCurrentStation]; ok {
		code, err := strconv.Atoi(v)
		if err != nil {
			return Preferences{}, fmt.Errorf("%w: %s=%q", ErrCorrupt, KeyCurrentStation, v)
		}
		p.CurrentStation = code
		p.HasCurrentStation = true
	}

	if v, ok := entries[KeyRecentStations]; ok {
		var members []string
		if err := json.Unmarshal([]byte(v), &members); err != nil {
			return Preferences{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, KeyRecentStations, err)
		}
		seen := make(map[int]bool, len(members))
		for _, m := range members {
			code, err := strconv.Atoi(m)
			if err != nil {
				return Preferences{}, fmt.Errorf("%w: %s member %q", ErrCorrupt, KeyRecentStations, m)
			}
			if seen[code] {
				continue
			}
			seen[code] = true
			p.RecentStations = append(p.RecentStations, code)
		}
	}

	return p, nil
}
