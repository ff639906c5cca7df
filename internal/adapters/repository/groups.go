package repository

import (
	"context"
	"sort"

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/metrics"
)

// RaceGroups is a sharded, in-memory GroupStore safe for concurrent writers.
//
// Insertion order between workers is not deterministic, so reads order
// entries by (umaban, seq) instead.
type RaceGroups struct {
	shards shards[[]model.SeEntry]
}

var _ GroupStore = (*RaceGroups)(nil)

// NewRaceGroups constructs an empty store.
func NewRaceGroups(opts ...Option) *RaceGroups {
	c := newConfig(opts)
	return &RaceGroups{shards: newShards[[]model.SeEntry](c.shards)}
}

// Add implements GroupStore.Add.
func (g *RaceGroups) Add(_ context.Context, e model.SeEntry) error {
	if e.RaceID == "" {
		return ErrEmptyRaceID
	}
	sh := g.shards.of(e.RaceID)
	sh.mu.Lock()
	_, existed := sh.m[e.RaceID]
	sh.m[e.RaceID] = append(sh.m[e.RaceID], e)
	sh.mu.Unlock()

	if !existed {
		metrics.UpdateRaceGroups(g.shards.count())
	}
	return nil
}

// Entries implements GroupStore.Entries. The returned slice is a copy.
func (g *RaceGroups) Entries(_ context.Context, raceID string) ([]model.SeEntry, error) {
	sh := g.shards.of(raceID)
	sh.mu.RLock()
	src, ok := sh.m[raceID]
	out := append([]model.SeEntry(nil), src...)
	sh.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	SortEntries(out)
	return out, nil
}

// RaceIDs implements GroupStore.RaceIDs.
func (g *RaceGroups) RaceIDs(_ context.Context) []string {
	ids := g.shards.keys()
	sort.Strings(ids)
	return ids
}

// Count implements GroupStore.Count.
func (g *RaceGroups) Count(_ context.Context) int {
	return g.shards.count()
}

// SortEntries orders entries by umaban, then by sequence.
func SortEntries(entries []model.SeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Umaban != entries[j].Umaban {
			return entries[i].Umaban < entries[j].Umaban
		}
		return entries[i].Seq < entries[j].Seq
	})
}
