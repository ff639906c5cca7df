package repository

import (
	"context"

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/metrics"
)

// SummaryIndex is a sharded SummaryStore where the summary with the highest
// sequence wins, which makes the last record read in file order the winner
// regardless of which worker decoded it.
type SummaryIndex struct {
	shards shards[model.SrSummary]
}

var _ SummaryStore = (*SummaryIndex)(nil)

// NewSummaryIndex constructs an empty index.
func NewSummaryIndex(opts ...Option) *SummaryIndex {
	c := newConfig(opts)
	return &SummaryIndex{shards: newShards[model.SrSummary](c.shards)}
}

// Put implements SummaryStore.Put.
func (x *SummaryIndex) Put(_ context.Context, s model.SrSummary) (bool, error) {
	if s.RaceID == "" {
		return false, ErrEmptyRaceID
	}
	sh := x.shards.of(s.RaceID)
	sh.mu.Lock()
	old, ok := sh.m[s.RaceID]
	if ok && old.Seq > s.Seq {
		sh.mu.Unlock()
		return false, nil
	}
	sh.m[s.RaceID] = s
	sh.mu.Unlock()

	if !ok {
		metrics.UpdateSummaryIndexSize(x.shards.count())
	}
	return true, nil
}

// Get implements SummaryStore.Get.
func (x *SummaryIndex) Get(_ context.Context, raceID string) (model.SrSummary, error) {
	sh := x.shards.of(raceID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	s, ok := sh.m[raceID]
	if !ok {
		return model.SrSummary{}, ErrNotFound
	}
	return s, nil
}

// Count implements SummaryStore.Count.
func (x *SummaryIndex) Count(_ context.Context) int {
	return x.shards.count()
}
