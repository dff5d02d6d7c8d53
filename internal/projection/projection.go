// Package projection implements the Read Projection (spec component C4):
// bounded list reads over each leaderboard and the enriched event log,
// entirely bypassing the Aggregator.
package projection

import (
	"context"

	"github.com/chomnr/brute-go/internal/model"
)

// Reader is the subset of internal/store the projection queries against.
type Reader interface {
	RecentEnrichedEvents(ctx context.Context, limit int) ([]model.EnrichedEvent, error)
	TopLeaderboard(ctx context.Context, table string, limit int) ([]model.LeaderboardRow, error)
	TopCombos(ctx context.Context, limit int) ([]model.ComboRow, error)
	RecentBuckets(ctx context.Context, table string, limit int) ([]model.BucketRow, error)
}

// DefaultLimit is used when ?limit= is omitted, per spec §4.4. The upper
// bound is the Projection's maxLimit: 100 via New, or a caller-chosen
// value (e.g. 50 for a smaller deployment) via NewWithMax.
const DefaultLimit = 100

// Projection serves the stats endpoints.
type Projection struct {
	store    Reader
	maxLimit int
}

// New builds a Projection with the spec-default MAX_LIMIT of 100.
func New(store Reader) *Projection { return NewWithMax(store, 100) }

// NewWithMax builds a Projection with a caller-chosen MAX_LIMIT.
func NewWithMax(store Reader, maxLimit int) *Projection {
	return &Projection{store: store, maxLimit: maxLimit}
}

// ClampLimit applies spec §4.4's clamp: [1, maxLimit], defaulting to
// DefaultLimit (capped at maxLimit) when raw is zero.
func (p *Projection) ClampLimit(raw int) int {
	limit := raw
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > p.maxLimit {
		limit = p.maxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// EventLog returns the limit most recent EnrichedEvent rows, newest first.
// Rows are ordered by their own timestamp, which is the originating
// event's time, not the time enrichment was resolved.
func (p *Projection) EventLog(ctx context.Context, limit int) ([]model.EnrichedEvent, error) {
	return p.store.RecentEnrichedEvents(ctx, p.ClampLimit(limit))
}

// Leaderboard returns the limit highest-amount rows of the named
// leaderboard table.
func (p *Projection) Leaderboard(ctx context.Context, table string, limit int) ([]model.LeaderboardRow, error) {
	return p.store.TopLeaderboard(ctx, table, p.ClampLimit(limit))
}

// Combos returns the limit highest-amount username/password pairs.
func (p *Projection) Combos(ctx context.Context, limit int) ([]model.ComboRow, error) {
	return p.store.TopCombos(ctx, p.ClampLimit(limit))
}

// Hourly returns the limit most recent top_hourly bucket rows.
func (p *Projection) Hourly(ctx context.Context, limit int) ([]model.BucketRow, error) {
	return p.store.RecentBuckets(ctx, "top_hourly", p.ClampLimit(limit))
}
