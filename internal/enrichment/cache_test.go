package enrichment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chomnr/brute-go/internal/model"
)

type fakeProvider struct {
	calls int
	enr   model.Enrichment
	err   error
}

func (f *fakeProvider) Lookup(ctx context.Context, ip string) (model.Enrichment, error) {
	f.calls++
	return f.enr, f.err
}

type fakeRecent struct {
	row   model.EnrichedEvent
	found bool
	err   error
}

func (f *fakeRecent) MostRecentEnrichedEventForIP(ctx context.Context, ip string) (model.EnrichedEvent, bool, error) {
	return f.row, f.found, f.err
}

func TestCache_MissCallsProvider(t *testing.T) {
	provider := &fakeProvider{enr: model.Enrichment{City: "Columbus"}}
	recent := &fakeRecent{found: false}
	c := New(provider, recent, nil)

	enr, err := c.Lookup(context.Background(), "203.0.113.7", 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, "Columbus", enr.City)
	assert.Equal(t, 1, provider.calls)
}

func TestCache_FreshRowServedWithoutProviderCall(t *testing.T) {
	provider := &fakeProvider{enr: model.Enrichment{City: "Columbus"}}
	recent := &fakeRecent{
		found: true,
		row: model.EnrichedEvent{
			City:      "Cleveland",
			Timestamp: 1_000_000,
		},
	}
	c := New(provider, recent, nil)

	enr, err := c.Lookup(context.Background(), "203.0.113.7", 1_200_000) // 200s later, within 300s window
	require.NoError(t, err)
	assert.Equal(t, "Cleveland", enr.City)
	assert.Equal(t, 0, provider.calls)
}

func TestCache_StaleRowFallsThroughToProvider(t *testing.T) {
	provider := &fakeProvider{enr: model.Enrichment{City: "Columbus"}}
	recent := &fakeRecent{
		found: true,
		row: model.EnrichedEvent{
			City:      "Cleveland",
			Timestamp: 1_000_000,
		},
	}
	c := New(provider, recent, nil)

	enr, err := c.Lookup(context.Background(), "203.0.113.7", 1_300_001) // 300.001s later, past the window
	require.NoError(t, err)
	assert.Equal(t, "Columbus", enr.City)
	assert.Equal(t, 1, provider.calls)
}

func TestCache_PrecheckHitSkipsEverythingElse(t *testing.T) {
	provider := &fakeProvider{enr: model.Enrichment{City: "Columbus"}}
	recent := &fakeRecent{found: true, row: model.EnrichedEvent{City: "Cleveland", Timestamp: 1_000_000}}
	pre := newFakePrecheck()
	pre.store["203.0.113.7"] = model.Enrichment{City: "Tokyo"}

	c := New(provider, recent, pre)
	enr, err := c.Lookup(context.Background(), "203.0.113.7", 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", enr.City)
	assert.Equal(t, 0, provider.calls)
}

type fakePrecheck struct {
	store map[string]model.Enrichment
}

func newFakePrecheck() *fakePrecheck { return &fakePrecheck{store: map[string]model.Enrichment{}} }

func (f *fakePrecheck) Get(ctx context.Context, ip string) (model.Enrichment, bool) {
	enr, ok := f.store[ip]
	return enr, ok
}

func (f *fakePrecheck) Set(ctx context.Context, ip string, enr model.Enrichment, ttl time.Duration) {
	f.store[ip] = enr
}
