package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chomnr/brute-go/internal/model"
)

type fakeReader struct {
	gotLimit int
}

func (f *fakeReader) RecentEnrichedEvents(ctx context.Context, limit int) ([]model.EnrichedEvent, error) {
	f.gotLimit = limit
	return nil, nil
}

func (f *fakeReader) TopLeaderboard(ctx context.Context, table string, limit int) ([]model.LeaderboardRow, error) {
	f.gotLimit = limit
	return nil, nil
}

func (f *fakeReader) TopCombos(ctx context.Context, limit int) ([]model.ComboRow, error) {
	f.gotLimit = limit
	return nil, nil
}

func (f *fakeReader) RecentBuckets(ctx context.Context, table string, limit int) ([]model.BucketRow, error) {
	f.gotLimit = limit
	return nil, nil
}

func TestClampLimit(t *testing.T) {
	p := New(&fakeReader{})
	assert.Equal(t, 100, p.ClampLimit(0))
	assert.Equal(t, 1, p.ClampLimit(-5))
	assert.Equal(t, 100, p.ClampLimit(500))
	assert.Equal(t, 42, p.ClampLimit(42))
}

func TestClampLimit_SmallerInstance(t *testing.T) {
	p := NewWithMax(&fakeReader{}, 50)
	assert.Equal(t, 50, p.ClampLimit(0))
	assert.Equal(t, 50, p.ClampLimit(500))
}

func TestEventLog_PassesClampedLimit(t *testing.T) {
	reader := &fakeReader{}
	p := New(reader)

	_, err := p.EventLog(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, 100, reader.gotLimit)
}
