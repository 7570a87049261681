package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw     string
		want    Action
		wantErr bool
	}{
		{"like", ActionLike, false},
		{"skip", ActionSkip, false},
		{"dislike", "", true},
		{"", "", true},
		{"LIKE", "", true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("raw=%q", tt.raw), func(t *testing.T) {
			got, err := ParseAction(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordSkipMarksSeenOnly(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	stats, err := l.Record(ctx, "u1", "https://a", ActionSkip)
	require.NoError(t, err)
	assert.Equal(t, UserStats{TotalSeen: 1, TotalLiked: 0}, stats)
}

func TestRecordLikeMarksSeenAndLiked(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	stats, err := l.Record(ctx, "u1", "https://a", ActionLike)
	require.NoError(t, err)
	assert.Equal(t, UserStats{TotalSeen: 1, TotalLiked: 1}, stats)
}

func TestRecordIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	for i := 0; i < 3; i++ {
		_, err := l.Record(ctx, "u1", "https://a", ActionLike)
		require.NoError(t, err)
	}
	assert.Equal(t, UserStats{TotalSeen: 1, TotalLiked: 1}, l.Stats(ctx, "u1"))
}

func TestLikedSubsetOfSeen(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	_, err := l.Record(ctx, "u1", "https://a", ActionSkip)
	require.NoError(t, err)
	_, err = l.Record(ctx, "u1", "https://b", ActionLike)
	require.NoError(t, err)
	_, err = l.Record(ctx, "u1", "https://a", ActionLike)
	require.NoError(t, err)

	stats := l.Stats(ctx, "u1")
	assert.Equal(t, 2, stats.TotalSeen)
	assert.Equal(t, 2, stats.TotalLiked)
	assert.LessOrEqual(t, stats.TotalLiked, stats.TotalSeen)
}

func TestFilterSeenPreservesOrder(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	_, err := l.Record(ctx, "u1", "https://b", ActionSkip)
	require.NoError(t, err)

	got := l.FilterSeen(ctx, "u1", []string{"https://a", "https://b", "https://c"})
	assert.Equal(t, []string{"https://a", "https://c"}, got)
}

func TestFilterSeenUnknownUser(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	links := []string{"https://a", "https://b"}
	assert.Equal(t, links, l.FilterSeen(ctx, "nobody", links))
}

func TestUserIsolation(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	_, err := l.Record(ctx, "alice", "https://a", ActionLike)
	require.NoError(t, err)

	assert.Equal(t, UserStats{}, l.Stats(ctx, "bob"))
	assert.Equal(t, []string{"https://a"}, l.FilterSeen(ctx, "bob", []string{"https://a"}))
}

func TestConcurrentRecordsBothLand(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			link := fmt.Sprintf("https://item-%d", n%4)
			_, _ = l.Record(ctx, "u1", link, ActionSkip)
			_, _ = l.Record(ctx, "u2", link, ActionLike)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, l.Stats(ctx, "u1").TotalSeen)
	assert.Equal(t, 0, l.Stats(ctx, "u1").TotalLiked)
	assert.Equal(t, 4, l.Stats(ctx, "u2").TotalSeen)
	assert.Equal(t, 4, l.Stats(ctx, "u2").TotalLiked)
}
