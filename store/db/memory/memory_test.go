package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwnexus/watsnew/store"
)

func TestUpsertAndListPreservesOrder(t *testing.T) {
	ctx := context.Background()
	d := NewDB()
	require.NoError(t, d.Migrate(ctx))

	require.NoError(t, d.UpsertItems(ctx, []*store.Item{
		{Link: "https://b", Title: "b"},
		{Link: "https://a", Title: "a"},
	}))
	require.NoError(t, d.UpsertItems(ctx, []*store.Item{
		{Link: "https://b", Title: "b-updated"},
		{Link: "https://c", Title: "c"},
	}))

	items, err := d.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "https://b", items[0].Link)
	assert.Equal(t, "b-updated", items[0].Title)
	assert.Equal(t, "https://a", items[1].Link)
	assert.Equal(t, "https://c", items[2].Link)
}
