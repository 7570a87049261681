package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwnexus/watsnew/internal/profile"
)

func item(link, title string) *Item {
	return &Item{
		Link:      link,
		Title:     title,
		Origin:    OriginLocalHarvest,
		Embedding: []float32{0.1, 0.2, 0.3},
	}
}

func TestNewCatalogDedupsByLink(t *testing.T) {
	c := NewCatalog(
		item("https://a", "first"),
		item("https://b", "second"),
		item("https://a", "renamed"),
	)

	assert.Equal(t, 2, c.Len())
	got, ok := c.Get("https://a")
	require.True(t, ok)
	// Later duplicate refreshes metadata but does not add an entry.
	assert.Equal(t, "renamed", got.Title)
}

func TestCatalogPreservesInsertionOrder(t *testing.T) {
	c := NewCatalog(item("https://a", "a"), item("https://b", "b"), item("https://c", "c"))

	links := make([]string, 0, c.Len())
	for _, it := range c.Items() {
		links = append(links, it.Link)
	}
	assert.Equal(t, []string{"https://a", "https://b", "https://c"}, links)
}

func TestCatalogWithDoesNotMutateReceiver(t *testing.T) {
	base := NewCatalog(item("https://a", "a"))
	next := base.With(item("https://b", "b"), item("https://a", "updated"))

	assert.Equal(t, 1, base.Len())
	got, ok := base.Get("https://a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Title)

	assert.Equal(t, 2, next.Len())
	got, ok = next.Get("https://a")
	require.True(t, ok)
	assert.Equal(t, "updated", got.Title)
}

func TestCatalogUpdateKeepsEmbedding(t *testing.T) {
	original := item("https://a", "a")
	update := item("https://a", "a2")
	update.Embedding = []float32{9, 9, 9}

	next := NewCatalog(original).With(update)

	got, ok := next.Get("https://a")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
}

func TestCatalogSkipsLinklessItems(t *testing.T) {
	c := NewCatalog(item("", "no link"), nil, item("https://a", "a"))
	assert.Equal(t, 1, c.Len())
}

func TestStoreMergeSwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(nil, &profile.Profile{Mode: "dev"})

	before := s.Catalog()
	assert.Equal(t, 0, before.Len())

	added := []*Item{item("https://a", "a")}
	err := s.Merge(ctx, func(current *Catalog) (*Catalog, []*Item, error) {
		return current.With(added...), added, nil
	})
	require.NoError(t, err)

	// Old snapshot is untouched; new snapshot has the item.
	assert.Equal(t, 0, before.Len())
	assert.Equal(t, 1, s.Catalog().Len())
}

func TestStoreMergeIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New(nil, &profile.Profile{Mode: "dev"})

	merge := func() error {
		added := []*Item{item("https://x", "x")}
		return s.Merge(ctx, func(current *Catalog) (*Catalog, []*Item, error) {
			return current.With(added...), added, nil
		})
	}
	require.NoError(t, merge())
	require.NoError(t, merge())

	assert.Equal(t, 1, s.Catalog().Len())
}
