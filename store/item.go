package store

import "time"

// Origin tags where an item was sourced from. Informational only; it is never
// used in matching.
type Origin string

const (
	// OriginStaticCatalog marks items from the scraped club directory.
	OriginStaticCatalog Origin = "STATIC_CATALOG"
	// OriginLocalHarvest marks items from campus-focused harvest runs.
	OriginLocalHarvest Origin = "LOCAL_HARVEST"
	// OriginGlobalHarvest marks items from global opportunity harvest runs.
	OriginGlobalHarvest Origin = "GLOBAL_HARVEST"
)

// Item is a recommendable unit: a club, event or fellowship.
type Item struct {
	// Link is the stable identifier. Unique within the catalog; it is the
	// dedup key and the "seen" key in the interaction ledger.
	Link string `json:"link"`

	Title       string `json:"title"`
	SourceLabel string `json:"source_label"`
	ItemType    string `json:"item_type"`
	Origin      Origin `json:"origin"`

	// Embedding is computed once when the item first enters the catalog and
	// is immutable afterwards.
	Embedding []float32 `json:"embedding"`

	// FetchedAt records when the item was harvested.
	FetchedAt time.Time `json:"fetched_at"`
}

// cloneMeta returns a copy of the item with the metadata fields of other,
// keeping this item's embedding and fetch time.
func (i *Item) cloneMeta(other *Item) *Item {
	clone := *i
	clone.Title = other.Title
	clone.SourceLabel = other.SourceLabel
	clone.ItemType = other.ItemType
	return &clone
}
