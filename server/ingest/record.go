// Package ingest incorporates harvested record batches into the catalog.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/uwnexus/watsnew/store"
)

// RawRecord is the boundary type for harvested data. Harvest sources are
// loosely shaped; required fields are enforced here so a malformed record
// becomes an explicit drop instead of a silent failure downstream.
type RawRecord struct {
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	Description string    `json:"snippet"`
	SourceLabel string    `json:"source"`
	ItemType    string    `json:"item_type"`
	FetchedAt   time.Time `json:"date_fetched"`
}

// Validate reports why a record is unusable, or nil.
func (r *RawRecord) Validate() error {
	if strings.TrimSpace(r.Link) == "" {
		return fmt.Errorf("record has no link")
	}
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("record %s has neither title nor description", r.Link)
	}
	return nil
}

// EmbedText builds the rich text a record is embedded from. Clubs from the
// static directory read more naturally as name/category; everything else is
// title/source.
func (r *RawRecord) EmbedText(origin store.Origin, description string) string {
	if origin == store.OriginStaticCatalog {
		return fmt.Sprintf("Name: %s. Category: %s. Description: %s", r.Title, r.SourceLabel, description)
	}
	return fmt.Sprintf("Title: %s. Source: %s. Description: %s", r.Title, r.SourceLabel, description)
}

// Item converts the record into a catalog item with the given embedding.
func (r *RawRecord) Item(origin store.Origin, embedding []float32) *store.Item {
	fetchedAt := r.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	return &store.Item{
		Link:        strings.TrimSpace(r.Link),
		Title:       r.Title,
		SourceLabel: r.SourceLabel,
		ItemType:    r.ItemType,
		Origin:      origin,
		Embedding:   embedding,
		FetchedAt:   fetchedAt,
	}
}
