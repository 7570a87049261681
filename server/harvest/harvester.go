// Package harvest produces raw record batches for the ingestion pipeline.
// Harvesters talk to external sources (web search, the club directory) and
// therefore live outside the recommendation core; the pipeline only sees the
// RawRecord batches they emit.
package harvest

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/uwnexus/watsnew/server/ingest"
	"github.com/uwnexus/watsnew/store"
)

// SearchResult is one hit from a search backend.
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}

// Searcher is the pluggable web-search backend.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Config describes one harvest run.
type Config struct {
	Queries            []string
	MaxResultsPerQuery int
	Origin             store.Origin
	SourceLabel        string
	ItemType           string
}

// CampusConfig harvests campus-focused opportunities.
func CampusConfig() Config {
	return Config{
		Queries: []string{
			"University of Waterloo student hackathon",
			"site:uwaterloo.ca undergraduate research application",
			"site:uwaterloo.ca guest lecture seminar",
			"Waterloo student tech events",
		},
		MaxResultsPerQuery: 10,
		Origin:             store.OriginLocalHarvest,
		SourceLabel:        "web_harvester",
		ItemType:           "event",
	}
}

// GlobalConfig harvests top-tier global tech opportunities.
func GlobalConfig() Config {
	return Config{
		Queries: []string{
			`"Google Summer of Code" 2026 application`,
			`"Microsoft Explore" program undergraduate`,
			"Jane Street first year trading program",
			"undergraduate open source fellowship tech",
			"MLH fellowship application",
		},
		MaxResultsPerQuery: 5,
		Origin:             store.OriginGlobalHarvest,
		SourceLabel:        "global_opportunity",
		ItemType:           "fellowship",
	}
}

// Harvester runs search queries and collects deduplicated raw records.
type Harvester struct {
	searcher Searcher
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewHarvester creates a harvester. The limiter paces queries so the search
// backend is not hammered; one query every two seconds matches the cadence
// the backend tolerates.
func NewHarvester(searcher Searcher) *Harvester {
	return &Harvester{
		searcher: searcher,
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:   slog.Default(),
	}
}

// Run executes every query in the config and returns the deduplicated batch.
// A failing query is logged and skipped; one bad query must not lose the
// whole harvest.
func (h *Harvester) Run(ctx context.Context, cfg Config) ([]ingest.RawRecord, error) {
	var records []ingest.RawRecord
	seenLinks := make(map[string]struct{})
	fetchedAt := time.Now().UTC()

	for _, query := range cfg.Queries {
		if err := h.limiter.Wait(ctx); err != nil {
			return records, err
		}

		results, err := h.searcher.Search(ctx, query, cfg.MaxResultsPerQuery)
		if err != nil {
			h.logger.Warn("harvest query failed", "query", query, "error", err.Error())
			continue
		}

		count := 0
		for _, result := range results {
			if result.Link == "" {
				continue
			}
			if _, dup := seenLinks[result.Link]; dup {
				continue
			}
			seenLinks[result.Link] = struct{}{}
			records = append(records, ingest.RawRecord{
				Link:        result.Link,
				Title:       result.Title,
				Description: result.Snippet,
				SourceLabel: cfg.SourceLabel,
				ItemType:    cfg.ItemType,
				FetchedAt:   fetchedAt,
			})
			count++
		}
		h.logger.Info("harvest query finished", "query", query, "new_results", count)
	}

	return records, nil
}
