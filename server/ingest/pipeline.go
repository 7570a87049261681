package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/semaphore"

	"github.com/uwnexus/watsnew/plugin/ai"
	"github.com/uwnexus/watsnew/plugin/markdown"
	"github.com/uwnexus/watsnew/server/internal/errors"
	"github.com/uwnexus/watsnew/internal/observability"
	"github.com/uwnexus/watsnew/store"
)

const (
	// embedChunkSize is how many texts go into one embedding request.
	embedChunkSize = 32
	// embedConcurrency bounds in-flight embedding requests per merge.
	embedConcurrency = 3
)

// Report summarizes one merge run.
type Report struct {
	BatchID string
	Origin  store.Origin
	Total   int // records received
	Added   int // new items embedded and appended
	Updated int // existing links, metadata refreshed without re-embedding
	Dropped int // malformed records skipped
}

// Pipeline merges harvested batches into the catalog, deduplicating by link
// and embedding only text the catalog has not seen before.
type Pipeline struct {
	store    *store.Store
	embedder ai.EmbeddingService
	markdown markdown.Service
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewPipeline creates a merge pipeline.
func NewPipeline(st *store.Store, embedder ai.EmbeddingService, md markdown.Service, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		store:    st,
		embedder: embedder,
		markdown: md,
		metrics:  metrics,
		logger:   slog.Default(),
	}
}

// Merge incorporates a batch of raw records tagged with the given origin.
// Malformed records are dropped and counted, never fatal to the batch. An
// embedding backend failure aborts the whole merge so the catalog is not
// left partially embedded.
func (p *Pipeline) Merge(ctx context.Context, records []RawRecord, origin store.Origin) (*Report, error) {
	report := &Report{
		BatchID: shortuuid.New(),
		Origin:  origin,
		Total:   len(records),
	}

	err := p.store.Merge(ctx, func(current *store.Catalog) (*store.Catalog, []*store.Item, error) {
		var (
			fresh      []RawRecord
			freshTexts []string
			updates    []*store.Item
		)
		seenInBatch := make(map[string]struct{})

		for i := range records {
			record := records[i]
			if err := record.Validate(); err != nil {
				report.Dropped++
				p.logger.Warn("dropping malformed record",
					observability.LogFieldBatchID, report.BatchID,
					"error", err.Error())
				continue
			}
			link := strings.TrimSpace(record.Link)
			if _, dup := seenInBatch[link]; dup {
				report.Dropped++
				continue
			}
			seenInBatch[link] = struct{}{}

			if existing, ok := current.Get(link); ok {
				// Text for a given link is assumed stable; refresh the
				// metadata without paying for a second embedding.
				report.Updated++
				updates = append(updates, record.Item(existing.Origin, existing.Embedding))
				continue
			}

			description := record.Description
			if p.markdown != nil {
				description = p.markdown.PlainText(description)
			}
			fresh = append(fresh, record)
			freshTexts = append(freshTexts, record.EmbedText(origin, description))
		}

		embeddings, err := p.embedChunked(ctx, freshTexts)
		if err != nil {
			return nil, nil, errors.EmbeddingUnavailable("failed to embed harvest batch", err)
		}

		added := make([]*store.Item, 0, len(fresh)+len(updates))
		for i := range fresh {
			added = append(added, fresh[i].Item(origin, embeddings[i]))
		}
		report.Added = len(added)
		added = append(added, updates...)

		return current.With(added...), added, nil
	})
	if err != nil {
		if _, ok := err.(*errors.CoreError); ok {
			return nil, err
		}
		// The only uncoded failure out of the merge is driver persistence.
		return nil, errors.StoreFailure("failed to persist harvest batch", err)
	}

	if p.metrics != nil {
		p.metrics.IngestedRecords.WithLabelValues("added").Add(float64(report.Added))
		p.metrics.IngestedRecords.WithLabelValues("updated").Add(float64(report.Updated))
		p.metrics.DroppedRecords.Add(float64(report.Dropped))
		p.metrics.CatalogSize.Set(float64(p.store.Catalog().Len()))
	}
	p.logger.Info("harvest batch merged",
		observability.LogFieldBatchID, report.BatchID,
		"origin", string(origin),
		"total", report.Total,
		"added", report.Added,
		"updated", report.Updated,
		"dropped", report.Dropped,
		"catalog_size", p.store.Catalog().Len())

	return report, nil
}

// embedChunked embeds texts in chunks with bounded concurrency, keeping the
// result aligned with the input order.
func (p *Pipeline) embedChunked(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	sem := semaphore.NewWeighted(embedConcurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for start := 0; start < len(texts); start += embedChunkSize {
		end := start + embedChunkSize
		if end > len(texts) {
			end = len(texts)
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer sem.Release(1)

			vectors, err := p.embedder.EmbedBatch(ctx, texts[start:end])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(embeddings[start:end], vectors)
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return embeddings, nil
}
