package recommend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/uwnexus/watsnew/plugin/ai"
	"github.com/uwnexus/watsnew/server/internal/errors"
	"github.com/uwnexus/watsnew/internal/observability"
	"github.com/uwnexus/watsnew/server/ledger"
	"github.com/uwnexus/watsnew/store"
)

const (
	// DefaultTopK is used when the caller does not bound the result count.
	DefaultTopK = 5

	maxQueryLength = 1000
)

// Recommender composes the embedding provider, the catalog and the
// interaction ledger into the two operations the API layer calls.
type Recommender struct {
	store    *store.Store
	embedder ai.EmbeddingService
	ledger   ledger.Ledger
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewRecommender creates a recommender. The ledger is injected rather than
// ambient so tests can construct isolated instances.
func NewRecommender(st *store.Store, embedder ai.EmbeddingService, lg ledger.Ledger, metrics *observability.Metrics) *Recommender {
	return &Recommender{
		store:    st,
		embedder: embedder,
		ledger:   lg,
		metrics:  metrics,
		logger:   slog.Default(),
	}
}

// Recommend returns up to topK unseen items ranked by similarity to the
// query. Fetching a feed is read-only: it never marks items seen, so the
// call is idempotent and safe to retry. Seen state changes only through
// RecordInteraction.
func (r *Recommender) Recommend(ctx context.Context, query string, topK int, userID string) ([]ScoredItem, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		r.countRecommend("invalid")
		return nil, errors.InvalidArgument("query must not be empty")
	}
	if len(query) > maxQueryLength {
		r.countRecommend("invalid")
		return nil, errors.InvalidArgumentf("query too long: maximum %d characters, got %d", maxQueryLength, len(query))
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	catalog := r.store.Catalog()
	if catalog.Len() == 0 {
		// An empty catalog is not an error; there is simply nothing to rank.
		r.countRecommend("empty")
		return []ScoredItem{}, nil
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.countRecommend("error")
		if ctx.Err() != nil {
			return nil, errors.ContextCanceled(ctx.Err())
		}
		return nil, errors.EmbeddingUnavailable("failed to embed query", err)
	}

	// Rank the whole catalog so post-filtering can never starve the result,
	// then truncate after the seen filter.
	ranked := Rank(queryVector, catalog, catalog.Len())

	if userID != "" {
		ranked = r.filterSeen(ctx, userID, ranked)
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	if r.metrics != nil {
		r.metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	}
	r.countRecommend("ok")
	r.logger.Debug("recommendations served",
		observability.LogFieldQueryLen, len(query),
		"top_k", topK,
		"results", len(ranked),
		observability.LogFieldDuration, time.Since(start).Milliseconds())

	return ranked, nil
}

// RecordInteraction marks a link seen (and liked for ActionLike) for a user.
// The link is not validated against the catalog; recording is
// link-identity-based.
func (r *Recommender) RecordInteraction(ctx context.Context, userID, link, rawAction string) (ledger.Action, ledger.UserStats, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ledger.UserStats{}, errors.InvalidArgument("user_id must not be empty")
	}
	if strings.TrimSpace(link) == "" {
		return "", ledger.UserStats{}, errors.InvalidArgument("link must not be empty")
	}
	action, err := ledger.ParseAction(rawAction)
	if err != nil {
		return "", ledger.UserStats{}, errors.InvalidArgument(err.Error())
	}

	stats, err := r.ledger.Record(ctx, userID, link, action)
	if err != nil {
		return "", ledger.UserStats{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to record interaction")
	}

	if r.metrics != nil {
		r.metrics.InteractionRequests.WithLabelValues(string(action)).Inc()
	}
	return action, stats, nil
}

// filterSeen removes items the user has already seen, preserving order.
func (r *Recommender) filterSeen(ctx context.Context, userID string, ranked []ScoredItem) []ScoredItem {
	links := make([]string, len(ranked))
	for i, s := range ranked {
		links[i] = s.Item.Link
	}
	unseen := r.ledger.FilterSeen(ctx, userID, links)
	keep := make(map[string]struct{}, len(unseen))
	for _, link := range unseen {
		keep[link] = struct{}{}
	}

	filtered := ranked[:0:0]
	for _, s := range ranked {
		if _, ok := keep[s.Item.Link]; ok {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func (r *Recommender) countRecommend(outcome string) {
	if r.metrics != nil {
		r.metrics.RecommendRequests.WithLabelValues(outcome).Inc()
	}
}
