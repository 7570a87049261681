// Package recommend holds the similarity ranker and the recommendation
// orchestrator, the only entry points the API layer calls.
package recommend

import (
	"math"
	"sort"

	"github.com/uwnexus/watsnew/store"
)

// ScoredItem pairs a catalog item with its presentation score.
type ScoredItem struct {
	Item *store.Item
	// MatchScore is the cosine similarity scaled to 0-100, two decimals.
	// Negative similarity floors at 0.
	MatchScore float64

	// cosine keeps the raw similarity for ordering, so presentation
	// rounding cannot reorder near-equal results.
	cosine float64
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// matchScore converts a raw cosine similarity into a 0-100 percentage with
// two decimals.
func matchScore(cosine float64) float64 {
	if cosine < 0 {
		cosine = 0
	}
	if cosine > 1 {
		cosine = 1
	}
	return math.Round(cosine*100*100) / 100
}

// Rank scores every catalog item against the query vector and returns up to
// topK results, highest first. The whole catalog is scanned; at this scale
// correctness beats an approximate index. Ties keep catalog insertion order,
// so results are reproducible.
func Rank(queryVector []float32, catalog *store.Catalog, topK int) []ScoredItem {
	items := catalog.Items()
	if len(items) == 0 || topK <= 0 {
		return nil
	}

	scored := make([]ScoredItem, 0, len(items))
	for _, item := range items {
		cosine := CosineSimilarity(queryVector, item.Embedding)
		scored = append(scored, ScoredItem{
			Item:       item,
			MatchScore: matchScore(cosine),
			cosine:     cosine,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].cosine > scored[j].cosine
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
