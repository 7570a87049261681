package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbeddingService is a deterministic, offline implementation of
// EmbeddingService. It derives a unit vector from a hash of the input text,
// so identical inputs always map to identical vectors. Used in tests and in
// demo mode when no embedding backend is configured.
type MockEmbeddingService struct {
	dimensions int
	canned     map[string][]float32
}

// NewMockEmbeddingService creates a mock embedder with the given dimension.
func NewMockEmbeddingService(dimensions int) *MockEmbeddingService {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbeddingService{
		dimensions: dimensions,
		canned:     make(map[string][]float32),
	}
}

// SetVector pins an exact vector for a given text, overriding the hash
// derivation. Handy for tests that need known similarity scores.
func (m *MockEmbeddingService) SetVector(text string, vector []float32) {
	m.canned[text] = vector
}

func (m *MockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if v, ok := m.canned[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}
	return m.derive(text), nil
}

func (m *MockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

// derive builds a unit vector from rolling FNV hashes of the text.
func (m *MockEmbeddingService) derive(text string) []float32 {
	vector := make([]float32, m.dimensions)
	var norm float64
	for i := range vector {
		h := fnv.New32a()
		h.Write([]byte(text))
		h.Write([]byte{byte(i)})
		// Map the hash into [-1, 1).
		vector[i] = float32(int32(h.Sum32())) / math.MaxInt32
		norm += float64(vector[i]) * float64(vector[i])
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}

var _ EmbeddingService = (*MockEmbeddingService)(nil)
