package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyText is returned when the input contains no embeddable content.
// Callers must handle this explicitly instead of embedding a zero vector,
// which would rank every item equally.
var ErrEmptyText = errors.New("text is empty or whitespace-only")

// EmbeddingService is the vector embedding service interface.
// The same service must be used at ingestion time and at query time;
// vectors produced by different models are not comparable.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

type embeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
	maxRetries int
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(cfg *EmbeddingConfig) (EmbeddingService, error) {
	if cfg.Provider == "mock" {
		return NewMockEmbeddingService(cfg.Dimensions), nil
	}

	var clientConfig openai.ClientConfig
	switch cfg.Provider {
	case "siliconflow":
		// SiliconFlow is compatible with OpenAI API
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}

	case "openai":
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	client := openai.NewClientWithConfig(clientConfig)

	return &embeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxRetries: 3,
	}, nil
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyText
		}
	}

	var vectors [][]float32
	err := s.doWithRetry(ctx, func() error {
		req := openai.EmbeddingRequest{
			Input:      texts,
			Model:      openai.EmbeddingModel(s.model),
			Dimensions: s.dimensions,
		}

		resp, err := s.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return errors.New("empty embedding response")
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = data.Embedding
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}

	return vectors, nil
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

// doWithRetry executes a function with exponential backoff retry.
func (s *embeddingService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < s.maxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("embedding request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
