package v1

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwnexus/watsnew/internal/profile"
	"github.com/uwnexus/watsnew/plugin/ai"
	"github.com/uwnexus/watsnew/internal/observability"
	"github.com/uwnexus/watsnew/server/ledger"
	"github.com/uwnexus/watsnew/server/recommend"
	"github.com/uwnexus/watsnew/store"
)

// vectorAt returns a unit vector whose cosine against {1, 0} is c.
func vectorAt(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

func newTestService(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()

	p := &profile.Profile{Mode: "demo", Driver: "memory"}
	st := store.New(nil, p)

	items := []*store.Item{
		{Link: "https://a", Title: "Hackathon", SourceLabel: "web_harvester", ItemType: "event", Origin: store.OriginLocalHarvest, Embedding: vectorAt(0.9), FetchedAt: time.Now().UTC()},
		{Link: "https://b", Title: "Chess Club", SourceLabel: "Uncategorized", ItemType: "club", Origin: store.OriginStaticCatalog, Embedding: vectorAt(0.5), FetchedAt: time.Now().UTC()},
		{Link: "https://c", Title: "Fellowship", SourceLabel: "global_opportunity", ItemType: "fellowship", Origin: store.OriginGlobalHarvest, Embedding: vectorAt(0.1), FetchedAt: time.Now().UTC()},
	}
	err := st.Merge(context.Background(), func(current *store.Catalog) (*store.Catalog, []*store.Item, error) {
		return store.NewCatalog(items...), items, nil
	})
	require.NoError(t, err)

	embedder := ai.NewMockEmbeddingService(2)
	embedder.SetVector("robotics", []float32{1, 0})

	lg := ledger.NewMemoryLedger()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	rec := recommend.NewRecommender(st, embedder, lg, metrics)

	svc := NewAPIV1Service(p, st, rec, lg, metrics)
	e := echo.New()
	svc.Register(e)
	return svc, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecommendEndpoint(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/recommend", `{"query":"robotics","top_k":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "robotics", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://a", resp.Results[0].Link)
	assert.Equal(t, "https://b", resp.Results[1].Link)
	assert.InDelta(t, 90, resp.Results[0].MatchScore, 0.01)
	assert.InDelta(t, 50, resp.Results[1].MatchScore, 0.01)
}

func TestRecommendEmptyQueryIsBadRequest(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/recommend", `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ARGUMENT", resp.Code)
}

func TestRecommendFiltersSeenForUser(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/interactions", `{"user_id":"u1","link":"https://a","action":"skip"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/recommend", `{"query":"robotics","top_k":5,"user_id":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://b", resp.Results[0].Link)
	assert.Equal(t, "https://c", resp.Results[1].Link)
}

func TestInteractionEndpoint(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/interactions", `{"user_id":"u1","link":"https://a","action":"like"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InteractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "like", resp.Action)
	assert.Equal(t, 1, resp.TotalSeen)
	assert.Equal(t, 1, resp.TotalLiked)
}

func TestInteractionRejectsUnknownAction(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/interactions", `{"user_id":"u1","link":"https://a","action":"save"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "online", resp["status"])
	assert.Equal(t, "demo", resp["mode"])
	assert.EqualValues(t, 3, resp["total_items"])
}

func TestUserStatsEndpoint(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/interactions", `{"user_id":"u1","link":"https://a","action":"like"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(e, http.MethodPost, "/api/v1/interactions", `{"user_id":"u1","link":"https://b","action":"skip"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/stats", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, 2, resp.TotalSeen)
	assert.Equal(t, 1, resp.TotalLiked)

	// Unknown users report zeros rather than erroring.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/nobody/stats", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalSeen)
	assert.Equal(t, 0, resp.TotalLiked)
}

func TestResponsesCarryRequestID(t *testing.T) {
	_, e := newTestService(t)

	first := doJSON(e, http.MethodPost, "/api/v1/recommend", `{"query":"robotics"}`)
	require.Equal(t, http.StatusOK, first.Code)
	firstID := first.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, firstID)

	second := doJSON(e, http.MethodPost, "/api/v1/recommend", `{"query":"robotics"}`)
	secondID := second.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, secondID)
	assert.NotEqual(t, firstID, secondID)
}

func TestFeedEndpoint(t *testing.T) {
	_, e := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "rss")
	assert.Contains(t, rec.Body.String(), "Hackathon")
	assert.Contains(t, rec.Body.String(), "Wat&#39;s New")
}
