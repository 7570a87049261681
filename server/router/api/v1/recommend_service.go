package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uwnexus/watsnew/internal/observability"
)

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Query  string `json:"query"`
	TopK   int    `json:"top_k"`
	UserID string `json:"user_id"`
}

// RecommendedItem is one entry in the recommendation response.
type RecommendedItem struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	SourceLabel string  `json:"source_label"`
	ItemType    string  `json:"item_type"`
	MatchScore  float64 `json:"match_score"`
}

// RecommendResponse is the body of a successful recommendation call.
type RecommendResponse struct {
	Query   string            `json:"query"`
	Results []RecommendedItem `json:"results"`
}

// Recommend ranks the catalog against the query and returns the top unseen
// items for the user. Anonymous requests (empty user_id) skip the seen filter.
func (s *APIV1Service) Recommend(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
		reqCtx.UserID = req.UserID
	}

	ranked, err := s.Recommender.Recommend(c.Request().Context(), req.Query, req.TopK, req.UserID)
	if err != nil {
		return writeError(c, err)
	}

	results := make([]RecommendedItem, 0, len(ranked))
	for _, scored := range ranked {
		results = append(results, RecommendedItem{
			Title:       scored.Item.Title,
			Link:        scored.Item.Link,
			SourceLabel: scored.Item.SourceLabel,
			ItemType:    scored.Item.ItemType,
			MatchScore:  scored.MatchScore,
		})
	}
	return c.JSON(http.StatusOK, RecommendResponse{Query: req.Query, Results: results})
}
