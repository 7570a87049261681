// Package v1 exposes the recommendation core over JSON HTTP. Handlers stay
// thin; validation and semantics live in the core packages.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uwnexus/watsnew/internal/profile"
	"github.com/uwnexus/watsnew/server/internal/errors"
	"github.com/uwnexus/watsnew/internal/observability"
	"github.com/uwnexus/watsnew/server/ledger"
	"github.com/uwnexus/watsnew/server/middleware"
	"github.com/uwnexus/watsnew/server/recommend"
	"github.com/uwnexus/watsnew/store"
)

// APIV1Service wires the core operations into an Echo instance.
type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	Recommender *recommend.Recommender
	Ledger      ledger.Ledger
	Metrics     *observability.Metrics
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, rec *recommend.Recommender, lg ledger.Ledger, metrics *observability.Metrics) *APIV1Service {
	return &APIV1Service{
		Profile:     p,
		Store:       st,
		Recommender: rec,
		Ledger:      lg,
		Metrics:     metrics,
	}
}

// Register attaches routes and middleware to the Echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.JSONSerializer = &jsonSerializer{}
	e.Use(echomw.CORS())
	e.Use(middleware.NewRateLimiter(10, 20).Middleware())
	e.Use(requestContextMiddleware())

	e.GET("/healthz", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	group := e.Group("/api/v1")
	group.POST("/recommend", s.Recommend)
	group.POST("/interactions", s.RecordInteraction)
	group.GET("/users/:id/stats", s.UserStats)
	group.GET("/feed", s.Feed)
}

// Health reports liveness, server identity and catalog size.
func (s *APIV1Service) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "online",
		"message":     "Wat's New API is running",
		"mode":        s.Profile.Mode,
		"version":     s.Profile.Version,
		"total_items": s.Store.Catalog().Len(),
	})
}

// requestContextMiddleware attaches a RequestContext to every request so
// handlers and the core log under one request ID. The ID is echoed back in
// the response header for correlation.
func requestContextMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := observability.NewRequestContext(slog.Default(), "api", "")
			c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)
			ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil {
				reqCtx.Error("request failed", err,
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path))
				return err
			}
			reqCtx.Info("request handled",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
			return nil
		}
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps core error codes onto HTTP statuses so the frontend can
// tell "fix your input" from "service unavailable".
func writeError(c echo.Context, err error) error {
	code := errors.GetCodeFromError(err, errors.ErrCodeInternal)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case errors.ErrCodeEmbeddingUnavailable:
		status = http.StatusServiceUnavailable
	case errors.ErrCodeContextCanceled:
		status = http.StatusRequestTimeout
	}
	return c.JSON(status, errorResponse{Code: string(code), Message: err.Error()})
}

// jsonSerializer swaps Echo's default encoding/json for goccy/go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if _, ok := err.(*json.UnmarshalTypeError); ok {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	if _, ok := err.(*json.SyntaxError); ok {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return err
}
