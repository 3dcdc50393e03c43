package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/metrics"
	"IdeaValidator/internal/usecase"
)

// Handlers serves the discovery use cases.
type Handlers struct {
	analyzer usecase.Analyzer
	matcher  *usecase.Matcher
	catalog  *config.Catalog
	limits   config.PipelineConfig
	metrics  *metrics.Manager
}

// NewHandlers wires the use cases behind the HTTP routes.
func NewHandlers(analyzer usecase.Analyzer, matcher *usecase.Matcher, catalog *config.Catalog, limits config.PipelineConfig, m *metrics.Manager) *Handlers {
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	if matcher == nil {
		matcher = usecase.NewMatcher(catalog)
	}
	return &Handlers{analyzer: analyzer, matcher: matcher, catalog: catalog, limits: limits, metrics: m}
}

// Register mounts every route on r.
func (h *Handlers) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/analyze", h.Analyze)
	v1.POST("/match", h.Match)
	v1.POST("/revenue", h.Revenue)
	v1.GET("/categories", h.Categories)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type analyzeRequest struct {
	Category string `json:"category"`
	Limit    *int   `json:"limit"`
}

type revenueRequest struct {
	PeopleAffected   *int    `json:"people_affected"`
	WillingnessToPay *string `json:"willingness_to_pay"`
}

type categoryResponse struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Subreddits  []string `json:"subreddits"`
	Keywords    []string `json:"keywords"`
	TypicalCost int      `json:"typical_cost"`
	Complexity  string   `json:"complexity"`
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Analyze runs the pipeline for one category.
func (h *Handlers) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	limit := h.limits.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit <= 0 {
		badRequest(c, "limit must be positive")
		return
	}
	if h.limits.MaxLimit > 0 && limit > h.limits.MaxLimit {
		limit = h.limits.MaxLimit
	}

	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "unavailable", Message: "analysis is not configured"})
		return
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), req.Category, limit)
	if err != nil {
		_ = c.Error(err)
		switch {
		case domain.IsSourceConnection(err):
			c.JSON(http.StatusBadGateway, errorResponse{Error: "source_unavailable", Message: err.Error()})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "timeout", Message: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// Match ranks categories for a user profile.
func (h *Handlers) Match(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		badRequest(c, "invalid profile: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, h.matcher.Rank(profile))
}

// Revenue projects revenue scenarios for a signal.
func (h *Handlers) Revenue(c *gin.Context) {
	var req revenueRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	in := domain.RevenueInput{
		PeopleAffected:   usecase.DefaultPeopleAffected,
		WillingnessToPay: domain.WTPLow,
	}
	if req.PeopleAffected != nil {
		if *req.PeopleAffected < 0 {
			badRequest(c, "people_affected must not be negative")
			return
		}
		in.PeopleAffected = *req.PeopleAffected
	}
	if req.WillingnessToPay != nil {
		in.WillingnessToPay = domain.WillingnessToPay(strings.ToLower(strings.TrimSpace(*req.WillingnessToPay)))
	}
	c.JSON(http.StatusOK, usecase.EstimateRevenue(in))
}

// Categories lists the category table.
func (h *Handlers) Categories(c *gin.Context) {
	names := h.catalog.Names()
	out := make([]categoryResponse, 0, len(names))
	for _, name := range names {
		cat := h.catalog.Lookup(name)
		out = append(out, categoryResponse{
			Name:        cat.Name,
			DisplayName: usecase.DisplayName(cat.Name),
			Subreddits:  cat.Subreddits,
			Keywords:    cat.Keywords,
			TypicalCost: cat.TypicalCost,
			Complexity:  cat.Complexity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"default": h.catalog.DefaultName(), "categories": out})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "bad_request", Message: msg})
}
