// Insights HTTP handlers.
//
// This file exposes the read-only analytics endpoints:
//   - GET /users                          (all user ids)
//   - GET /categories                     (all categories)
//   - GET /users/{id}/purchases           (filtered purchase history)
//   - GET /users/{id}/spending-summary    (totals + category shares)
//   - GET /users/{id}/monthly-trends      (gap-filled monthly spend)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-purchase-insights/internal/analysis"
	"github.com/tbourn/go-purchase-insights/internal/domain"
	"github.com/tbourn/go-purchase-insights/internal/search"
	"github.com/tbourn/go-purchase-insights/internal/services"
	"github.com/tbourn/go-purchase-insights/internal/store"
)

//
// Service contracts (context-aware)
//

// InsightsService defines the read-only analytics operations consumed by the
// HTTP handlers. Implementations must be safe for concurrent use.
type InsightsService interface {
	// Users returns every user id present in the dataset, sorted.
	Users(ctx context.Context) []string
	// Categories returns every distinct category, sorted.
	Categories(ctx context.Context) []string
	// Purchases returns the user's records passing the filter, date-ascending.
	Purchases(ctx context.Context, userID string, f services.PurchaseFilter) ([]store.PurchaseRecord, error)
	// SpendingSummary aggregates the user's filtered records.
	SpendingSummary(ctx context.Context, userID string, f services.PurchaseFilter) (analysis.Summary, error)
	// MonthlyTrends returns month-by-month spend with silent months zero-filled.
	MonthlyTrends(ctx context.Context, userID string) ([]analysis.MonthTrend, error)
	// CategoryBreakdown returns each category's total and share of spend.
	CategoryBreakdown(ctx context.Context, userID string, f services.PurchaseFilter) (map[string]analysis.CategoryShare, error)
}

// RecommendationService defines the replenishment recommendation operation.
type RecommendationService interface {
	// Recommend returns up to topN ranked suggestions for userID.
	Recommend(ctx context.Context, userID string, topN int) ([]analysis.Recommendation, error)
}

// BucketService defines bucket list reads and mutations consumed by handlers.
//
// Implementations must be safe for concurrent use; mutations on the same
// user are expected to be serialized by the implementation.
type BucketService interface {
	// List returns the user's bucket list; unknown users yield an empty list.
	List(ctx context.Context, userID string) ([]domain.BucketItem, error)
	// Stats returns entry count and latest update time, for ETag generation.
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
	// Add puts an item on the list; created is false when it already existed.
	Add(ctx context.Context, userID, itemName, category, source string) (item *domain.BucketItem, created bool, err error)
	// Remove deletes an item from the list.
	Remove(ctx context.Context, userID, itemName string) error
	// Toggle flips an item's checked flag and returns the updated entry.
	Toggle(ctx context.Context, userID, itemName string) (*domain.BucketItem, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for analytics, recommendations, the
// bucket list, and item search. It depends on abstract service interfaces to
// keep transport concerns separate from business logic.
type Handlers struct {
	insights InsightsService
	reco     RecommendationService
	bucket   BucketService
	index    search.Index
}

// New constructs and returns a Handlers instance bound to the given services.
func New(insights InsightsService, reco RecommendationService, bucket BucketService, idx search.Index) *Handlers {
	return &Handlers{insights: insights, reco: reco, bucket: bucket, index: idx}
}

//
// DTOs
//

// UsersResponse lists every user id present in the dataset.
type UsersResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// CategoriesResponse lists every distinct purchase category.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Count      int      `json:"count"`
}

// PurchasesResponse wraps a user's filtered purchase history.
type PurchasesResponse struct {
	Purchases []store.PurchaseRecord `json:"purchases"`
	Count     int                    `json:"count"`
}

// SpendingSummaryResponse combines the aggregate summary with per-category
// spend shares.
type SpendingSummaryResponse struct {
	analysis.Summary
	CategoryShares map[string]analysis.CategoryShare `json:"category_shares"`
}

// MonthlyTrendsResponse wraps the chronological month-by-month spend series.
type MonthlyTrendsResponse struct {
	Trends []analysis.MonthTrend `json:"trends"`
	Count  int                   `json:"count"`
}

//
// Helpers
//

const dateLayout = "2006-01-02"

// parseFilter extracts and validates the common query filters
// (month, category, from, to). On invalid input it writes a 400 response
// and returns false.
func parseFilter(c *gin.Context) (services.PurchaseFilter, bool) {
	var f services.PurchaseFilter

	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "month must be an integer")
			return f, false
		}
		f.Month = m
	}
	f.Category = strings.TrimSpace(c.Query("category"))

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from must be a YYYY-MM-DD date")
			return f, false
		}
		f.From = t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "to must be a YYYY-MM-DD date")
			return f, false
		}
		f.To = t
	}
	return f, true
}

// mapServiceError translates service-layer sentinel errors into the standard
// envelope. Unknown errors become 500 internal_error.
func mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMonth),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidTopN),
		errors.Is(err, services.ErrEmptyItemName),
		errors.Is(err, services.ErrInvalidSource):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrBucketItemNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Description Returns every user id present in the loaded dataset.
// @Tags        Insights
// @Produce     json
//
// @Success     200  {object}  handlers.UsersResponse
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users := h.insights.Users(c.Request.Context())
	ok(c, http.StatusOK, UsersResponse{Users: users, Count: len(users)})
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Description Returns every distinct purchase category in the loaded dataset.
// @Tags        Insights
// @Produce     json
//
// @Success     200  {object}  handlers.CategoriesResponse
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	cats := h.insights.Categories(c.Request.Context())
	ok(c, http.StatusOK, CategoriesResponse{Categories: cats, Count: len(cats)})
}

// GetPurchases godoc
// @ID          getPurchases
// @Summary     Get purchase history
// @Description Returns a user's purchases, optionally filtered by month, category, and date range. Unknown users yield an empty list.
// @Tags        Insights
// @Produce     json
//
// @Param       id        path   string  true  "User ID"                example(CUST-0042)
// @Param       month     query  int     false "Calendar month filter"  minimum(1) maximum(12)
// @Param       category  query  string  false "Category filter"        example(Groceries)
// @Param       from      query  string  false "Start date (inclusive)" format(date) example(2024-01-01)
// @Param       to        query  string  false "End date (inclusive)"   format(date) example(2024-06-30)
//
// @Success     200  {object}  handlers.PurchasesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /users/{id}/purchases [get]
func (h *Handlers) GetPurchases(c *gin.Context) {
	f, okF := parseFilter(c)
	if !okF {
		return
	}
	recs, err := h.insights.Purchases(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if recs == nil {
		recs = []store.PurchaseRecord{}
	}
	ok(c, http.StatusOK, PurchasesResponse{Purchases: recs, Count: len(recs)})
}

// GetSpendingSummary godoc
// @ID          getSpendingSummary
// @Summary     Get spending summary
// @Description Returns total spend, purchase count, average order value, unique item count, per-category totals, and category spend shares for a user.
// @Tags        Insights
// @Produce     json
//
// @Param       id        path   string  true  "User ID"                example(CUST-0042)
// @Param       month     query  int     false "Calendar month filter"  minimum(1) maximum(12)
// @Param       category  query  string  false "Category filter"        example(Groceries)
//
// @Success     200  {object}  handlers.SpendingSummaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /users/{id}/spending-summary [get]
func (h *Handlers) GetSpendingSummary(c *gin.Context) {
	f, okF := parseFilter(c)
	if !okF {
		return
	}
	ctx := c.Request.Context()
	uid := c.Param("id")

	sum, err := h.insights.SpendingSummary(ctx, uid, f)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	shares, err := h.insights.CategoryBreakdown(ctx, uid, f)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, SpendingSummaryResponse{Summary: sum, CategoryShares: shares})
}

// GetMonthlyTrends godoc
// @ID          getMonthlyTrends
// @Summary     Get monthly spending trends
// @Description Returns the user's chronological month-by-month spend. Months inside the observed range with no purchases are emitted with zeros.
// @Tags        Insights
// @Produce     json
//
// @Param       id  path  string  true  "User ID"  example(CUST-0042)
//
// @Success     200  {object}  handlers.MonthlyTrendsResponse
// @Router      /users/{id}/monthly-trends [get]
func (h *Handlers) GetMonthlyTrends(c *gin.Context) {
	trends, err := h.insights.MonthlyTrends(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if trends == nil {
		trends = []analysis.MonthTrend{}
	}
	ok(c, http.StatusOK, MonthlyTrendsResponse{Trends: trends, Count: len(trends)})
}
