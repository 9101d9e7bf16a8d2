// Recommendation HTTP handler.
//
// GET /users/{id}/recommendations runs the replenishment heuristic for one
// user and returns a ranked, capped list of "buy again" suggestions.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-purchase-insights/internal/analysis"
)

// RecommendationsResponse wraps the ranked suggestion list.
type RecommendationsResponse struct {
	Recommendations []analysis.Recommendation `json:"recommendations"`
	Count           int                       `json:"count"`
}

// GetRecommendations godoc
// @ID          getRecommendations
// @Summary     Get replenishment recommendations
// @Description Returns ranked "buy again" suggestions for a user based on purchase cadence, recency, and price stability. Users with no qualifying items receive an empty list.
// @Tags        Recommendations
// @Produce     json
//
// @Param       id     path   string  true  "User ID"                         example(CUST-0042)
// @Param       top_n  query  int     false "Maximum number of suggestions"   minimum(1) default(10)
//
// @Success     200  {object}  handlers.RecommendationsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /users/{id}/recommendations [get]
func (h *Handlers) GetRecommendations(c *gin.Context) {
	topN := 0
	if raw := strings.TrimSpace(c.Query("top_n")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "top_n must be an integer")
			return
		}
		topN = n
	}

	recs, err := h.reco.Recommend(c.Request.Context(), c.Param("id"), topN)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if recs == nil {
		recs = []analysis.Recommendation{}
	}
	ok(c, http.StatusOK, RecommendationsResponse{Recommendations: recs, Count: len(recs)})
}
