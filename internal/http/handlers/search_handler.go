// Item search HTTP handler.
//
// GET /items/search queries the in-memory item index built from the loaded
// dataset (token overlap over item name + category, deterministic order).
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-purchase-insights/internal/search"
	"github.com/tbourn/go-purchase-insights/internal/utils"
)

const (
	defaultSearchK = 10
	maxSearchK     = 50
)

// SearchResponse wraps item search hits.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
	Count   int             `json:"count"`
}

// SearchItems godoc
// @ID          searchItems
// @Summary     Search items
// @Description Returns the top matching items for a free-text query, scored by token overlap with item name and category.
// @Tags        Items
// @Produce     json
//
// @Param       q  query  string  true   "Free-text query"      example(oat milk)
// @Param       k  query  int     false  "Maximum result count" minimum(1) maximum(50) default(10)
//
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /items/search [get]
func (h *Handlers) SearchItems(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q is required")
		return
	}

	k := defaultSearchK
	if raw := strings.TrimSpace(c.Query("k")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "k must be an integer")
			return
		}
		k = n
	}
	k = utils.ClampInt(k, 1, maxSearchK)

	results := h.index.TopK(q, k)
	if results == nil {
		results = []search.Result{}
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Results: results, Count: len(results)})
}
