// Bucket list HTTP handlers.
//
// This file exposes REST endpoints for the persisted bucket list overlay:
//   - GET    /users/{id}/bucket-list                  (list, ETag support)
//   - POST   /users/{id}/bucket-list                  (add, idempotent)
//   - DELETE /users/{id}/bucket-list/{item}           (remove)
//   - PATCH  /users/{id}/bucket-list/{item}/checked   (toggle)
//
// Mutations are idempotent at the API level: re-adding an existing item
// returns 200 with the existing entry instead of 409.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-purchase-insights/internal/domain"
)

//
// DTOs
//

// AddBucketItemRequest is the JSON payload for adding a bucket list entry.
type AddBucketItemRequest struct {
	// ItemName identifies the item; unique per user.
	ItemName string `json:"item_name" binding:"required,min=1,max=255" example:"Oat Milk"`
	// Category optionally records the item's category.
	Category string `json:"category" example:"Groceries"`
	// Source records where the entry came from: "recommended" or "user"
	// (default "user").
	Source string `json:"source" example:"recommended"`
}

// BucketListResponse wraps a user's bucket list entries.
type BucketListResponse struct {
	Items []domain.BucketItem `json:"items"`
	Count int                 `json:"count"`
}

// ListBucketItems godoc
// @ID          listBucketItems
// @Summary     List bucket list entries
// @Description Returns the user's bucket list ordered by when entries were added. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Bucket
// @Produce     json
//
// @Param       id             path    string  true  "User ID"                     example(CUST-0042)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"bucket:CUST-0042:3:1718200000\")
//
// @Success     200  {object} handlers.BucketListResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/bucket-list [get]
func (h *Handlers) ListBucketItems(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.Param("id")

	// ETag pre-check (best effort).
	if count, maxTS, err := h.bucket.Stats(ctx, uid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"bucket:%s:%d:%d"`, uid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.bucket.List(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, BucketListResponse{Items: items, Count: len(items)})
}

// AddBucketItem godoc
// @ID          addBucketItem
// @Summary     Add a bucket list entry
// @Description Adds an item to the user's bucket list. Adding an item that is already present returns the existing entry with 200 instead of creating a duplicate.
// @Tags        Bucket
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                           true  "User ID"  example(CUST-0042)
// @Param       body  body  handlers.AddBucketItemRequest    true  "Entry to add"
//
// @Success     201  {object} domain.BucketItem "Created"
// @Success     200  {object} domain.BucketItem "Already present"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/bucket-list [post]
func (h *Handlers) AddBucketItem(c *gin.Context) {
	var req AddBucketItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: item_name required")
		return
	}

	item, created, err := h.bucket.Add(c.Request.Context(), c.Param("id"),
		strings.TrimSpace(req.ItemName), strings.TrimSpace(req.Category), strings.TrimSpace(req.Source))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, item)
}

// RemoveBucketItem godoc
// @ID          removeBucketItem
// @Summary     Remove a bucket list entry
// @Description Deletes an item from the user's bucket list.
// @Tags        Bucket
// @Produce     json
//
// @Param       id    path  string  true  "User ID"    example(CUST-0042)
// @Param       item  path  string  true  "Item name"  example(Oat Milk)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Entry not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/bucket-list/{item} [delete]
func (h *Handlers) RemoveBucketItem(c *gin.Context) {
	if err := h.bucket.Remove(c.Request.Context(), c.Param("id"), c.Param("item")); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}

// ToggleBucketItem godoc
// @ID          toggleBucketItem
// @Summary     Toggle a bucket list entry's checked flag
// @Description Flips the checked state of an item on the user's bucket list and returns the updated entry.
// @Tags        Bucket
// @Produce     json
//
// @Param       id    path  string  true  "User ID"    example(CUST-0042)
// @Param       item  path  string  true  "Item name"  example(Oat Milk)
//
// @Success     200  {object} domain.BucketItem
// @Failure     404  {object} handlers.ErrorResponse "Entry not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/bucket-list/{item}/checked [patch]
func (h *Handlers) ToggleBucketItem(c *gin.Context) {
	item, err := h.bucket.Toggle(c.Request.Context(), c.Param("id"), c.Param("item"))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}
