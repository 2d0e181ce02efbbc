package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/services"
)

// ReviewRequest is the payload of POST /reviews.
type ReviewRequest struct {
	SalonID string `json:"salon_id" binding:"required"`
	Rating  int    `json:"rating" example:"5"`
	Comment string `json:"comment" example:"Lovely staff"`
}

// ReviewPatchRequest is a partial review update.
type ReviewPatchRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// ListSalonReviews godoc
// @ID          listSalonReviews
// @Summary     A salon's reviews with their authors
// @Tags        Reviews
// @Produce     json
// @Param       id   path      string  true  "Salon ID"
// @Success     200  {array}   services.ReviewView
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /salons/{id}/reviews [get]
func (h *Handlers) ListSalonReviews(c *gin.Context) {
	list, err := h.reviews.ListForSalon(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// CreateReview godoc
// @ID          createReview
// @Summary     Review a salon
// @Description Recomputes the salon rating and review count.
// @Tags        Reviews
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ReviewRequest  true  "Review"
// @Success     201   {object}  services.ReviewView
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /reviews [post]
func (h *Handlers) CreateReview(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	rv, err := h.reviews.Create(c.Request.Context(), cl, req.SalonID, req.Rating, req.Comment)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusCreated, rv)
}

// UpdateReview godoc
// @ID          updateReview
// @Summary     Edit own review
// @Tags        Reviews
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                       true  "Review ID"
// @Param       body  body      handlers.ReviewPatchRequest  true  "Changes"
// @Success     200   {object}  domain.Review
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /reviews/{id} [patch]
func (h *Handlers) UpdateReview(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req ReviewPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	rv, err := h.reviews.Update(c.Request.Context(), cl, c.Param("id"), services.ReviewPatch{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, rv)
}

// DeleteReview godoc
// @ID          deleteReview
// @Summary     Delete own review
// @Tags        Reviews
// @Security    BearerAuth
// @Param       id  path  string  true  "Review ID"
// @Success     204
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /reviews/{id} [delete]
func (h *Handlers) DeleteReview(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	deleted, err := h.reviews.Delete(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	if !deleted {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrReviewNotFound.Error())
		return
	}
	noContent(c)
}
