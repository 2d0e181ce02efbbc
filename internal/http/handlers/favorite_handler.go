package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FavoriteRequest is the payload of POST /favorites.
type FavoriteRequest struct {
	SalonID string `json:"salon_id" binding:"required"`
}

// FavoriteStatus answers GET /favorites/check/{salonId}.
type FavoriteStatus struct {
	IsFavorite bool `json:"is_favorite"`
}

// ListFavorites godoc
// @ID          listFavorites
// @Summary     The caller's favorite salons
// @Tags        Favorites
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}  domain.Salon
// @Router      /user/favorites [get]
func (h *Handlers) ListFavorites(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	list, err := h.favorites.List(c.Request.Context(), cl)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// AddFavorite godoc
// @ID          addFavorite
// @Summary     Favorite a salon
// @Tags        Favorites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.FavoriteRequest  true  "Salon"
// @Success     201   {object}  domain.Favorite
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse  "Already a favorite"
// @Router      /favorites [post]
func (h *Handlers) AddFavorite(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req FavoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.favorites.Add(c.Request.Context(), cl, req.SalonID)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusCreated, f)
}

// RemoveFavorite godoc
// @ID          removeFavorite
// @Summary     Unfavorite a salon
// @Tags        Favorites
// @Produce     json
// @Security    BearerAuth
// @Param       salonId  path      string  true  "Salon ID"
// @Success     200      {object}  handlers.MessageResponse
// @Failure     404      {object}  handlers.ErrorResponse  "Not a favorite"
// @Router      /favorites/{salonId} [delete]
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	removed, err := h.favorites.Remove(c.Request.Context(), cl, c.Param("salonId"))
	if err != nil {
		failFromError(c, err)
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "favorite not found")
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "removed from favorites"})
}

// CheckFavorite godoc
// @ID          checkFavorite
// @Summary     Whether the caller favorited a salon
// @Tags        Favorites
// @Produce     json
// @Security    BearerAuth
// @Param       salonId  path      string  true  "Salon ID"
// @Success     200      {object}  handlers.FavoriteStatus
// @Router      /favorites/check/{salonId} [get]
func (h *Handlers) CheckFavorite(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	is, err := h.favorites.IsFavorite(c.Request.Context(), cl, c.Param("salonId"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, FavoriteStatus{IsFavorite: is})
}
