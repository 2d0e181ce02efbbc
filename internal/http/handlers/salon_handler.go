package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
	"github.com/tbourn/go-salon-backend/internal/services"
	"github.com/tbourn/go-salon-backend/internal/utils"
)

// SalonRequest is the payload of POST /salons.
type SalonRequest struct {
	Name        string            `json:"name" binding:"required" example:"Riad Beauty"`
	Description string            `json:"description" example:"Traditional hammam and hair care"`
	Location    string            `json:"location" binding:"required" example:"Marrakech"`
	Address     string            `json:"address" example:"12 Derb Sidi Bouloukat"`
	Phone       string            `json:"phone" example:"+212524000000"`
	Email       string            `json:"email" example:"hello@riad.example"`
	Images      []string          `json:"images"`
	Categories  []string          `json:"categories" example:"Hair,Spa"`
	Featured    bool              `json:"featured"`
	PriceRange  domain.PriceRange `json:"price_range"`
}

// SalonPatchRequest is a partial salon update. Rating and review count are
// derived and cannot be set.
type SalonPatchRequest struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Location    *string            `json:"location,omitempty"`
	Address     *string            `json:"address,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Email       *string            `json:"email,omitempty"`
	Images      *[]string          `json:"images,omitempty"`
	Categories  *[]string          `json:"categories,omitempty"`
	Featured    *bool              `json:"featured,omitempty"`
	PriceRange  *domain.PriceRange `json:"price_range,omitempty"`
}

// ListSalons godoc
// @ID          listSalons
// @Summary     Browse salons
// @Tags        Salons
// @Produce     json
// @Param       category  query     string  false  "Category (case-insensitive exact)"
// @Param       location  query     string  false  "Location substring (case-insensitive)"
// @Param       featured  query     bool    false  "Only featured salons"
// @Success     200       {array}   domain.Salon
// @Failure     400       {object}  handlers.ErrorResponse
// @Router      /salons [get]
func (h *Handlers) ListSalons(c *gin.Context) {
	featured, err := utils.ParseOptionalBool(c.Query("featured"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "featured must be a boolean")
		return
	}
	list, err := h.salons.List(c.Request.Context(), repo.SalonFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Location: strings.TrimSpace(c.Query("location")),
		Featured: featured,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// GetSalon godoc
// @ID          getSalon
// @Summary     Salon details
// @Tags        Salons
// @Produce     json
// @Param       id   path      string  true  "Salon ID"
// @Success     200  {object}  domain.Salon
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /salons/{id} [get]
func (h *Handlers) GetSalon(c *gin.Context) {
	s, err := h.salons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// CreateSalon godoc
// @ID          createSalon
// @Summary     List a new salon
// @Description The caller becomes the owner. Rating starts at 0.
// @Tags        Salons
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.SalonRequest  true  "Salon"
// @Success     201   {object}  domain.Salon
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     401   {object}  handlers.ErrorResponse
// @Router      /salons [post]
func (h *Handlers) CreateSalon(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req SalonRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.salons.Create(c.Request.Context(), cl, services.SalonInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Images:      req.Images,
		Categories:  req.Categories,
		Featured:    req.Featured,
		PriceRange:  req.PriceRange,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusCreated, s)
}

// UpdateSalon godoc
// @ID          updateSalon
// @Summary     Edit a salon
// @Tags        Salons
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                      true  "Salon ID"
// @Param       body  body      handlers.SalonPatchRequest  true  "Changes"
// @Success     200   {object}  domain.Salon
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /salons/{id} [patch]
func (h *Handlers) UpdateSalon(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req SalonPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.salons.Update(c.Request.Context(), cl, c.Param("id"), services.SalonPatch{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Images:      req.Images,
		Categories:  req.Categories,
		Featured:    req.Featured,
		PriceRange:  req.PriceRange,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// ListOwnedSalons godoc
// @ID          listOwnedSalons
// @Summary     Salons owned by the caller
// @Tags        Salons
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.Salon
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /owner/salons [get]
func (h *Handlers) ListOwnedSalons(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	list, err := h.salons.ListOwned(c.Request.Context(), cl)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}
