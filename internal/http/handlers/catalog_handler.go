package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/services"
)

// ServiceRequest is the payload of POST /services.
type ServiceRequest struct {
	SalonID         string  `json:"salon_id" binding:"required"`
	Name            string  `json:"name" binding:"required" example:"Haircut"`
	Description     string  `json:"description" example:"Wash, cut and blow-dry"`
	Price           int     `json:"price" example:"200"`
	Duration        int     `json:"duration" example:"45"`
	Category        string  `json:"category" example:"Hair"`
	Image           *string `json:"image,omitempty"`
	IsPopular       bool    `json:"is_popular"`
	DiscountedPrice *int    `json:"discounted_price,omitempty" example:"180"`
}

// ServicePatchRequest is a partial service update. ClearDiscount drops the
// discounted price.
type ServicePatchRequest struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Price           *int    `json:"price,omitempty"`
	Duration        *int    `json:"duration,omitempty"`
	Category        *string `json:"category,omitempty"`
	Image           *string `json:"image,omitempty"`
	IsPopular       *bool   `json:"is_popular,omitempty"`
	DiscountedPrice *int    `json:"discounted_price,omitempty"`
	ClearDiscount   bool    `json:"clear_discount,omitempty"`
}

// ListSalonServices godoc
// @ID          listSalonServices
// @Summary     A salon's services
// @Tags        Services
// @Produce     json
// @Param       id   path      string  true  "Salon ID"
// @Success     200  {array}   domain.Service
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /salons/{id}/services [get]
func (h *Handlers) ListSalonServices(c *gin.Context) {
	list, err := h.catalog.ListForSalon(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// CreateService godoc
// @ID          createService
// @Summary     Add a service to an owned salon
// @Tags        Services
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ServiceRequest  true  "Service"
// @Success     201   {object}  domain.Service
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /services [post]
func (h *Handlers) CreateService(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req ServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalog.Create(c.Request.Context(), cl, services.ServiceInput{
		SalonID:         req.SalonID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Duration:        req.Duration,
		Category:        req.Category,
		Image:           req.Image,
		IsPopular:       req.IsPopular,
		DiscountedPrice: req.DiscountedPrice,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusCreated, svc)
}

// UpdateService godoc
// @ID          updateService
// @Summary     Edit a service
// @Description Existing bookings keep the price they were made at.
// @Tags        Services
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                        true  "Service ID"
// @Param       body  body      handlers.ServicePatchRequest  true  "Changes"
// @Success     200   {object}  domain.Service
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /services/{id} [patch]
func (h *Handlers) UpdateService(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req ServicePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalog.Update(c.Request.Context(), cl, c.Param("id"), services.ServicePatch{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Duration:        req.Duration,
		Category:        req.Category,
		Image:           req.Image,
		IsPopular:       req.IsPopular,
		DiscountedPrice: req.DiscountedPrice,
		ClearDiscount:   req.ClearDiscount,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, svc)
}

// DeleteService godoc
// @ID          deleteService
// @Summary     Remove a service
// @Tags        Services
// @Security    BearerAuth
// @Param       id  path  string  true  "Service ID"
// @Success     204
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Service has bookings"
// @Router      /services/{id} [delete]
func (h *Handlers) DeleteService(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	deleted, err := h.catalog.Delete(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	if !deleted {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrServiceNotFound.Error())
		return
	}
	noContent(c)
}
