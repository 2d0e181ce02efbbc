package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/http/middleware"
	"github.com/tbourn/go-salon-backend/internal/services"
)

// HeaderIdempotentReplay marks a response served from an earlier request
// with the same Idempotency-Key.
const HeaderIdempotentReplay = "Idempotent-Replayed"

// BookingRequest is the payload of POST /bookings.
type BookingRequest struct {
	SalonID   string    `json:"salon_id" binding:"required"`
	ServiceID string    `json:"service_id" binding:"required"`
	Date      time.Time `json:"date" example:"2026-11-02T14:30:00Z"`
}

// BookingStatusRequest is the payload of PUT /bookings/{id}/status.
type BookingStatusRequest struct {
	Status string `json:"status" binding:"required" enums:"pending,confirmed,cancelled,completed" example:"confirmed"`
}

// CreateBooking godoc
// @ID          createBooking
// @Summary     Book a service
// @Description Snapshots the service's effective price. Retrying with the same Idempotency-Key returns the first booking.
// @Tags        Bookings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header    string                   false  "Client retry key"
// @Param       body             body      handlers.BookingRequest  true   "Booking"
// @Success     201              {object}  domain.Booking
// @Header      201              {string}  Idempotent-Replayed  "true when replayed"
// @Failure     400              {object}  handlers.ErrorResponse
// @Failure     404              {object}  handlers.ErrorResponse  "Salon or service not found"
// @Router      /bookings [post]
func (h *Handlers) CreateBooking(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)
	b, replayed, err := h.bookings.CreateOnce(c.Request.Context(), cl, services.CreateBookingInput{
		SalonID:   req.SalonID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
	}, key)
	if err != nil {
		failFromError(c, err)
		return
	}
	if replayed {
		c.Header(HeaderIdempotentReplay, "true")
	}
	ok(c, http.StatusCreated, b)
}

// GetBooking godoc
// @ID          getBooking
// @Summary     Booking details
// @Tags        Bookings
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Booking ID"
// @Success     200  {object}  services.BookingView
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /bookings/{id} [get]
func (h *Handlers) GetBooking(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// UpdateBookingStatus godoc
// @ID          updateBookingStatus
// @Summary     Move a booking along its lifecycle
// @Description The salon owner may set any legal status; the customer may only cancel.
// @Tags        Bookings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                         true  "Booking ID"
// @Param       body  body      handlers.BookingStatusRequest  true  "New status"
// @Success     200   {object}  domain.Booking
// @Failure     400   {object}  handlers.ErrorResponse  "Unknown status"
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse  "Illegal transition"
// @Router      /bookings/{id}/status [put]
func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req BookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bookings.UpdateStatus(c.Request.Context(), cl, c.Param("id"), req.Status)
	if err != nil {
		failFromError(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("booking_id", b.ID).
		Str("status", string(b.Status)).
		Msg("booking status changed")
	ok(c, http.StatusOK, b)
}

// ListMyBookings godoc
// @ID          listMyBookings
// @Summary     The caller's bookings
// @Tags        Bookings
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   services.BookingView
// @Router      /user/bookings [get]
func (h *Handlers) ListMyBookings(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	list, err := h.bookings.ListForCustomer(c.Request.Context(), cl)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// ListOwnerBookings godoc
// @ID          listOwnerBookings
// @Summary     Bookings across the caller's salons
// @Tags        Bookings
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   services.BookingView
// @Router      /owner/bookings [get]
func (h *Handlers) ListOwnerBookings(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	list, err := h.bookings.ListForOwner(c.Request.Context(), cl)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}
