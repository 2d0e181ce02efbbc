// Package handlers exposes the salon marketplace over REST. Handlers are
// transport-thin: they bind and check the request shape, call a service with
// the authenticated caller and map typed service errors to HTTP statuses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/http/middleware"
	"github.com/tbourn/go-salon-backend/internal/repo"
	"github.com/tbourn/go-salon-backend/internal/services"
)

// UserService is the account contract consumed by the auth handlers.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, login, password string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller services.Caller, patch services.UserPatch) (*domain.User, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, isSalonOwner bool) (string, error)
}

// SalonService is the salon listing contract.
type SalonService interface {
	Create(ctx context.Context, caller services.Caller, in services.SalonInput) (*domain.Salon, error)
	Get(ctx context.Context, id string) (*domain.Salon, error)
	List(ctx context.Context, f repo.SalonFilter) ([]domain.Salon, error)
	ListOwned(ctx context.Context, caller services.Caller) ([]domain.Salon, error)
	Update(ctx context.Context, caller services.Caller, id string, patch services.SalonPatch) (*domain.Salon, error)
}

// CatalogService is the contract for a salon's bookable services.
type CatalogService interface {
	Create(ctx context.Context, caller services.Caller, in services.ServiceInput) (*domain.Service, error)
	ListForSalon(ctx context.Context, salonID string) ([]domain.Service, error)
	Update(ctx context.Context, caller services.Caller, id string, patch services.ServicePatch) (*domain.Service, error)
	Delete(ctx context.Context, caller services.Caller, id string) (bool, error)
}

// ReviewService is the review contract; mutations keep the salon rating
// aggregate current.
type ReviewService interface {
	Create(ctx context.Context, caller services.Caller, salonID string, rating int, comment string) (*services.ReviewView, error)
	Update(ctx context.Context, caller services.Caller, id string, patch services.ReviewPatch) (*domain.Review, error)
	Delete(ctx context.Context, caller services.Caller, id string) (bool, error)
	ListForSalon(ctx context.Context, salonID string) ([]services.ReviewView, error)
}

// BookingService is the booking lifecycle contract.
type BookingService interface {
	CreateOnce(ctx context.Context, caller services.Caller, in services.CreateBookingInput, key string) (*domain.Booking, bool, error)
	Get(ctx context.Context, caller services.Caller, id string) (*services.BookingView, error)
	UpdateStatus(ctx context.Context, caller services.Caller, id, status string) (*domain.Booking, error)
	ListForCustomer(ctx context.Context, caller services.Caller) ([]services.BookingView, error)
	ListForOwner(ctx context.Context, caller services.Caller) ([]services.BookingView, error)
}

// FavoriteService is the favorite-set contract.
type FavoriteService interface {
	Add(ctx context.Context, caller services.Caller, salonID string) (*domain.Favorite, error)
	Remove(ctx context.Context, caller services.Caller, salonID string) (bool, error)
	IsFavorite(ctx context.Context, caller services.Caller, salonID string) (bool, error)
	List(ctx context.Context, caller services.Caller) ([]domain.Salon, error)
}

// Deps lists the services the handlers call. Every field is required.
type Deps struct {
	Users     UserService
	Tokens    TokenIssuer
	Salons    SalonService
	Catalog   CatalogService
	Reviews   ReviewService
	Bookings  BookingService
	Favorites FavoriteService
}

// Handlers groups all REST endpoints.
type Handlers struct {
	users     UserService
	tokens    TokenIssuer
	salons    SalonService
	catalog   CatalogService
	reviews   ReviewService
	bookings  BookingService
	favorites FavoriteService
}

// New binds the handlers to their services.
func New(d Deps) *Handlers {
	return &Handlers{
		users:     d.Users,
		tokens:    d.Tokens,
		salons:    d.Salons,
		catalog:   d.Catalog,
		reviews:   d.Reviews,
		bookings:  d.Bookings,
		favorites: d.Favorites,
	}
}

// caller returns the authenticated caller or answers 401. Routes behind
// middleware.RequireAuth never take the 401 branch.
func caller(c *gin.Context) (services.Caller, bool) {
	cl, found := middleware.CallerFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	}
	return cl, found
}

// bindJSON binds the body into dst or answers 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
