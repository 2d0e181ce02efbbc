package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/http/middleware"
	"github.com/tbourn/go-salon-backend/internal/repo"
	"github.com/tbourn/go-salon-backend/internal/services"
)

var errUnexpected = errors.New("unexpected call")

type stubUsers struct {
	register     func(context.Context, services.RegisterInput) (*domain.User, error)
	authenticate func(context.Context, string, string) (*domain.User, error)
	get          func(context.Context, string) (*domain.User, error)
	update       func(context.Context, services.Caller, services.UserPatch) (*domain.User, error)
}

func (s stubUsers) Register(ctx context.Context, in services.RegisterInput) (*domain.User, error) {
	if s.register == nil {
		return nil, errUnexpected
	}
	return s.register(ctx, in)
}

func (s stubUsers) Authenticate(ctx context.Context, login, pw string) (*domain.User, error) {
	if s.authenticate == nil {
		return nil, errUnexpected
	}
	return s.authenticate(ctx, login, pw)
}

func (s stubUsers) Get(ctx context.Context, id string) (*domain.User, error) {
	if s.get == nil {
		return nil, errUnexpected
	}
	return s.get(ctx, id)
}

func (s stubUsers) UpdateProfile(ctx context.Context, c services.Caller, p services.UserPatch) (*domain.User, error) {
	if s.update == nil {
		return nil, errUnexpected
	}
	return s.update(ctx, c, p)
}

type stubTokens struct{ err error }

func (s stubTokens) Issue(userID string, owner bool) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if owner {
		return "tok-owner-" + userID, nil
	}
	return "tok-" + userID, nil
}

type stubSalons struct {
	create    func(context.Context, services.Caller, services.SalonInput) (*domain.Salon, error)
	get       func(context.Context, string) (*domain.Salon, error)
	list      func(context.Context, repo.SalonFilter) ([]domain.Salon, error)
	listOwned func(context.Context, services.Caller) ([]domain.Salon, error)
	update    func(context.Context, services.Caller, string, services.SalonPatch) (*domain.Salon, error)
}

func (s stubSalons) Create(ctx context.Context, c services.Caller, in services.SalonInput) (*domain.Salon, error) {
	if s.create == nil {
		return nil, errUnexpected
	}
	return s.create(ctx, c, in)
}

func (s stubSalons) Get(ctx context.Context, id string) (*domain.Salon, error) {
	if s.get == nil {
		return nil, errUnexpected
	}
	return s.get(ctx, id)
}

func (s stubSalons) List(ctx context.Context, f repo.SalonFilter) ([]domain.Salon, error) {
	if s.list == nil {
		return nil, errUnexpected
	}
	return s.list(ctx, f)
}

func (s stubSalons) ListOwned(ctx context.Context, c services.Caller) ([]domain.Salon, error) {
	if s.listOwned == nil {
		return nil, errUnexpected
	}
	return s.listOwned(ctx, c)
}

func (s stubSalons) Update(ctx context.Context, c services.Caller, id string, p services.SalonPatch) (*domain.Salon, error) {
	if s.update == nil {
		return nil, errUnexpected
	}
	return s.update(ctx, c, id, p)
}

type stubCatalog struct {
	create func(context.Context, services.Caller, services.ServiceInput) (*domain.Service, error)
	list   func(context.Context, string) ([]domain.Service, error)
	update func(context.Context, services.Caller, string, services.ServicePatch) (*domain.Service, error)
	del    func(context.Context, services.Caller, string) (bool, error)
}

func (s stubCatalog) Create(ctx context.Context, c services.Caller, in services.ServiceInput) (*domain.Service, error) {
	if s.create == nil {
		return nil, errUnexpected
	}
	return s.create(ctx, c, in)
}

func (s stubCatalog) ListForSalon(ctx context.Context, id string) ([]domain.Service, error) {
	if s.list == nil {
		return nil, errUnexpected
	}
	return s.list(ctx, id)
}

func (s stubCatalog) Update(ctx context.Context, c services.Caller, id string, p services.ServicePatch) (*domain.Service, error) {
	if s.update == nil {
		return nil, errUnexpected
	}
	return s.update(ctx, c, id, p)
}

func (s stubCatalog) Delete(ctx context.Context, c services.Caller, id string) (bool, error) {
	if s.del == nil {
		return false, errUnexpected
	}
	return s.del(ctx, c, id)
}

type stubReviews struct {
	create func(context.Context, services.Caller, string, int, string) (*services.ReviewView, error)
	update func(context.Context, services.Caller, string, services.ReviewPatch) (*domain.Review, error)
	del    func(context.Context, services.Caller, string) (bool, error)
	list   func(context.Context, string) ([]services.ReviewView, error)
}

func (s stubReviews) Create(ctx context.Context, c services.Caller, salonID string, rating int, comment string) (*services.ReviewView, error) {
	if s.create == nil {
		return nil, errUnexpected
	}
	return s.create(ctx, c, salonID, rating, comment)
}

func (s stubReviews) Update(ctx context.Context, c services.Caller, id string, p services.ReviewPatch) (*domain.Review, error) {
	if s.update == nil {
		return nil, errUnexpected
	}
	return s.update(ctx, c, id, p)
}

func (s stubReviews) Delete(ctx context.Context, c services.Caller, id string) (bool, error) {
	if s.del == nil {
		return false, errUnexpected
	}
	return s.del(ctx, c, id)
}

func (s stubReviews) ListForSalon(ctx context.Context, id string) ([]services.ReviewView, error) {
	if s.list == nil {
		return nil, errUnexpected
	}
	return s.list(ctx, id)
}

type stubBookings struct {
	create       func(context.Context, services.Caller, services.CreateBookingInput, string) (*domain.Booking, bool, error)
	get          func(context.Context, services.Caller, string) (*services.BookingView, error)
	updateStatus func(context.Context, services.Caller, string, string) (*domain.Booking, error)
	listCustomer func(context.Context, services.Caller) ([]services.BookingView, error)
	listOwner    func(context.Context, services.Caller) ([]services.BookingView, error)
}

func (s stubBookings) CreateOnce(ctx context.Context, c services.Caller, in services.CreateBookingInput, key string) (*domain.Booking, bool, error) {
	if s.create == nil {
		return nil, false, errUnexpected
	}
	return s.create(ctx, c, in, key)
}

func (s stubBookings) Get(ctx context.Context, c services.Caller, id string) (*services.BookingView, error) {
	if s.get == nil {
		return nil, errUnexpected
	}
	return s.get(ctx, c, id)
}

func (s stubBookings) UpdateStatus(ctx context.Context, c services.Caller, id, status string) (*domain.Booking, error) {
	if s.updateStatus == nil {
		return nil, errUnexpected
	}
	return s.updateStatus(ctx, c, id, status)
}

func (s stubBookings) ListForCustomer(ctx context.Context, c services.Caller) ([]services.BookingView, error) {
	if s.listCustomer == nil {
		return nil, errUnexpected
	}
	return s.listCustomer(ctx, c)
}

func (s stubBookings) ListForOwner(ctx context.Context, c services.Caller) ([]services.BookingView, error) {
	if s.listOwner == nil {
		return nil, errUnexpected
	}
	return s.listOwner(ctx, c)
}

type stubFavorites struct {
	add    func(context.Context, services.Caller, string) (*domain.Favorite, error)
	remove func(context.Context, services.Caller, string) (bool, error)
	is     func(context.Context, services.Caller, string) (bool, error)
	list   func(context.Context, services.Caller) ([]domain.Salon, error)
}

func (s stubFavorites) Add(ctx context.Context, c services.Caller, id string) (*domain.Favorite, error) {
	if s.add == nil {
		return nil, errUnexpected
	}
	return s.add(ctx, c, id)
}

func (s stubFavorites) Remove(ctx context.Context, c services.Caller, id string) (bool, error) {
	if s.remove == nil {
		return false, errUnexpected
	}
	return s.remove(ctx, c, id)
}

func (s stubFavorites) IsFavorite(ctx context.Context, c services.Caller, id string) (bool, error) {
	if s.is == nil {
		return false, errUnexpected
	}
	return s.is(ctx, c, id)
}

func (s stubFavorites) List(ctx context.Context, c services.Caller) ([]domain.Salon, error) {
	if s.list == nil {
		return nil, errUnexpected
	}
	return s.list(ctx, c)
}

// testRouter mounts every handler without auth; X-Test-User (and
// X-Test-Owner) stand in for a verified token.
func testRouter(t *testing.T, d Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if d.Users == nil {
		d.Users = stubUsers{}
	}
	if d.Tokens == nil {
		d.Tokens = stubTokens{}
	}
	if d.Salons == nil {
		d.Salons = stubSalons{}
	}
	if d.Catalog == nil {
		d.Catalog = stubCatalog{}
	}
	if d.Reviews == nil {
		d.Reviews = stubReviews{}
	}
	if d.Bookings == nil {
		d.Bookings = stubBookings{}
	}
	if d.Favorites == nil {
		d.Favorites = stubFavorites{}
	}
	h := New(d)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			middleware.SetCaller(c, services.Caller{ID: id, IsSalonOwner: c.GetHeader("X-Test-Owner") != ""})
		}
		c.Next()
	})
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, "", nil))

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", h.Me)
	r.PATCH("/auth/me", h.UpdateMe)
	r.GET("/salons", h.ListSalons)
	r.GET("/salons/:id", h.GetSalon)
	r.POST("/salons", h.CreateSalon)
	r.PATCH("/salons/:id", h.UpdateSalon)
	r.GET("/owner/salons", h.ListOwnedSalons)
	r.GET("/salons/:id/services", h.ListSalonServices)
	r.POST("/services", h.CreateService)
	r.PATCH("/services/:id", h.UpdateService)
	r.DELETE("/services/:id", h.DeleteService)
	r.GET("/salons/:id/reviews", h.ListSalonReviews)
	r.POST("/reviews", h.CreateReview)
	r.PATCH("/reviews/:id", h.UpdateReview)
	r.DELETE("/reviews/:id", h.DeleteReview)
	r.POST("/bookings", h.CreateBooking)
	r.GET("/bookings/:id", h.GetBooking)
	r.PUT("/bookings/:id/status", h.UpdateBookingStatus)
	r.GET("/user/bookings", h.ListMyBookings)
	r.GET("/owner/bookings", h.ListOwnerBookings)
	r.GET("/user/favorites", h.ListFavorites)
	r.POST("/favorites", h.AddFavorite)
	r.DELETE("/favorites/:salonId", h.RemoveFavorite)
	r.GET("/favorites/check/:salonId", h.CheckFavorite)
	return r
}

type call struct {
	method, path, user string
	owner              bool
	body               any
	headers            map[string]string
}

func do(t *testing.T, r *gin.Engine, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("X-Test-User", c.user)
	}
	if c.owner {
		req.Header.Set("X-Test-Owner", "1")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	if code != "" {
		if got := decode[ErrorResponse](t, w).Code; got != code {
			t.Fatalf("code=%q want %q", got, code)
		}
	}
}

func ptr[T any](v T) *T { return &v }
