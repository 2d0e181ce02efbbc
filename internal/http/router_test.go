package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-salon-backend/internal/auth"
	"github.com/tbourn/go-salon-backend/internal/config"
	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/http/handlers"
	"github.com/tbourn/go-salon-backend/internal/http/middleware"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := repo.SQLiteDSN(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		RateRPS:        100,
		RateBurst:      100,
		Security:       config.SecurityConfig{EnableHSTS: false},
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
		IdempotencyTTL: time.Hour,
	}
}

func newServer(t *testing.T, db *gorm.DB, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokenMaker("router-test-secret-0123", time.Hour)
	if err != nil {
		t.Fatalf("token maker: %v", err)
	}
	r := gin.New()
	RegisterRoutes(r, Deps{DB: db, Tokens: tokens, Hasher: auth.NewBcryptHasher(4)}, cfg)
	return r
}

type req struct {
	method, path, token string
	body                any
	headers             map[string]string
}

func serve(t *testing.T, r *gin.Engine, q req) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if q.body != nil {
		if err := json.NewEncoder(&buf).Encode(q.body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	hr := httptest.NewRequest(q.method, q.path, &buf)
	hr.Header.Set("Content-Type", "application/json")
	if q.token != "" {
		hr.Header.Set("Authorization", "Bearer "+q.token)
	}
	for k, v := range q.headers {
		hr.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, hr)
	return w
}

func expect[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func register(t *testing.T, r *gin.Engine, username string, owner bool) handlers.AuthResponse {
	t.Helper()
	return expect[handlers.AuthResponse](t, serve(t, r, req{method: "POST", path: "/api/v1/auth/register", body: map[string]any{
		"username":       username,
		"email":          username + "@example.com",
		"password":       "secret-pw",
		"name":           username,
		"is_salon_owner": owner,
	}}), http.StatusCreated)
}

func TestRegisterRoutes_HealthMetricsFallbacksCORS(t *testing.T) {
	r := newServer(t, newTestDB(t), testConfig())

	w := serve(t, r, req{method: "GET", path: "/health"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}

	w = serve(t, r, req{method: "GET", path: "/metrics"})
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	w = serve(t, r, req{method: "GET", path: "/health", headers: map[string]string{"Accept-Encoding": "gzip"}})
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, headers=%v", w.Header())
	}

	if w := serve(t, r, req{method: "GET", path: "/nope"}); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if w := serve(t, r, req{method: "POST", path: "/health"}); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newServer(t, newTestDB(t), cfg)

	w := serve(t, r, req{method: "GET", path: "/health", headers: map[string]string{"Origin": "http://example.com"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_ProtectedRoutesNeedToken(t *testing.T) {
	r := newServer(t, newTestDB(t), testConfig())

	for _, q := range []req{
		{method: "GET", path: "/api/v1/user/bookings"},
		{method: "POST", path: "/api/v1/favorites", body: map[string]string{"salon_id": "s1"}},
		{method: "GET", path: "/api/v1/auth/me", token: "not-a-jwt"},
	} {
		if w := serve(t, r, q); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", q.method, q.path, w.Code)
		}
	}
	w := serve(t, r, req{method: "GET", path: "/api/v1/salons"})
	if list := expect[[]domain.Salon](t, w, http.StatusOK); len(list) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(list))
	}
}

// End to end: owner lists a salon and a service, a customer books it with a
// retried request, the booking moves through its lifecycle, and the review
// and favorite flows run against the same store.
func TestRegisterRoutes_BookingFlow(t *testing.T) {
	db := newTestDB(t)
	r := newServer(t, db, testConfig())

	owner := register(t, r, "owner1", true)
	customer := register(t, r, "jane", false)

	salon := expect[domain.Salon](t, serve(t, r, req{method: "POST", path: "/api/v1/salons", token: owner.Token,
		body: map[string]any{"name": "Riad Beauty", "location": "Marrakech", "categories": []string{"Hair"}}}), http.StatusCreated)
	svc := expect[domain.Service](t, serve(t, r, req{method: "POST", path: "/api/v1/services", token: owner.Token,
		body: map[string]any{"salon_id": salon.ID, "name": "Cut", "price": 200, "duration": 45, "discounted_price": 180}}), http.StatusCreated)

	// A customer may not add services to someone else's salon.
	w := serve(t, r, req{method: "POST", path: "/api/v1/services", token: customer.Token,
		body: map[string]any{"salon_id": salon.ID, "name": "Nope", "price": 1, "duration": 5}})
	expect[handlers.ErrorResponse](t, w, http.StatusForbidden)

	// Same Idempotency-Key twice: one booking, second answer flagged as replay.
	book := req{method: "POST", path: "/api/v1/bookings", token: customer.Token,
		headers: map[string]string{middleware.HeaderIdempotencyKey: "retry-1"},
		body:    map[string]any{"salon_id": salon.ID, "service_id": svc.ID, "date": "2026-11-02T14:30:00Z"}}
	first := expect[domain.Booking](t, serve(t, r, book), http.StatusCreated)
	if first.Status != domain.BookingPending || first.TotalPrice != 180 {
		t.Fatalf("unexpected booking %+v", first)
	}
	w = serve(t, r, book)
	again := expect[domain.Booking](t, w, http.StatusCreated)
	if again.ID != first.ID || w.Header().Get(handlers.HeaderIdempotentReplay) != "true" {
		t.Fatalf("replay mismatch: %s vs %s, header=%q", again.ID, first.ID, w.Header().Get(handlers.HeaderIdempotentReplay))
	}
	var n int64
	if err := db.Model(&domain.Booking{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("expected exactly one booking, got %d (%v)", n, err)
	}

	status := func(token, s string) *httptest.ResponseRecorder {
		return serve(t, r, req{method: "PUT", path: "/api/v1/bookings/" + first.ID + "/status", token: token,
			body: map[string]string{"status": s}})
	}
	if w := status(customer.Token, "completed"); w.Code != http.StatusForbidden {
		t.Fatalf("customer completing: expected 403, got %d", w.Code)
	}
	if b := expect[domain.Booking](t, status(owner.Token, "confirmed"), http.StatusOK); b.Status != domain.BookingConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}
	if b := expect[domain.Booking](t, status(customer.Token, "cancelled"), http.StatusOK); b.Status != domain.BookingCancelled {
		t.Fatalf("expected cancelled, got %s", b.Status)
	}
	if e := expect[handlers.ErrorResponse](t, status(owner.Token, "completed"), http.StatusConflict); e.Code != handlers.ErrCodeInvalidTransition {
		t.Fatalf("expected invalid_transition, got %q", e.Code)
	}

	list := expect[[]map[string]any](t, serve(t, r, req{method: "GET", path: "/api/v1/owner/bookings", token: owner.Token}), http.StatusOK)
	if len(list) != 1 || list[0]["user"] == nil {
		t.Fatalf("owner list should carry customer contact: %v", list)
	}

	// Reviews drive the salon aggregate.
	expect[map[string]any](t, serve(t, r, req{method: "POST", path: "/api/v1/reviews", token: customer.Token,
		body: map[string]any{"salon_id": salon.ID, "rating": 4, "comment": "Lovely"}}), http.StatusCreated)
	expect[map[string]any](t, serve(t, r, req{method: "POST", path: "/api/v1/reviews", token: owner.Token,
		body: map[string]any{"salon_id": salon.ID, "rating": 5}}), http.StatusCreated)
	got := expect[domain.Salon](t, serve(t, r, req{method: "GET", path: "/api/v1/salons/" + salon.ID}), http.StatusOK)
	if got.Rating != 4.5 || got.ReviewCount != 2 {
		t.Fatalf("aggregate = %v/%d, want 4.5/2", got.Rating, got.ReviewCount)
	}

	// Favorites: add, duplicate, remove twice.
	fav := req{method: "POST", path: "/api/v1/favorites", token: customer.Token, body: map[string]string{"salon_id": salon.ID}}
	expect[domain.Favorite](t, serve(t, r, fav), http.StatusCreated)
	expect[handlers.ErrorResponse](t, serve(t, r, fav), http.StatusConflict)
	unfav := req{method: "DELETE", path: "/api/v1/favorites/" + salon.ID, token: customer.Token}
	expect[handlers.MessageResponse](t, serve(t, r, unfav), http.StatusOK)
	expect[handlers.ErrorResponse](t, serve(t, r, unfav), http.StatusNotFound)
}

func TestRegisterRoutes_PutAndSalonBookingsAliases(t *testing.T) {
	db := newTestDB(t)
	r := newServer(t, db, testConfig())
	owner := register(t, r, "owner2", true)

	salon := expect[domain.Salon](t, serve(t, r, req{method: "POST", path: "/api/v1/salons", token: owner.Token,
		body: map[string]any{"name": "Old", "location": "Athens"}}), http.StatusCreated)
	svc := expect[domain.Service](t, serve(t, r, req{method: "POST", path: "/api/v1/services", token: owner.Token,
		body: map[string]any{"salon_id": salon.ID, "name": "Cut", "price": 100, "duration": 30}}), http.StatusCreated)

	for _, method := range []string{"PUT", "PATCH"} {
		name := "Renamed " + method
		got := expect[domain.Salon](t, serve(t, r, req{method: method, path: "/api/v1/salons/" + salon.ID, token: owner.Token,
			body: map[string]any{"name": name}}), http.StatusOK)
		if got.Name != name || got.Location != "Athens" {
			t.Fatalf("%s salon: %+v", method, got)
		}
		price := map[string]int{"PUT": 120, "PATCH": 140}[method]
		s := expect[domain.Service](t, serve(t, r, req{method: method, path: "/api/v1/services/" + svc.ID, token: owner.Token,
			body: map[string]any{"price": price}}), http.StatusOK)
		if s.Price != price || s.Name != "Cut" {
			t.Fatalf("%s service: %+v", method, s)
		}
	}

	for _, path := range []string{"/api/v1/owner/bookings", "/api/v1/salon/bookings"} {
		if list := expect[[]map[string]any](t, serve(t, r, req{method: "GET", path: path, token: owner.Token}), http.StatusOK); len(list) != 0 {
			t.Fatalf("%s: expected no bookings, got %v", path, list)
		}
	}
}

func TestRegisterRoutes_UnhealthyDatabase(t *testing.T) {
	db := newTestDB(t)
	r := newServer(t, db, testConfig())

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	if w := serve(t, r, req{method: "GET", path: "/health"}); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with closed DB, got %d", w.Code)
	}
}

func TestIdempotencyLookup(t *testing.T) {
	db := newTestDB(t)
	lookup := idempotencyLookup(db)
	now := time.Now().UTC()
	ctx := context.Background()

	if hit, err := lookup(ctx, "u1", "POST /bookings", "k1", now); hit || err != nil {
		t.Fatalf("miss: hit=%v err=%v", hit, err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "u1", "POST /bookings", "k1", "b1", http.StatusCreated, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if hit, err := lookup(ctx, "u1", "POST /bookings", "k1", now); !hit || err != nil {
		t.Fatalf("hit: hit=%v err=%v", hit, err)
	}
	if hit, _ := lookup(ctx, "u2", "POST /bookings", "k1", now); hit {
		t.Fatalf("keys are per caller")
	}

	if err := db.Migrator().DropTable(&domain.Idempotency{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := lookup(ctx, "u1", "POST /bookings", "k1", now); err == nil {
		t.Fatalf("expected error from missing table")
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := testConfig()
	if w := serve(t, newServer(t, newTestDB(t), cfg), req{method: "GET", path: "/swagger/doc.json"}); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled: expected 404, got %d", w.Code)
	}

	cfg.SwaggerEnabled = true
	cfg.APIBasePath = "/api/v2"
	w := serve(t, newServer(t, newTestDB(t), cfg), req{method: "GET", path: "/swagger/doc.json"})
	doc := expect[map[string]any](t, w, http.StatusOK)
	if doc["basePath"] != "/api/v2" {
		t.Fatalf("basePath = %v", doc["basePath"])
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/bookings/{id}/status"]; !ok {
		t.Fatalf("booking status route missing from docs")
	}
}
