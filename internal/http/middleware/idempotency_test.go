package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/services"
)

type lookupCall struct {
	userID, scope, key string
}

func idemRouter(t *testing.T, opts IdempotencyOptions, lookup IdempotencyLookup) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			SetCaller(c, services.Caller{ID: id})
		}
		c.Next()
	})
	r.Use(IdempotencyValidator(opts, "/api/v1", lookup))
	r.POST("/api/v1/bookings", func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": key, "replay": IsReplay(c), "bypass": IsRateBypass(c)})
	})
	return r
}

func postBooking(r *gin.Engine, user, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_NoHeaderSkipsLookup(t *testing.T) {
	called := false
	r := idemRouter(t, IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	})
	w := postBooking(r, "u1", "")
	if w.Code != http.StatusOK || called {
		t.Fatalf("code=%d called=%v", w.Code, called)
	}
	if !strings.Contains(w.Body.String(), `"replay":false`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	r := idemRouter(t, IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z0-9-]+$`)}, nil)
	for _, key := range []string{"way-too-long-key", "bad key!", "UPPER"} {
		w := postBooking(r, "u1", key)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: code=%d body=%s", key, w.Code, w.Body.String())
		}
	}
	if w := postBooking(r, "u1", "ok-1"); w.Code != http.StatusOK {
		t.Fatalf("valid key rejected: %d", w.Code)
	}
}

func TestIdempotencyValidator_ReplayUsesCallerAndRouteScope(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(t, IdempotencyOptions{}, func(_ context.Context, userID, scope, key string, _ time.Time) (bool, error) {
		calls = append(calls, lookupCall{userID, scope, key})
		return key == "seen", nil
	})

	w := postBooking(r, "u1", "seen")
	if !strings.Contains(w.Body.String(), `"replay":true`) || !strings.Contains(w.Body.String(), `"bypass":true`) {
		t.Fatalf("expected replay flags, got %s", w.Body.String())
	}
	w = postBooking(r, "u1", "fresh")
	if !strings.Contains(w.Body.String(), `"key":"fresh"`) || !strings.Contains(w.Body.String(), `"replay":false`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	want := lookupCall{"u1", "POST /bookings", "seen"}
	if len(calls) != 2 || calls[0] != want {
		t.Fatalf("lookup calls = %+v; want first %+v", calls, want)
	}
	if services.BookingCreateScope != want.scope {
		t.Fatalf("route scope %q drifted from %q", want.scope, services.BookingCreateScope)
	}
}

func TestIdempotencyValidator_AnonymousAndLookupErrors(t *testing.T) {
	called := false
	r := idemRouter(t, IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return false, errors.New("db down")
	})
	if w := postBooking(r, "", "k1"); w.Code != http.StatusOK || called {
		t.Fatalf("anonymous request must not look up: code=%d called=%v", w.Code, called)
	}
	if w := postBooking(r, "u1", "k1"); w.Code != http.StatusOK || !called {
		t.Fatalf("lookup error must not block: code=%d called=%v", w.Code, called)
	}
}

func TestScope_StripsBasePath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got []string
	r := gin.New()
	r.PUT("/api/v1/bookings/:id/status", func(c *gin.Context) { got = append(got, Scope(c, "/api/v1")) })
	r.GET("/health", func(c *gin.Context) { got = append(got, Scope(c, "/")) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/v1/bookings/b1/status", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if len(got) != 2 || got[0] != "PUT /bookings/:id/status" || got[1] != "GET /health" {
		t.Fatalf("scopes = %v", got)
	}
}
