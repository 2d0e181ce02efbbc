package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecure(t *testing.T, opt SecurityOptions, prep func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(SecurityHeaders(opt))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	if prep != nil {
		prep(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveSecure(t, SecurityOptions{}, nil)
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	if h.Get("Permissions-Policy") != "" || h.Get("Cache-Control") != "" || h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("unexpected optional headers: %#v", h)
	}
	if h.Get("Access-Control-Expose-Headers") != "X-Request-ID" {
		t.Fatalf("request id not exposed: %#v", h)
	}
}

func TestSecurityHeaders_PolicyNoStoreAndHSTS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour, NoStore: true, EnablePolicy: true}

	h := serveSecure(t, opt, func(r *http.Request) { r.TLS = &tls.ConnectionState{} })
	if h.Get("Strict-Transport-Security") != "max-age=3600; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", h.Get("Strict-Transport-Security"))
	}
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("no-store headers missing: %#v", h)
	}

	proxied := serveSecure(t, opt, func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") })
	if proxied.Get("Strict-Transport-Security") == "" {
		t.Fatalf("HSTS missing behind TLS proxy")
	}
	plain := serveSecure(t, opt, nil)
	if plain.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}
}

func TestSecurityHeaders_DefaultHSTSMaxAge(t *testing.T) {
	h := serveSecure(t, SecurityOptions{EnableHSTS: true}, func(r *http.Request) { r.TLS = &tls.ConnectionState{} })
	if h.Get("Strict-Transport-Security") != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", h.Get("Strict-Transport-Security"))
	}
}
