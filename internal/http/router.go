// Package httpapi wires the Gin transport to the salon services, middleware
// and handlers. Cross-cutting concerns (tracing, correlation IDs, redacted
// logging, panic recovery, metrics, compression, authentication,
// idempotency, rate limiting, CORS and security headers) are installed here
// in a fixed order.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/docs"
	"github.com/tbourn/go-salon-backend/internal/auth"
	"github.com/tbourn/go-salon-backend/internal/config"
	"github.com/tbourn/go-salon-backend/internal/http/handlers"
	"github.com/tbourn/go-salon-backend/internal/http/middleware"
	"github.com/tbourn/go-salon-backend/internal/repo"
	"github.com/tbourn/go-salon-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// Deps are the long-lived collaborators the router builds services from.
type Deps struct {
	DB     *gorm.DB
	Tokens *auth.TokenMaker
	Hasher services.PasswordHasher
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip (the /metrics endpoint is left uncompressed)
//  8. Authenticate: resolve the bearer token, anonymous requests pass
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per caller/IP, bypass on replay)
//  11. CORS and security headers
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Authenticate(d.Tokens))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		cfg.APIBasePath,
		idempotencyLookup(d.DB),
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByCallerOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(d.DB))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	bookings := services.NewBookingService(d.DB)
	bookings.IdempotencyTTL = cfg.IdempotencyTTL
	h := handlers.New(handlers.Deps{
		Users:     services.NewUserService(d.DB, d.Hasher),
		Tokens:    d.Tokens,
		Salons:    services.NewSalonService(d.DB),
		Catalog:   services.NewCatalogService(d.DB),
		Reviews:   services.NewReviewService(d.DB),
		Bookings:  bookings,
		Favorites: services.NewFavoriteService(d.DB),
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Public
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/salons", h.ListSalons)
		api.GET("/salons/:id", h.GetSalon)
		api.GET("/salons/:id/services", h.ListSalonServices)
		api.GET("/salons/:id/reviews", h.ListSalonReviews)
	}

	authed := api.Group("", middleware.RequireAuth())
	{
		// Account
		authed.GET("/auth/me", h.Me)
		authed.PATCH("/auth/me", h.UpdateMe)

		// Salons and their services
		authed.POST("/salons", h.CreateSalon)
		authed.PATCH("/salons/:id", h.UpdateSalon)
		authed.PUT("/salons/:id", h.UpdateSalon)
		authed.GET("/owner/salons", h.ListOwnedSalons)
		authed.POST("/services", h.CreateService)
		authed.PATCH("/services/:id", h.UpdateService)
		authed.PUT("/services/:id", h.UpdateService)
		authed.DELETE("/services/:id", h.DeleteService)

		// Reviews
		authed.POST("/reviews", h.CreateReview)
		authed.PATCH("/reviews/:id", h.UpdateReview)
		authed.DELETE("/reviews/:id", h.DeleteReview)

		// Bookings
		authed.POST("/bookings", h.CreateBooking)
		authed.GET("/bookings/:id", h.GetBooking)
		authed.PUT("/bookings/:id/status", h.UpdateBookingStatus)
		authed.GET("/user/bookings", h.ListMyBookings)
		authed.GET("/owner/bookings", h.ListOwnerBookings)
		authed.GET("/salon/bookings", h.ListOwnerBookings)

		// Favorites
		authed.GET("/user/favorites", h.ListFavorites)
		authed.POST("/favorites", h.AddFavorite)
		authed.DELETE("/favorites/:salonId", h.RemoveFavorite)
		authed.GET("/favorites/check/:salonId", h.CheckFavorite)
	}
}

// idempotencyLookup reports whether a live record exists for the key.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

// health pings the database so a broken connection fails the probe.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err = sqlDB.PingContext(ctx)
			cancel()
		}
		if err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// corsMiddleware allows every origin when none are configured, otherwise
// only the listed ones.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", handlers.HeaderIdempotentReplay},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// ACAO: * even without an Origin header, so plain probes see it too.
		force := func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		}
		return []gin.HandlerFunc{force, cors.New(base)}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	echo := func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{echo, cors.New(base)}
}

// limitBody caps the request body at maxBytes; reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
