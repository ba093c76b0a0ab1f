package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy rewrites RemoteAddr from forwarding headers. Leave it off
	// unless a proxy in front of the service sets them.
	TrustProxy bool
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	limiter := newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)
		r.Get("/resources", apiHandler.ResourcesHandler)
		r.Get("/register/options", apiHandler.RegisterOptionsHandler)

		r.With(limiter.Middleware).Post("/register", apiHandler.RegisterHandler)
		r.With(limiter.Middleware).Post("/login", apiHandler.LoginHandler)

		r.Route("/conversations", func(r chi.Router) {
			r.With(limiter.Middleware).Post("/", apiHandler.CreateConversationHandler)
			r.Get("/{conversationID}", apiHandler.GetConversationHandler)
			r.Delete("/{conversationID}", apiHandler.DeleteConversationHandler)
			r.With(limiter.Middleware).Post("/{conversationID}/messages", apiHandler.PostMessageHandler)
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)
			r.Get("/preferences", apiHandler.GetPreferencesHandler)
		})
	})

	return r
}
