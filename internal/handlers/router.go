package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/LuizAugustoFH-77/Trivion/internal/config"
	localmw "github.com/LuizAugustoFH-77/Trivion/internal/middleware"
	"github.com/LuizAugustoFH-77/Trivion/internal/ws"
)

// RouterOptions lets tests switch off middleware that gets in the way.
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter assembles the HTTP surface: the REST API under /api and the
// socket at /ws, with the hardening middleware shared by both.
func SetupRouter(api *API, socket *ws.Handler, cfg *config.Config, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	if !opts.DisableRequestLogger {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(localmw.SecurityHeaders())
	r.Use(localmw.RequestSizeLimiter(cfg.Server.MaxRequestSize))

	if !opts.DisableRateLimiting {
		rateLimiter := localmw.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
	}

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
		api.Routes(r)
	})

	// The socket lives outside the timeout middleware: connections last for
	// the whole session.
	r.Get("/ws", socket.ServeWS)

	return r
}
