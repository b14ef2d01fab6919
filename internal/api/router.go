// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/folio/internal/authz"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/middleware"
	"github.com/tomtom215/folio/internal/websocket"
)

// Router assembles the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authz         *authz.Middleware
	ws            *websocket.Handler
}

// NewRouter creates a router for handler. Auth failures from both the auth
// and authz middleware are written with the standard error envelope.
func NewRouter(handler *Handler) *Router {
	cfg := handler.Config
	handler.AuthMW.SetDenyFunc(Deny)
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(&cfg.Security)),
		authz:         authz.NewMiddleware(handler.Enforcer, Deny),
		ws:            websocket.NewHandler(handler.Hub, cfg.Security.CORSOrigins),
	}
}

// identify resolves the signed-in viewer, then the anonymous browser key.
func (router *Router) identify(r chi.Router) {
	r.Use(router.handler.AuthMW.Authenticate)
	r.Use(middleware.ViewerKey(router.handler.Config.Security.CookieSecure))
}

// Setup configures all routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	cm := router.chiMiddleware
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cm.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(cm.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// The websocket upgrade needs the raw ResponseWriter, so it skips Compress.
	r.Group(func(r chi.Router) {
		r.Use(cm.RateLimitWebSocket())
		router.identify(r)
		r.Get("/ws", router.ws.ServeHTTP)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Compress(5))
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		router.identify(r)
		r.Use(cm.RateLimit())

		r.Route("/auth", func(r chi.Router) {
			r.With(cm.RateLimitLogin()).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Route("/items", func(r chi.Router) {
			r.With(router.authz.RequireObject(authz.ObjectItems)).Get("/", h.ListItems)
			r.With(router.authz.RequireObject(authz.ObjectItems)).Get("/top", h.TopItems)
			r.With(router.authz.RequireObject(authz.ObjectItems)).Get("/search", h.SearchItems)

			r.Route("/{id}", func(r chi.Router) {
				r.With(router.authz.RequireObject(authz.ObjectItems)).Get("/", h.GetItem)

				r.Group(func(r chi.Router) {
					r.Use(cm.RateLimitWrite())
					r.Use(router.authz.RequireObject(authz.ObjectEngagement))
					r.Post("/like", h.LikeItem)
					r.Post("/share", h.ShareItem)
					r.Post("/views", h.RecordView)
				})

				r.Group(func(r chi.Router) {
					r.Use(router.authz.RequireObject(authz.ObjectComments))
					r.Get("/comments", h.ItemComments)
					r.With(cm.RateLimitWrite()).Post("/comments", h.SubmitComment)
				})
			})
		})

		r.With(router.authz.RequireObject(authz.ObjectHero)).Get("/hero", h.Hero)
		r.With(router.authz.RequireObject(authz.ObjectRecommendations)).Get("/recommendations", h.Recommendations)
		r.With(router.authz.RequireObject(authz.ObjectImages)).Get("/images/resolve", h.ResolveImage)

		r.Route("/favorites", func(r chi.Router) {
			r.Use(router.authz.RequireObject(authz.ObjectFavorites))
			r.Get("/", h.ListFavorites)
			r.Get("/{id}", h.GetFavorite)
			r.Post("/{id}/toggle", h.ToggleFavorite)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AuthMW.RequireRole(media.RoleAdmin))
			r.Use(router.authz.RequireObject(authz.ObjectModeration))
			r.Get("/comments", h.AdminComments)
			r.Get("/comments/pending", h.PendingComments)
			r.Post("/comments/{id}/approve", h.ApproveComment)
			r.Post("/comments/{id}/reply", h.ReplyComment)
			r.Delete("/comments/{id}", h.RejectComment)
			r.Get("/items/{id}/comments", h.AdminItemThreads)
		})
	})

	return r
}
