// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package api provides HTTP routing using Chi router (ADR-0016).
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/cartographus/internal/middleware"
)

// Router wires the Handler into a chi.Router, matching spec.md §6's
// five-endpoint HTTP surface plus the ambient health and metrics routes
// every service in this codebase carries.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter constructs a Router over handler, configured by mwConfig
// (DefaultChiMiddlewareConfig() if nil).
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(APISecurityHeaders())
	r.Use(middleware.PrometheusMetrics)

	r.Route("/api", func(r chi.Router) {
		// /api/recommend is the hottest path and the one endpoint that
		// touches the model and every ranked list; it gets its own,
		// tighter rate limit separate from the rest of the surface.
		r.With(router.chiMiddleware.RateLimitRecommend()).Post("/recommend", router.handler.PostRecommend)

		r.Route("/view", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/", router.handler.GetView)
			r.Post("/", router.handler.PostView)
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/", router.handler.GetItems)
			r.Post("/", router.handler.PostItems)
			r.Delete("/", router.handler.DeleteItems)
		})

		r.Route("/model/{name}", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				router.handler.GetModel(chi.URLParam(req, "name"), w, req)
			})
			r.Post("/train", router.handler.PostModelTrain)
		})
	})

	r.Get("/healthz", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("route not found")
	})

	return r
}
