// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes are
// organized into the public site, the token-protected admin API and the
// operational endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"azincms/internal/handlers"
	"azincms/internal/middleware"
)

// Options holds what the router mounts. Metrics and ClickLimiter may be nil.
type Options struct {
	Public         *handlers.Public
	Admin          *handlers.Admin
	AdminTokenHash string
	ClickLimiter   *middleware.RateLimiter
	Metrics        http.Handler
	HSTS           bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(o Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(o.HSTS))

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Get("/health", healthHandler)
	if o.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.Metrics)
	}

	pub := o.Public
	r.Get("/", pub.Home)
	r.Get("/search/", pub.Search)
	r.Get("/feed/", pub.Feed)
	r.Get("/category/{slug}/", pub.Category)
	r.Get("/album/{slug}/", pub.Album)
	r.Get("/ajax/album-images/{id}/", pub.AlbumImages)
	r.Get("/post/{code}/{slug}/", pub.PostByCodeAndSlug)
	r.Get("/post/{code}/", pub.PostByCode)
	r.Get("/p/{id}/", pub.PostByID)

	// Ad clicks bump counters, so each client is throttled.
	r.Group(func(r chi.Router) {
		if o.ClickLimiter != nil {
			r.Use(o.ClickLimiter.Middleware)
		}
		r.Get("/ads/{id}/click", pub.AdClick)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(o.AdminTokenHash))
		adminRoutes(r, o.Admin)
	})

	return r
}

func adminRoutes(r chi.Router, admin *handlers.Admin) {
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", admin.ListArticles)
		r.Post("/", admin.CreateArticle)
		r.Get("/{id}", admin.GetArticle)
		r.Put("/{id}", admin.UpdateArticle)
		r.Delete("/{id}", admin.DeleteArticle)
	})

	r.Route("/albums", func(r chi.Router) {
		r.Get("/", admin.ListAlbums)
		r.Post("/", admin.CreateAlbum)
		r.Get("/{id}", admin.GetAlbum)
		r.Put("/{id}", admin.UpdateAlbum)
		r.Delete("/{id}", admin.DeleteAlbum)
		r.Post("/{id}/images", admin.UploadAlbumImage)
		r.Delete("/{id}/images/{imageID}", admin.DeleteAlbumImage)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", admin.ListCategories)
		r.Post("/", admin.CreateCategory)
		r.Get("/{id}", admin.GetCategory)
		r.Put("/{id}", admin.UpdateCategory)
		r.Delete("/{id}", admin.DeleteCategory)
	})

	r.Route("/ads", func(r chi.Router) {
		r.Get("/", admin.ListAds)
		r.Post("/", admin.CreateAd)
		r.Get("/{id}", admin.GetAd)
		r.Put("/{id}", admin.UpdateAd)
		r.Delete("/{id}", admin.DeleteAd)
		r.Get("/{id}/events", admin.AdEvents)
	})

	r.Route("/footer", func(r chi.Router) {
		r.Get("/", admin.GetFooter)
		r.Post("/links", admin.CreateFooterLink)
		r.Delete("/links/{id}", admin.DeleteFooterLink)
		r.Post("/icons", admin.CreateFooterIcon)
		r.Delete("/icons/{id}", admin.DeleteFooterIcon)
	})

	r.Route("/menus", func(r chi.Router) {
		r.Post("/", admin.CreateMenu)
		r.Get("/slug/{slug}", admin.GetMenu)
		r.Post("/{id}/items", admin.AddMenuItem)
		r.Delete("/items/{id}", admin.DeleteMenuItem)
	})

	r.Get("/settings", admin.GetSettings)
	r.Put("/settings", admin.UpdateSettings)

	r.Post("/media", admin.UploadMedia)

	r.Get("/cache/log", admin.CacheLog)
	r.Post("/cache/purge", admin.PurgeCache)
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]string{"error": "not found"})
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, map[string]string{"error": "method not allowed"})
}
