// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// Atelier. Routes are organised into the public site and the admin back
// office, each with its own middleware stack.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"atelier/internal/cache"
	"atelier/internal/handlers"
	"atelier/internal/middleware"
	"atelier/internal/session"
	"atelier/web"
)

// Deps are the dependencies the routes are built from. PageCache and the
// rate limiters may be nil.
type Deps struct {
	Sessions       *session.Store
	PageCache      *cache.PageCache
	LoginLimiter   *middleware.RateLimiter
	ContactLimiter *middleware.RateLimiter
	Admin          *handlers.Admin
	Auth           *handlers.Auth
	Public         *handlers.Public
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets embedded in the binary.
	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(http.FileServer(http.FS(static)))))

	// Back office: sessions, CSRF, never cached. The body cap goes first
	// because the CSRF check may read the form.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.MaxBody(handlers.MaxUploadBytes))
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadSession(d.Sessions))

		// Auth pages, reachable without a session.
		r.Get("/login", d.Auth.LoginPage)
		r.With(limit(d.LoginLimiter)).Post("/login", d.Auth.LoginSubmit)
		r.Post("/logout", d.Auth.Logout)

		// 2FA requires a session but not a completed second factor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa", d.Auth.TwoFAPage)
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.With(limit(d.LoginLimiter)).Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)
		})

		// Authenticated and 2FA-verified back office.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", redirectTo("/admin/dashboard"))
			r.Get("/dashboard", d.Admin.Dashboard)

			// Entity sections: products, catalogues, blogs, projects,
			// contact forms and home metadata.
			d.Admin.MountSections(r)

			r.Post("/options/{kind}", d.Admin.AddOption)
			r.Post("/previews", d.Admin.CreatePreview)
			r.Get("/previews/{id}", d.Admin.ServePreview)
			r.Delete("/previews/{id}", d.Admin.DiscardPreview)

			// User management, admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Admin.UsersList)
				r.Post("/", d.Admin.UserCreate)
				r.Post("/{id}/reset-2fa", d.Admin.UserResetTOTP)
			})
		})
	})

	// Public site, served from the page cache when possible.
	r.Group(func(r chi.Router) {
		if d.PageCache != nil {
			r.Use(d.PageCache.Middleware)
		}
		r.Get("/", d.Public.Homepage)
		r.Get("/about", d.Public.About)
		r.Get("/products", d.Public.Products)
		r.Get("/products/{id}", d.Public.Product)
		r.Get("/products/{id}/{slug}", d.Public.Product)
		r.Get("/catalogues", d.Public.Catalogues)
		r.Get("/blogs", d.Public.Blogs)
		r.Get("/blogs/{id}", d.Public.Blog)
		r.Get("/projects", d.Public.Projects)
		r.Get("/projects/{id}", d.Public.Project)
	})

	// The contact form carries no per-visitor token so that public pages
	// stay cacheable; submissions are rate limited instead.
	r.Get("/contact", d.Public.ContactPage)
	r.With(limit(d.ContactLimiter)).Post("/contact", d.Public.ContactSubmit)

	r.NotFound(d.Public.NotFound)

	return r
}

// limit applies rl when it is configured.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// staticHandler adds a short public cache lifetime to embedded assets.
func staticHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
