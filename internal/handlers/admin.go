// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for Atelier. Handlers are
// grouped by concern (admin, auth, public) and receive their dependencies
// through the handler struct.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"atelier/internal/cache"
	"atelier/internal/crud"
	"atelier/internal/middleware"
	"atelier/internal/preview"
	"atelier/internal/render"
	"atelier/internal/session"
	"atelier/internal/store"
)

// MaxUploadBytes bounds a single editor submission, files included.
const MaxUploadBytes = 64 << 20

// Admin groups all admin back office HTTP handlers and their dependencies.
type Admin struct {
	renderer    *render.Renderer
	sessions    *session.Store
	api         crud.API
	userStore   *store.UserStore
	optionStore *store.OptionStore
	previews    *preview.Store
	pageCache   *cache.PageCache
	thumbnailer crud.PDFThumbnailer
	previewer   previewFunc
}

// NewAdmin creates a new Admin handler group. optionStore, previews,
// pageCache and thumbnailer may be nil; the related features then fall
// back to defaults or are skipped.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, api crud.API, userStore *store.UserStore, optionStore *store.OptionStore, previews *preview.Store, pageCache *cache.PageCache, thumbnailer crud.PDFThumbnailer) *Admin {
	return &Admin{
		renderer:    renderer,
		sessions:    sessions,
		api:         api,
		userStore:   userStore,
		optionStore: optionStore,
		previews:    previews,
		pageCache:   pageCache,
		thumbnailer: thumbnailer,
		previewer:   imagePreview,
	}
}

// entityCount is one tile on the dashboard.
type entityCount struct {
	Label  string
	Href   string
	Count  int
	Failed bool
}

// Dashboard renders the admin dashboard with a record count per section.
// Sections are fetched concurrently; a failing section shows as n/a.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	counters := []struct {
		label, name string
		load        func(ctx context.Context) (int, error)
	}{
		{"Products", "products", counter(crud.ProductSchema(), a.api)},
		{"Catalogues", "catalogues", counter(crud.CatalogueSchema(nil), a.api)},
		{"Blog posts", "blogs", counter(crud.BlogSchema(), a.api)},
		{"Projects", "projects", counter(crud.ProjectSchema(), a.api)},
		{"Messages", "contact-forms", counter(crud.ContactFormSchema(), a.api)},
	}

	counts := make([]entityCount, len(counters))
	g, ctx := errgroup.WithContext(r.Context())
	for i, c := range counters {
		g.Go(func() error {
			n, err := c.load(ctx)
			counts[i] = entityCount{Label: c.label, Href: "/admin/" + c.name, Count: n, Failed: err != nil}
			return nil
		})
	}
	g.Wait()

	data := map[string]any{"Counts": counts}
	if a.userStore != nil {
		if n, err := a.userStore.Count(); err == nil {
			data["UserCount"] = n
		} else {
			slog.Error("count users failed", "error", err)
		}
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data:    data,
		Flashes: a.popFlashes(r),
	})
}

// counter loads a section's collection and reports its size.
func counter[T crud.Record](schema *crud.Schema[T], api crud.API) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		p := crud.NewPanel(schema, api)
		if err := p.Load(ctx); err != nil {
			return 0, err
		}
		return len(p.Items()), nil
	}
}

// flash queues a notification for the next full page render.
func (a *Admin) flash(r *http.Request, typ, msg string) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.AddFlash(r.Context(), r, session.Flash{Type: typ, Message: msg}); err != nil {
		slog.Warn("add flash failed", "error", err)
	}
}

// popFlashes drains the notifications queued by earlier requests.
func (a *Admin) popFlashes(r *http.Request) []session.Flash {
	if a.sessions == nil {
		return nil
	}
	flashes, err := a.sessions.PopFlashes(r.Context(), r)
	if err != nil {
		slog.Warn("pop flashes failed", "error", err)
	}
	return flashes
}

// invalidatePublic drops every cached public page after content changed.
func (a *Admin) invalidatePublic(ctx context.Context) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(ctx)
	}
}

// toFlashes converts panel notifications for rendering.
func toFlashes(notes []crud.Notification) []session.Flash {
	out := make([]session.Flash, 0, len(notes))
	for _, n := range notes {
		out = append(out, session.Flash{Type: string(n.Level), Message: n.Message})
	}
	return out
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// currentUser returns the signed-in user's session, or nil.
func currentUser(r *http.Request) *session.Data {
	return middleware.SessionFromCtx(r.Context())
}
