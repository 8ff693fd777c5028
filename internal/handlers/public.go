// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"atelier/internal/apiclient"
	"atelier/internal/crud"
	"atelier/internal/models"
	"atelier/internal/render"
	"atelier/internal/sanitize"
	"atelier/internal/slug"
)

// Number of records shown in the home page teasers and related lists.
const (
	featuredProducts = 8
	latestBlogs      = 3
	relatedProducts  = 4
)

// Public groups the handlers of the public site. Pages are read-only views
// of the content API; the page cache in front of them is applied by the
// router.
type Public struct {
	renderer *render.Renderer
	api      crud.API
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, api crud.API) *Public {
	return &Public{renderer: renderer, api: api}
}

// list fetches a whole collection.
func list[T crud.Record](ctx context.Context, schema *crud.Schema[T], api crud.API) ([]T, error) {
	p := crud.NewPanel(schema, api)
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	return p.Items(), nil
}

// homeMeta returns the site's home metadata, or nil if none is set.
func (p *Public) homeMeta(ctx context.Context) *models.HomeMeta {
	items, err := list(ctx, crud.HomeMetaSchema(), p.api)
	if err != nil || len(items) == 0 {
		return nil
	}
	return &items[0]
}

// Homepage renders the landing page: home metadata, featured products and
// the latest blog posts. Sections that fail to load are left out.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	var (
		home     *models.HomeMeta
		products []models.Product
		blogs    []models.Blog
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		home = p.homeMeta(ctx)
		return nil
	})
	g.Go(func() error {
		products, _ = list(ctx, crud.ProductSchema(), p.api)
		return nil
	})
	g.Go(func() error {
		blogs, _ = list(ctx, crud.BlogSchema(), p.api)
		return nil
	})
	g.Wait()

	meta := &Meta{Title: "Atelier", Type: "website", URL: absoluteURL(r, "/")}
	if home != nil {
		meta.Title = home.Title
		meta.Description = home.Description
	}
	if len(products) > 0 {
		meta.Image = products[0].CoverImage()
	}

	p.renderer.Public(w, r, http.StatusOK, "home", &render.PageData{
		Section: "home",
		Meta:    meta,
		Data: map[string]any{
			"Home":       home,
			"Products":   head(products, featuredProducts),
			"Blogs":      head(blogs, latestBlogs),
			"Categories": models.ProductCategories,
		},
	})
}

// About renders the about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	home := p.homeMeta(r.Context())
	p.renderer.Public(w, r, http.StatusOK, "about", &render.PageData{
		Title:   "About",
		Section: "about",
		Meta:    &Meta{Title: "About Atelier", URL: absoluteURL(r, "/about")},
		Data:    map[string]any{"Home": home},
	})
}

// Products lists products, optionally filtered by ?category=. The filter
// is applied to the fetched list; an unknown category shows everything.
func (p *Public) Products(w http.ResponseWriter, r *http.Request) {
	products, err := list(r.Context(), crud.ProductSchema(), p.api)
	if err != nil {
		p.unavailable(w, r)
		return
	}
	category := knownCategory(r.URL.Query().Get("category"), models.ProductCategories)
	if category != "" {
		products = slices.DeleteFunc(products, func(x models.Product) bool {
			return string(x.Category) != category
		})
	}

	title := "Products"
	if category != "" {
		title = category + " tiles"
	}
	p.renderer.Public(w, r, http.StatusOK, "products", &render.PageData{
		Title:   title,
		Section: "products",
		Meta:    &Meta{Title: title, URL: absoluteURL(r, r.URL.RequestURI())},
		Data: map[string]any{
			"Products":   products,
			"Category":   category,
			"Categories": models.ProductCategories,
		},
	})
}

// Product renders one product with share metadata resolved before the
// page is sent. Requests without the canonical slug are redirected to
// /products/{id}/{slug}.
func (p *Public) Product(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := crud.ProductSchema().Fetch(r.Context(), p.api, id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	canonical := "/products/" + product.ID
	if s := slug.Generate(product.Title); s != "" {
		canonical += "/" + s
	}
	if r.URL.Path != canonical {
		http.Redirect(w, r, canonical, http.StatusMovedPermanently)
		return
	}

	var related []models.Product
	if all, err := list(r.Context(), crud.ProductSchema(), p.api); err == nil {
		for _, x := range all {
			if x.Category == product.Category && x.ID != product.ID {
				related = append(related, x)
			}
		}
	}

	p.renderer.Public(w, r, http.StatusOK, "product", &render.PageData{
		Title:   product.Title,
		Section: "products",
		Meta: &Meta{
			Title:       product.Title,
			Description: sanitize.Excerpt(product.Description, 200),
			Image:       product.CoverImage(),
			URL:         absoluteURL(r, canonical),
			Type:        "product",
		},
		Data: map[string]any{
			"Product": product,
			"Related": head(related, relatedProducts),
		},
	})
}

// Catalogues lists downloadable catalogues, optionally filtered by category.
func (p *Public) Catalogues(w http.ResponseWriter, r *http.Request) {
	catalogues, err := list(r.Context(), crud.CatalogueSchema(nil), p.api)
	if err != nil {
		p.unavailable(w, r)
		return
	}
	category := knownCategory(r.URL.Query().Get("category"), models.CatalogueCategories)
	if category != "" {
		catalogues = slices.DeleteFunc(catalogues, func(x models.Catalogue) bool {
			return string(x.Category) != category
		})
	}

	p.renderer.Public(w, r, http.StatusOK, "catalogues", &render.PageData{
		Title:   "Catalogues",
		Section: "catalogues",
		Meta:    &Meta{Title: "Catalogues", URL: absoluteURL(r, r.URL.RequestURI())},
		Data: map[string]any{
			"Catalogues": catalogues,
			"Category":   category,
			"Categories": models.CatalogueCategories,
		},
	})
}

// Blogs lists blog posts, optionally filtered by category.
func (p *Public) Blogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := list(r.Context(), crud.BlogSchema(), p.api)
	if err != nil {
		p.unavailable(w, r)
		return
	}
	category := knownCategory(r.URL.Query().Get("category"), models.BlogCategories)
	if category != "" {
		blogs = slices.DeleteFunc(blogs, func(x models.Blog) bool {
			return string(x.Category) != category
		})
	}

	p.renderer.Public(w, r, http.StatusOK, "blogs", &render.PageData{
		Title:   "Blog",
		Section: "blogs",
		Meta:    &Meta{Title: "Blog", URL: absoluteURL(r, r.URL.RequestURI())},
		Data: map[string]any{
			"Blogs":      blogs,
			"Category":   category,
			"Categories": models.BlogCategories,
		},
	})
}

// Blog renders one blog post. Its content is sanitized by the template.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	blog, err := crud.BlogSchema().Fetch(r.Context(), p.api, chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}
	description := blog.Excerpt
	if description == "" {
		description = blog.Content
	}
	p.renderer.Public(w, r, http.StatusOK, "blog", &render.PageData{
		Title:   blog.Title,
		Section: "blogs",
		Meta: &Meta{
			Title:       blog.Title,
			Description: sanitize.Excerpt(description, 200),
			Image:       blog.Thumbnail,
			URL:         absoluteURL(r, "/blogs/"+blog.ID),
			Type:        "article",
		},
		Data: map[string]any{"Blog": blog},
	})
}

// Projects lists completed projects.
func (p *Public) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := list(r.Context(), crud.ProjectSchema(), p.api)
	if err != nil {
		p.unavailable(w, r)
		return
	}
	p.renderer.Public(w, r, http.StatusOK, "projects", &render.PageData{
		Title:   "Projects",
		Section: "projects",
		Meta:    &Meta{Title: "Projects", URL: absoluteURL(r, "/projects")},
		Data:    map[string]any{"Projects": projects},
	})
}

// Project renders one project.
func (p *Public) Project(w http.ResponseWriter, r *http.Request) {
	project, err := crud.ProjectSchema().Fetch(r.Context(), p.api, chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.renderer.Public(w, r, http.StatusOK, "project", &render.PageData{
		Title:   project.Title,
		Section: "projects",
		Meta: &Meta{
			Title:       project.Title,
			Description: sanitize.Excerpt(project.Description, 200),
			Image:       project.Thumbnail,
			URL:         absoluteURL(r, "/projects/"+project.ID),
			Type:        "article",
		},
		Data: map[string]any{"Project": project},
	})
}

// ContactPage renders the contact form.
func (p *Public) ContactPage(w http.ResponseWriter, r *http.Request) {
	p.renderContact(w, r, http.StatusOK, map[string]any{})
}

// ContactSubmit forwards a contact message to the content API, which
// stores it for the back office inbox.
func (p *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))
	form := map[string]any{"Name": name, "Email": email, "Message": message}

	if msg := validateContact(name, email, message); msg != "" {
		form["Error"] = msg
		p.renderContact(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	body := apiclient.JSON(map[string]string{"name": name, "email": email, "message": message})
	if err := p.api.Post(r.Context(), "/contact-forms", body, nil); err != nil {
		slog.Error("contact submission failed", "error", err)
		form["Error"] = "Your message could not be sent right now. Please try again later."
		p.renderContact(w, r, http.StatusBadGateway, form)
		return
	}

	slog.Info("contact message sent", "email", email)
	p.renderContact(w, r, http.StatusOK, map[string]any{"Sent": true})
}

func (p *Public) renderContact(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	for _, k := range []string{"Name", "Email", "Message"} {
		if _, ok := data[k]; !ok {
			data[k] = ""
		}
	}
	p.renderer.Public(w, r, status, "contact", &render.PageData{
		Title:   "Contact",
		Section: "contact",
		Meta:    &Meta{Title: "Contact Atelier", URL: absoluteURL(r, "/contact")},
		Data:    data,
	})
}

// NotFound renders the site's 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.Public(w, r, http.StatusNotFound, "error", &render.PageData{
		Title: "Page not found",
		Data:  map[string]any{"Message": "The page you are looking for does not exist or has been removed."},
	})
}

// fail answers a detail page whose record could not be loaded.
func (p *Public) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, crud.ErrNotFound) {
		p.NotFound(w, r)
		return
	}
	slog.Error("public fetch failed", "path", r.URL.Path, "error", err)
	p.unavailable(w, r)
}

// unavailable answers when the content API cannot be reached. The page is
// not cached.
func (p *Public) unavailable(w http.ResponseWriter, r *http.Request) {
	p.renderer.Public(w, r, http.StatusBadGateway, "error", &render.PageData{
		Title: "Temporarily unavailable",
		Data:  map[string]any{"Message": "We could not load this page right now. Please try again in a moment."},
	})
}

// Meta is the share metadata of a public page.
type Meta = render.Meta

// absoluteURL builds the public URL of path for share metadata.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

// knownCategory returns c if it is one of the allowed values.
func knownCategory(c string, allowed []string) string {
	if slices.Contains(allowed, c) {
		return c
	}
	return ""
}

// head returns at most the first n items.
func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
