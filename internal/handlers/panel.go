// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"atelier/internal/crud"
	"atelier/internal/models"
	"atelier/internal/render"
	"atelier/internal/session"
)

// Section serves the list+editor pages of one entity type under
// /admin/{name}. Every request loads the collection fresh from the API and
// drives a crud.Panel through the requested transition.
type Section[T crud.Record] struct {
	admin  *Admin
	schema *crud.Schema[T]
}

// NewSection mounts a schema on the admin handler group.
func NewSection[T crud.Record](a *Admin, schema *crud.Schema[T]) *Section[T] {
	return &Section[T]{admin: a, schema: schema}
}

// Routes registers the section's handlers on r. Read-only sections get
// list and delete only.
func (s *Section[T]) Routes(r chi.Router) {
	r.Get("/", s.List)
	r.Get("/{id}/delete", s.ConfirmDelete)
	r.Post("/{id}/delete", s.Delete)
	if s.schema.ReadOnly {
		return
	}
	r.Get("/new", s.New)
	r.Post("/", s.Create)
	r.Get("/{id}/edit", s.Edit)
	r.Post("/{id}", s.Update)
}

// load builds a panel holding the current collection. On failure the
// panel is empty and carries the load error notification.
func (s *Section[T]) load(r *http.Request) (*crud.Panel[T], error) {
	p := crud.NewPanel(s.schema, s.admin.api)
	return p, p.Load(r.Context())
}

// List renders the collection.
func (s *Section[T]) List(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	s.render(w, r, http.StatusOK, p, nil, s.admin.popFlashes(r))
}

// New opens an empty editor.
func (s *Section[T]) New(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	if err := p.BeginCreate(); err != nil {
		s.refuse(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, p, nil, nil)
}

// Edit opens the editor on an existing record.
func (s *Section[T]) Edit(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	if err := p.BeginEdit(chi.URLParam(r, "id")); err != nil {
		s.refuse(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, p, nil, nil)
}

// Create handles the new record form submission. Nothing is sent to the
// API unless the collection loaded, so a singleton cannot be created twice
// behind a failed listing.
func (s *Section[T]) Create(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	if err := p.BeginCreate(); err != nil {
		s.refuse(w, r, p, err)
		return
	}
	s.submit(w, r, p)
}

// Update handles the edit form submission.
func (s *Section[T]) Update(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	if err := p.BeginEdit(chi.URLParam(r, "id")); err != nil {
		s.refuse(w, r, p, err)
		return
	}
	s.submit(w, r, p)
}

// ConfirmDelete asks for confirmation before deleting a record.
func (s *Section[T]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	if err := p.RequestDelete(chi.URLParam(r, "id")); err != nil {
		s.refuse(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, p, nil, nil)
}

// Delete removes a record after confirmation. A record that is no longer
// listed is refused without calling the API.
func (s *Section[T]) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		s.unavailable(w, r, p)
		return
	}
	if err := p.RequestDelete(chi.URLParam(r, "id")); err != nil {
		s.refuse(w, r, p, err)
		return
	}
	if err := p.ConfirmDelete(r.Context()); err != nil {
		s.done(w, r, p)
		return
	}
	s.admin.invalidatePublic(r.Context())
	s.done(w, r, p)
}

// submit parses the editor form and hands it to the panel. On failure the
// editor is shown again with the submitted values.
func (s *Section[T]) submit(w http.ResponseWriter, r *http.Request, p *crud.Panel[T]) {
	form, err := crud.ParseForm(r, MaxUploadBytes)
	if err != nil {
		slog.Warn("parse editor form failed", "entity", s.schema.Name, "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	added := s.mergeNewOptions(form)

	if _, err := p.Submit(r.Context(), form); err != nil {
		status := http.StatusBadGateway
		var verr *crud.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		s.render(w, r, status, p, &editorState{form: form, err: verr}, nil)
		return
	}

	s.persistOptions(r, added)
	s.admin.invalidatePublic(r.Context())
	s.done(w, r, p)
}

// done finishes a mutation. HTMX requests get the reconciled list right
// away; plain requests are redirected with the outcome as a flash.
func (s *Section[T]) done(w http.ResponseWriter, r *http.Request, p *crud.Panel[T]) {
	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", "/admin/"+s.schema.Name)
		s.render(w, r, http.StatusOK, p, nil, nil)
		return
	}
	for _, n := range p.Notifications() {
		s.admin.flash(r, string(n.Level), n.Message)
	}
	http.Redirect(w, r, "/admin/"+s.schema.Name, http.StatusSeeOther)
}

// unavailable answers a request whose collection could not be loaded. The
// panel is shown empty with its load notification and no transition runs.
func (s *Section[T]) unavailable(w http.ResponseWriter, r *http.Request, p *crud.Panel[T]) {
	s.render(w, r, http.StatusBadGateway, p, nil, nil)
}

// refuse answers a transition the panel rejected locally.
func (s *Section[T]) refuse(w http.ResponseWriter, r *http.Request, p *crud.Panel[T], err error) {
	if errors.Is(err, crud.ErrNotLoaded) {
		s.unavailable(w, r, p)
		return
	}
	msg := "That action is not available."
	switch {
	case errors.Is(err, crud.ErrNotFound):
		msg = s.schema.Label + " not found. It may have been removed already."
	case errors.Is(err, crud.ErrSingletonExists):
		msg = s.schema.Label + " already exists. Edit the existing record instead."
	case errors.Is(err, crud.ErrReadOnly):
		msg = s.schema.Plural + " cannot be edited here."
	}
	if isHTMX(r) {
		s.render(w, r, http.StatusOK, p, nil, []session.Flash{{Type: "error", Message: msg}})
		return
	}
	s.admin.flash(r, "error", msg)
	http.Redirect(w, r, "/admin/"+s.schema.Name, http.StatusSeeOther)
}

// editorState carries a rejected submission back into the editor.
type editorState struct {
	form *crud.Form
	err  *crud.ValidationError
}

// render shows the panel. Notifications queued on the panel are shown
// along with any extra flashes.
func (s *Section[T]) render(w http.ResponseWriter, r *http.Request, status int, p *crud.Panel[T], ed *editorState, extra []session.Flash) {
	v := p.View()
	if ed != nil {
		v.Form = ed.form
		v.Error = ed.err
	}
	s.decorateOptions(&v)

	flashes := append(extra, toFlashes(p.Notifications())...)
	s.admin.renderer.PageStatus(w, r, status, "panel", &render.PageData{
		Title:   s.schema.Plural,
		Section: s.schema.Name,
		Data:    map[string]any{"View": v},
		Flashes: flashes,
	})
}

// decorateOptions offers stored option values for option-set fields, and
// keeps values already selected on the record even if they are no longer
// offered.
func (s *Section[T]) decorateOptions(v *crud.View) {
	for _, fd := range v.Fields {
		if fd.OptionSet == "" {
			continue
		}
		opts := fd.OptionSet.Defaults()
		if s.admin.optionStore != nil {
			stored, err := s.admin.optionStore.List(fd.OptionSet)
			if err != nil {
				slog.Error("list options failed", "kind", fd.OptionSet, "error", err)
			} else {
				opts = stored
			}
		}
		opts = slices.Clone(opts)
		if v.Form != nil {
			for _, sel := range v.Form.Values[fd.Name] {
				if !slices.Contains(opts, sel) {
					opts = append(opts, sel)
				}
			}
		}
		v.Options[fd.Name] = opts
	}
}

// mergeNewOptions moves free-text additions ("size_new") into the field's
// selection. It returns the added values per option set.
func (s *Section[T]) mergeNewOptions(form *crud.Form) map[models.OptionKind][]string {
	added := make(map[models.OptionKind][]string)
	for _, fd := range s.schema.EditableFields() {
		if fd.OptionSet == "" {
			continue
		}
		key := fd.Name + "_new"
		var fresh []string
		for _, raw := range form.Values[key] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" && validOption(v) == "" {
					fresh = append(fresh, v)
				}
			}
		}
		form.Values.Del(key)
		if len(fresh) == 0 {
			continue
		}
		form.Values[fd.Name] = models.NormalizeSet(append(form.Values[fd.Name], fresh...))
		added[fd.OptionSet] = fresh
	}
	return added
}

// persistOptions stores free-text additions so they are offered next time.
func (s *Section[T]) persistOptions(r *http.Request, added map[models.OptionKind][]string) {
	if s.admin.optionStore == nil || len(added) == 0 {
		return
	}
	var by *uuid.UUID
	if sess := currentUser(r); sess != nil {
		by = &sess.UserID
	}
	for kind, values := range added {
		if _, err := s.admin.optionStore.AddAll(kind, values, by); err != nil {
			slog.Error("save options failed", "kind", kind, "error", err)
		}
	}
}

// MountSections registers every entity section under its name.
func (a *Admin) MountSections(r chi.Router) {
	r.Route("/products", NewSection(a, crud.ProductSchema()).Routes)
	r.Route("/catalogues", NewSection(a, crud.CatalogueSchema(a.thumbnailer)).Routes)
	r.Route("/blogs", NewSection(a, crud.BlogSchema()).Routes)
	r.Route("/projects", NewSection(a, crud.ProjectSchema()).Routes)
	r.Route("/contact-forms", NewSection(a, crud.ContactFormSchema()).Routes)
	r.Route("/home-meta", NewSection(a, crud.HomeMetaSchema()).Routes)
}
