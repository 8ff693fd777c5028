// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"atelier/internal/crud"
	"atelier/internal/models"
)

// AddOption stores one free-text size or finish value and answers with the
// re-rendered checkbox group, the new value selected. The rest of the
// current selection is carried over from the submitted checkboxes.
func (a *Admin) AddOption(w http.ResponseWriter, r *http.Request) {
	kind := models.OptionKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	field, ok := optionField(kind)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	value := strings.TrimSpace(r.FormValue(field.Name + "_new"))
	if msg := validOption(value); msg != "" {
		http.Error(w, msg, http.StatusUnprocessableEntity)
		return
	}

	opts := kind.Defaults()
	if a.optionStore != nil {
		var by *uuid.UUID
		if sess := currentUser(r); sess != nil {
			by = &sess.UserID
		}
		if _, err := a.optionStore.Add(kind, value, by); err != nil {
			slog.Error("add option failed", "kind", kind, "value", value, "error", err)
			http.Error(w, "Could not save the option.", http.StatusInternalServerError)
			return
		}
		stored, err := a.optionStore.List(kind)
		if err != nil {
			slog.Error("list options failed", "kind", kind, "error", err)
		} else {
			opts = stored
		}
	}

	selected := models.NormalizeSet(append(r.Form[field.Name], value))
	opts = slices.Clone(opts)
	for _, v := range selected {
		if !slices.Contains(opts, v) {
			opts = append(opts, v)
		}
	}

	a.renderer.Partial(w, "panel", "optionGroup", map[string]any{
		"Field":    field,
		"Options":  opts,
		"Selected": selected,
	})
}

// optionField finds the product field backed by an option set.
func optionField(kind models.OptionKind) (crud.Field, bool) {
	for _, fd := range crud.ProductSchema().Fields {
		if fd.OptionSet == kind {
			return fd, true
		}
	}
	return crud.Field{}, false
}
