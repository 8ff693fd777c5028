// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"atelier/internal/models"
	"atelier/internal/render"
	"atelier/internal/session"
)

// UsersList renders the back office accounts. Admin only.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	a.renderUsers(w, r, http.StatusOK, "", a.popFlashes(r))
}

func (a *Admin) renderUsers(w http.ResponseWriter, r *http.Request, status int, errMsg string, flashes []session.Flash) {
	users, err := a.userStore.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
	}
	data := map[string]any{"Users": users}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    data,
		Flashes: flashes,
	})
}

// UserCreate adds a back office account. The new user sets up two-factor
// authentication on first sign-in.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	role := r.FormValue("role")

	if msg := validateUser(displayName, email, password, role); msg != "" {
		a.renderUsers(w, r, http.StatusUnprocessableEntity, msg, nil)
		return
	}

	existing, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		a.renderUsers(w, r, http.StatusUnprocessableEntity, "A user with that email already exists.", nil)
		return
	}

	u, err := a.userStore.Create(email, password, displayName, models.Role(role))
	if err != nil {
		slog.Error("create user failed", "error", err)
		a.renderUsers(w, r, http.StatusInternalServerError, "Could not create the user.", nil)
		return
	}
	slog.Info("user created", "email", u.Email, "role", u.Role)
	a.usersDone(w, r, "User "+u.Email+" added.")
}

// UserResetTOTP clears a user's second factor so they enrol again on next
// sign-in. Admins cannot reset their own.
func (a *Admin) UserResetTOTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if sess := currentUser(r); sess != nil && sess.UserID == id {
		a.renderUsers(w, r, http.StatusConflict, "You cannot reset your own two-factor authentication.", nil)
		return
	}

	u, err := a.userStore.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if u == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err := a.userStore.ResetTOTP(id); err != nil {
		slog.Error("reset totp failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.usersDone(w, r, "Two-factor authentication reset for "+u.Email+".")
}

func (a *Admin) usersDone(w http.ResponseWriter, r *http.Request, msg string) {
	if isHTMX(r) {
		a.renderUsers(w, r, http.StatusOK, "", []session.Flash{{Type: "success", Message: msg}})
		return
	}
	a.flash(r, "success", msg)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
