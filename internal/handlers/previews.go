// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"atelier/internal/imaging"
	"atelier/internal/models"
	"atelier/internal/preview"
)

// maxPreviewBytes bounds a single file sent for preview.
const maxPreviewBytes = 32 << 20

var errUnsupportedPreview = errors.New("unsupported file type")

// previewFunc downscales an uploaded file into a preview image.
type previewFunc func(data []byte, contentType string) (preview.Preview, error)

// imagePreview renders images and the first page of PDFs with libvips.
func imagePreview(data []byte, contentType string) (preview.Preview, error) {
	var (
		out imaging.ProcessedImage
		err error
	)
	switch {
	case strings.HasPrefix(contentType, "image/"):
		out, err = imaging.Thumbnail(data, imaging.PreviewVariant)
	case contentType == models.PDFContentType:
		out, err = imaging.PDFCover(data, imaging.PreviewVariant)
	default:
		return preview.Preview{}, errUnsupportedPreview
	}
	if err != nil {
		return preview.Preview{}, err
	}
	return preview.Preview{ContentType: out.ContentType, Data: out.Data}, nil
}

// CreatePreview stores a downscaled copy of an uploaded file for a short
// time and answers with its URL. Previews never reach the content API.
func (a *Admin) CreatePreview(w http.ResponseWriter, r *http.Request) {
	if a.previews == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPreviewBytes+1))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if len(data) > maxPreviewBytes {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	// The declared type is only a hint; the content decides.
	contentType := http.DetectContentType(data)
	if strings.HasPrefix(contentType, "text/") || contentType == "application/octet-stream" {
		contentType = header.Header.Get("Content-Type")
	}

	pv, err := a.previewer(data, contentType)
	if errors.Is(err, errUnsupportedPreview) {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		slog.Warn("preview render failed", "file", header.Filename, "error", err)
		http.Error(w, "Could not read the file.", http.StatusUnprocessableEntity)
		return
	}

	id, err := a.previews.Put(r.Context(), pv)
	if err != nil {
		slog.Error("store preview failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"id":         id,
		"url":        "/admin/previews/" + id,
		"expires_in": int(a.previews.TTL().Seconds()),
	})
}

// ServePreview returns a stored preview until it expires.
func (a *Admin) ServePreview(w http.ResponseWriter, r *http.Request) {
	if a.previews == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	pv, err := a.previews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("load preview failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if pv == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", pv.ContentType)
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(a.previews.TTL().Seconds())))
	w.Write(pv.Data)
}

// DiscardPreview drops a preview the editor no longer shows, for example
// after a different file was picked.
func (a *Admin) DiscardPreview(w http.ResponseWriter, r *http.Request) {
	if a.previews == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err := a.previews.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("discard preview failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
