// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"fmt"
	"net/http"
	"strings"

	"atelier/internal/models"
)

// ValidationError reports a submission rejected before any API call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validate checks a submission: required fields are present, required
// files are attached when creating, and every upload matches its field's
// allowed types. Uploads for unknown file fields are rejected.
func (s *Schema[T]) Validate(f *Form, creating bool) error {
	for _, fd := range s.EditableFields() {
		if !fd.Required {
			continue
		}
		if fd.Multi() {
			if len(models.NormalizeSet(f.Values[fd.Name])) == 0 {
				return &ValidationError{Field: fd.Name, Message: fmt.Sprintf("%s is required", fd.Label)}
			}
			continue
		}
		if strings.TrimSpace(f.Get(fd.Name)) == "" {
			return &ValidationError{Field: fd.Name, Message: fmt.Sprintf("%s is required", fd.Label)}
		}
	}

	for name, uploads := range f.Files {
		if len(uploads) == 0 {
			continue
		}
		ff, ok := s.FileField(name)
		if !ok {
			return &ValidationError{Field: name, Message: "unexpected file"}
		}
		if !ff.Multiple && len(uploads) > 1 {
			return &ValidationError{Field: name, Message: fmt.Sprintf("%s accepts a single file", ff.Label)}
		}
		for _, u := range uploads {
			if err := checkUpload(ff, u); err != nil {
				return err
			}
		}
	}

	if creating {
		for _, ff := range s.Files {
			if ff.RequiredOnCreate && len(f.Files[ff.Name]) == 0 {
				return &ValidationError{Field: ff.Name, Message: fmt.Sprintf("%s is required", ff.Label)}
			}
		}
	}
	return nil
}

func checkUpload(ff FileField, u Upload) error {
	if len(ff.Accept) == 0 {
		return nil
	}
	if !acceptable(ff.Accept, u.MediaType()) {
		return &ValidationError{
			Field:   ff.Name,
			Message: fmt.Sprintf("%s: unsupported file type %q", u.Filename, u.MediaType()),
		}
	}
	if ff.Sniff {
		sniffed, _, _ := strings.Cut(http.DetectContentType(u.Data), ";")
		if !acceptable(ff.Accept, sniffed) {
			return &ValidationError{
				Field:   ff.Name,
				Message: fmt.Sprintf("%s: content does not match %s", u.Filename, strings.Join(ff.Accept, ", ")),
			}
		}
	}
	return nil
}

// acceptable reports whether mediaType matches one of the accept patterns.
func acceptable(accept []string, mediaType string) bool {
	mediaType = strings.ToLower(mediaType)
	for _, a := range accept {
		a = strings.ToLower(a)
		if prefix, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
			continue
		}
		if a == mediaType {
			return true
		}
	}
	return false
}
