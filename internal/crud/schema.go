// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package crud implements the list+editor workflow shared by every admin
// section. A Schema describes one entity type (API paths, fields, file
// fields); a Panel holds the collection for one page view and performs
// create, update and delete against the content API, reconciling its local
// collection with what the server returns.
package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"atelier/internal/apiclient"
	"atelier/internal/models"
)

// Record is implemented by every entity the API owns.
type Record interface {
	RecordID() string
}

// API is the subset of the content API client a Panel needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body apiclient.Payload, out any) error
	Put(ctx context.Context, path string, body apiclient.Payload, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// FieldKind controls how a field is rendered, validated and encoded.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindTextArea    FieldKind = "textarea"
	KindRichText    FieldKind = "richtext"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindEmail       FieldKind = "email"
	KindDate        FieldKind = "date" // display only
)

// Field describes one editable (or displayed) attribute of a record.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Column   bool // shown in the list table

	// Options are the fixed choices for select and multiselect fields.
	Options []string
	// OptionSet names a persisted, user-extensible option set. When set,
	// the editor offers defaults plus stored values and accepts free text.
	OptionSet models.OptionKind
}

// Multi reports whether the field holds a set of values.
func (f Field) Multi() bool {
	return f.Kind == KindMultiSelect
}

// Editable reports whether the field appears in the editor form.
func (f Field) Editable() bool {
	return f.Kind != KindDate
}

// FileField describes a file input.
type FileField struct {
	Name             string
	Label            string
	Multiple         bool
	RequiredOnCreate bool
	// Accept lists allowed MIME types; "image/*" style wildcards are allowed.
	Accept []string
	// Sniff additionally checks the file content against Accept.
	Sniff bool
}

// AcceptAttr returns Accept as an HTML accept attribute value.
func (f FileField) AcceptAttr() string {
	return strings.Join(f.Accept, ",")
}

// Schema configures a Panel for one entity type.
type Schema[T Record] struct {
	Name   string // URL segment and log key, e.g. "products"
	Label  string // singular display name, e.g. "Product"
	Plural string // plural display name, e.g. "Products"

	ListPath   string // GET collection
	CreatePath string // POST new record
	ItemPath   string // prefix for PUT/DELETE, the record ID is appended

	// Envelope is the key wrapping the record in create/update responses
	// ({"catalogue": {...}}). Empty means the body is the record.
	Envelope string

	Singleton bool // at most one record may exist
	ReadOnly  bool // records are never created or edited here
	Prepend   bool // new records go to the top of the list

	Fields []Field
	Files  []FileField

	// Prepare runs after validation and before the request is built. It
	// may add derived values or files to the form.
	Prepare func(ctx context.Context, f *Form) error
}

// Field looks up a field by name.
func (s *Schema[T]) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FileField looks up a file field by name.
func (s *Schema[T]) FileField(name string) (FileField, bool) {
	for _, f := range s.Files {
		if f.Name == name {
			return f, true
		}
	}
	return FileField{}, false
}

// Columns returns the fields shown in the list table.
func (s *Schema[T]) Columns() []Field {
	var cols []Field
	for _, f := range s.Fields {
		if f.Column {
			cols = append(cols, f)
		}
	}
	return cols
}

// EditableFields returns the fields shown in the editor.
func (s *Schema[T]) EditableFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Editable() {
			out = append(out, f)
		}
	}
	return out
}

// itemPath returns the API path of a single record.
func (s *Schema[T]) itemPath(id string) string {
	return strings.TrimRight(s.ItemPath, "/") + "/" + url.PathEscape(id)
}

// Fetch loads a single record by ID. A missing record or an empty
// response yields ErrNotFound.
func (s *Schema[T]) Fetch(ctx context.Context, api API, id string) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := api.Get(ctx, s.itemPath(id), &raw); err != nil {
		if apiclient.IsNotFound(err) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("fetch %s %s: %w", s.Name, id, err)
	}
	rec, err := s.decode(raw)
	if err != nil {
		return zero, err
	}
	if rec.RecordID() == "" {
		return zero, ErrNotFound
	}
	return rec, nil
}

// decode reads a single record, unwrapping the envelope when present.
func (s *Schema[T]) decode(raw json.RawMessage) (T, error) {
	var rec T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return rec, nil
	}
	if s.Envelope != "" {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return rec, fmt.Errorf("decode response: %w", err)
		}
		if inner, ok := wrapped[s.Envelope]; ok {
			raw = inner
		}
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode response: %w", err)
	}
	return rec, nil
}
