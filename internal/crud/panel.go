// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"atelier/internal/apiclient"
)

// Panel errors returned for operations refused locally.
var (
	ErrReadOnly        = errors.New("crud: records are read-only")
	ErrSingletonExists = errors.New("crud: a record already exists")
	ErrNotFound        = errors.New("crud: record not found")
	ErrNotEditing      = errors.New("crud: editor is not open")
	ErrNoPendingDelete = errors.New("crud: no delete awaiting confirmation")
	ErrNotLoaded       = errors.New("crud: collection not loaded")
)

// State is the panel's current phase.
type State int

const (
	StateLoading State = iota
	StateListing
	StateEditing
	StateSubmitting
	StateDeleting
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateListing:
		return "listing"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateDeleting:
		return "deleting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a short-lived message about the outcome of an operation.
type Notification struct {
	Level   Level
	Message string
}

// Panel holds one entity collection and drives the list/editor workflow
// against the API. A Panel belongs to a single request and is not safe
// for concurrent use.
type Panel[T Record] struct {
	schema *Schema[T]
	api    API

	items    []T
	loaded   bool
	state    State
	creating bool
	editing  *T
	deleteID string
	notes    []Notification
}

// NewPanel returns a panel in the loading state.
func NewPanel[T Record](schema *Schema[T], api API) *Panel[T] {
	return &Panel[T]{schema: schema, api: api, state: StateLoading}
}

// Schema returns the panel's schema.
func (p *Panel[T]) Schema() *Schema[T] { return p.schema }

// State returns the current phase.
func (p *Panel[T]) State() State { return p.state }

// Items returns the collection in server order.
func (p *Panel[T]) Items() []T {
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Find returns the record with the given ID.
func (p *Panel[T]) Find(id string) (T, bool) {
	for _, it := range p.items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Creating reports whether the open editor is for a new record.
func (p *Panel[T]) Creating() bool { return p.creating }

// Editing returns the record loaded into the editor when updating.
func (p *Panel[T]) Editing() (T, bool) {
	if p.editing == nil {
		var zero T
		return zero, false
	}
	return *p.editing, true
}

// PendingDelete returns the ID awaiting delete confirmation.
func (p *Panel[T]) PendingDelete() string { return p.deleteID }

// CanCreate reports whether a new record may be added.
func (p *Panel[T]) CanCreate() bool {
	if p.schema.ReadOnly || !p.loaded {
		return false
	}
	return !p.schema.Singleton || len(p.items) == 0
}

// Notifications drains queued notifications.
func (p *Panel[T]) Notifications() []Notification {
	out := p.notes
	p.notes = nil
	return out
}

func (p *Panel[T]) notify(level Level, format string, args ...any) {
	p.notes = append(p.notes, Notification{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Load fetches the whole collection. On failure the collection is empty
// and transitions that depend on it are refused with ErrNotLoaded.
func (p *Panel[T]) Load(ctx context.Context) error {
	p.state = StateLoading
	p.loaded = false
	var raw json.RawMessage
	err := p.api.Get(ctx, p.schema.ListPath, &raw)
	if err == nil {
		p.items, err = p.decodeList(raw)
	}
	p.state = StateListing
	if err != nil {
		p.items = nil
		slog.Error("crud list failed", "entity", p.schema.Name, "error", err)
		p.notify(LevelError, "Could not load %s: %s", strings.ToLower(p.schema.Plural), reason(err))
		return fmt.Errorf("load %s: %w", p.schema.Name, err)
	}
	p.loaded = true
	return nil
}

// Loaded reports whether the last Load succeeded.
func (p *Panel[T]) Loaded() bool { return p.loaded }

// BeginCreate opens an empty editor.
func (p *Panel[T]) BeginCreate() error {
	if p.schema.ReadOnly {
		return ErrReadOnly
	}
	if !p.loaded {
		return ErrNotLoaded
	}
	if !p.CanCreate() {
		return ErrSingletonExists
	}
	p.state = StateEditing
	p.creating = true
	p.editing = nil
	p.deleteID = ""
	return nil
}

// BeginEdit opens the editor on an existing record.
func (p *Panel[T]) BeginEdit(id string) error {
	if p.schema.ReadOnly {
		return ErrReadOnly
	}
	if !p.loaded {
		return ErrNotLoaded
	}
	rec, ok := p.Find(id)
	if !ok {
		return ErrNotFound
	}
	p.state = StateEditing
	p.creating = false
	p.editing = &rec
	p.deleteID = ""
	return nil
}

// CancelEdit closes the editor without saving.
func (p *Panel[T]) CancelEdit() {
	p.state = StateListing
	p.creating = false
	p.editing = nil
}

// Submit validates the form and creates or updates the record. Validation
// failures never reach the API. On failure the editor stays open.
func (p *Panel[T]) Submit(ctx context.Context, f *Form) (T, error) {
	var zero T
	if p.state != StateEditing {
		return zero, ErrNotEditing
	}
	op := "update"
	if p.creating {
		op = "create"
	}

	fail := func(err error) (T, error) {
		p.state = StateEditing
		slog.Error("crud "+op+" failed", "entity", p.schema.Name, "error", err)
		p.notify(LevelError, "Failed to %s %s: %s", op, strings.ToLower(p.schema.Label), reason(err))
		return zero, err
	}

	if err := p.schema.Validate(f, p.creating); err != nil {
		return fail(err)
	}
	if p.schema.Prepare != nil {
		if err := p.schema.Prepare(ctx, f); err != nil {
			return fail(fmt.Errorf("prepare: %w", err))
		}
	}
	body, err := p.schema.BuildPayload(f, p.creating)
	if err != nil {
		return fail(err)
	}

	p.state = StateSubmitting
	var raw json.RawMessage
	if p.creating {
		err = p.api.Post(ctx, p.schema.CreatePath, body, &raw)
	} else {
		err = p.api.Put(ctx, p.schema.itemPath((*p.editing).RecordID()), body, &raw)
	}
	if err != nil {
		return fail(err)
	}

	rec, err := p.schema.decode(raw)
	if err != nil {
		return fail(err)
	}

	if rec.RecordID() == "" {
		// The server acknowledged without echoing the record; resync.
		if err := p.Load(ctx); err != nil {
			return zero, err
		}
	} else if p.creating {
		p.insert(rec)
	} else {
		p.replace((*p.editing).RecordID(), rec)
	}

	if p.creating {
		p.notify(LevelSuccess, "%s created.", p.schema.Label)
	} else {
		p.notify(LevelSuccess, "%s updated.", p.schema.Label)
	}
	p.state = StateListing
	p.creating = false
	p.editing = nil
	return rec, nil
}

// insert adds a created record once, replacing any row with the same ID.
func (p *Panel[T]) insert(rec T) {
	for i, it := range p.items {
		if it.RecordID() == rec.RecordID() {
			p.items[i] = rec
			return
		}
	}
	if p.schema.Prepend {
		p.items = append([]T{rec}, p.items...)
		return
	}
	p.items = append(p.items, rec)
}

// replace swaps the record with the given ID in place.
func (p *Panel[T]) replace(id string, rec T) {
	for i, it := range p.items {
		if it.RecordID() == id {
			p.items[i] = rec
			return
		}
	}
	p.items = append(p.items, rec)
}

// RequestDelete opens the delete confirmation for a record still listed.
func (p *Panel[T]) RequestDelete(id string) error {
	if !p.loaded {
		return ErrNotLoaded
	}
	if _, ok := p.Find(id); !ok {
		return ErrNotFound
	}
	p.state = StateDeleting
	p.deleteID = id
	return nil
}

// CancelDelete closes the confirmation without deleting.
func (p *Panel[T]) CancelDelete() {
	p.state = StateListing
	p.deleteID = ""
}

// ConfirmDelete deletes the record awaiting confirmation. The confirmation
// closes whether or not the call succeeds.
func (p *Panel[T]) ConfirmDelete(ctx context.Context) error {
	if p.state != StateDeleting || p.deleteID == "" {
		return ErrNoPendingDelete
	}
	id := p.deleteID
	p.deleteID = ""
	p.state = StateListing

	if err := p.api.Delete(ctx, p.schema.itemPath(id), nil); err != nil {
		slog.Error("crud delete failed", "entity", p.schema.Name, "id", id, "error", err)
		p.notify(LevelError, "Failed to delete %s: %s", strings.ToLower(p.schema.Label), reason(err))
		return err
	}

	kept := p.items[:0]
	for _, it := range p.items {
		if it.RecordID() != id {
			kept = append(kept, it)
		}
	}
	p.items = kept
	p.notify(LevelSuccess, "%s deleted.", p.schema.Label)
	return nil
}

// decodeList accepts a JSON array, an object wrapping the array under the
// schema name, or (for singletons) a bare record.
func (p *Panel[T]) decodeList(raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if inner, ok := wrapped[p.schema.Name]; ok {
		return p.decodeList(inner)
	}
	if !p.schema.Singleton {
		return nil, fmt.Errorf("decode list: expected an array")
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec.RecordID() == "" {
		return nil, nil
	}
	return []T{rec}, nil
}

// reason renders an error for a notification.
func reason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return se.Message()
	}
	return "the server could not be reached"
}
