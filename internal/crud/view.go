// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one record prepared for the list table.
type Row struct {
	ID    string
	Cells []string
	Thumb string
}

// View is a snapshot of a panel for templates, which cannot work with
// generic types directly.
type View struct {
	Name      string
	Label     string
	Plural    string
	ReadOnly  bool
	Singleton bool
	Columns   []Field
	Fields    []Field
	Files     []FileField
	Rows      []Row
	CanCreate bool
	State     State

	// Editor state. Form holds the values shown in the editor; Options the
	// choices offered for select and multiselect fields, keyed by field.
	Creating bool
	EditID   string
	Form     *Form
	Options  map[string][]string
	Existing map[string][]string
	Error    *ValidationError

	PendingDelete string
	PendingTitle  string
}

// Editing reports whether the editor is open.
func (v View) Editing() bool { return v.Creating || v.EditID != "" }

// View snapshots the panel.
func (p *Panel[T]) View() View {
	s := p.schema
	v := View{
		Name:      s.Name,
		Label:     s.Label,
		Plural:    s.Plural,
		ReadOnly:  s.ReadOnly,
		Singleton: s.Singleton,
		Columns:   s.Columns(),
		Fields:    s.EditableFields(),
		Files:     s.Files,
		Rows:      p.Rows(),
		CanCreate: p.CanCreate(),
		State:     p.state,
		Creating:  p.creating,
		Options:   make(map[string][]string),
	}
	for _, fd := range v.Fields {
		if len(fd.Options) > 0 {
			v.Options[fd.Name] = fd.Options
		} else if fd.OptionSet != "" {
			v.Options[fd.Name] = fd.OptionSet.Defaults()
		}
	}
	switch {
	case p.creating:
		v.Form = NewForm()
	case p.editing != nil:
		v.EditID = (*p.editing).RecordID()
		v.Form = s.FormFor(*p.editing)
		v.Existing = existingFiles(s.Files, *p.editing)
	}
	if p.deleteID != "" {
		v.PendingDelete = p.deleteID
		if rec, ok := p.Find(p.deleteID); ok {
			v.PendingTitle = title(rec)
		}
	}
	return v
}

// existingFiles lists the stored URLs of a record's file fields.
func existingFiles(files []FileField, rec Record) map[string][]string {
	vals := recordMap(rec)
	out := make(map[string][]string)
	for _, ff := range files {
		switch v := vals[ff.Name].(type) {
		case string:
			if v != "" {
				out[ff.Name] = []string{v}
			}
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok && s != "" {
					out[ff.Name] = append(out[ff.Name], s)
				}
			}
		}
	}
	return out
}

// title names a record for confirmations.
func title(rec Record) string {
	vals := recordMap(rec)
	for _, k := range []string{"title", "name", "email"} {
		if s, ok := vals[k].(string); ok && s != "" {
			return s
		}
	}
	return rec.RecordID()
}

// Rows renders the collection for the list table.
func (p *Panel[T]) Rows() []Row {
	cols := p.schema.Columns()
	rows := make([]Row, 0, len(p.items))
	for _, it := range p.items {
		vals := recordMap(it)
		row := Row{ID: it.RecordID(), Cells: make([]string, len(cols))}
		for i, c := range cols {
			row.Cells[i] = cell(c, vals[c.Name])
		}
		if s, ok := vals["thumbnail"].(string); ok {
			row.Thumb = s
		}
		rows = append(rows, row)
	}
	return rows
}

// FormFor fills a form with a record's current values for the editor.
func (s *Schema[T]) FormFor(rec T) *Form {
	f := NewForm()
	vals := recordMap(rec)
	for _, fd := range s.EditableFields() {
		switch v := vals[fd.Name].(type) {
		case nil:
		case []any:
			for _, e := range v {
				f.Add(fd.Name, scalar(e))
			}
		default:
			f.Set(fd.Name, scalar(v))
		}
	}
	return f
}

// recordMap views a record through its JSON encoding.
func recordMap(rec any) map[string]any {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func cell(fd Field, v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, scalar(e))
		}
		return strings.Join(parts, ", ")
	case string:
		if fd.Kind == KindDate {
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				return ts.Format("02 Jan 2006 15:04")
			}
		}
		return t
	}
	return scalar(v)
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
