// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Upload is a file submitted with a form, fully read into memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaType returns the declared content type without parameters.
func (u Upload) MediaType() string {
	mt, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(u.ContentType))
	}
	return mt
}

// Form is a submitted editor: text values plus uploaded files.
type Form struct {
	Values url.Values
	Files  map[string][]Upload
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{Values: url.Values{}, Files: map[string][]Upload{}}
}

// Get returns the first value of a field.
func (f *Form) Get(name string) string {
	return f.Values.Get(name)
}

// Set replaces the values of a field.
func (f *Form) Set(name, value string) {
	f.Values.Set(name, value)
}

// Add appends a value to a field.
func (f *Form) Add(name, value string) {
	f.Values.Add(name, value)
}

// AddFile appends an upload to a file field.
func (f *Form) AddFile(name string, u Upload) {
	f.Files[name] = append(f.Files[name], u)
}

// HasFiles reports whether any upload is attached.
func (f *Form) HasFiles() bool {
	for _, list := range f.Files {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

// fileNames returns the names of attached file fields in stable order.
func (f *Form) fileNames() []string {
	names := make([]string, 0, len(f.Files))
	for name, list := range f.Files {
		if len(list) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ParseForm reads an editor submission. Multipart bodies are limited to
// maxBytes; file parts with no content (empty inputs) are ignored.
func ParseForm(r *http.Request, maxBytes int64) (*Form, error) {
	form := NewForm()

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for k, v := range r.PostForm {
			form.Values[k] = append([]string(nil), v...)
		}
		return form, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	for k, v := range r.MultipartForm.Value {
		form.Values[k] = append([]string(nil), v...)
	}
	for name, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			if fh.Size == 0 {
				continue
			}
			file, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("open upload %s: %w", name, err)
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return nil, fmt.Errorf("read upload %s: %w", name, err)
			}
			form.AddFile(name, Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return form, nil
}
