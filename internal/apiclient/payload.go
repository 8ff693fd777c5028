// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Payload is a request body. Use JSON for plain records and Multipart
// whenever a file accompanies the fields.
type Payload interface {
	encode() (io.Reader, string, error)
}

type jsonPayload struct {
	v any
}

// JSON wraps v as an application/json payload.
func JSON(v any) Payload {
	return jsonPayload{v: v}
}

func (p jsonPayload) encode() (io.Reader, string, error) {
	b, err := json.Marshal(p.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(b), "application/json", nil
}

// File is one file part of a multipart payload.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

type formField struct {
	name, value string
}

// Multipart is a multipart/form-data payload. Parts are written in the
// order they were added.
type Multipart struct {
	fields []formField
	files  []File
}

// NewMultipart returns an empty multipart payload.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a text field.
func (m *Multipart) AddField(name, value string) {
	m.fields = append(m.fields, formField{name: name, value: value})
}

// AddFile appends a file part.
func (m *Multipart) AddFile(f File) {
	m.files = append(m.files, f)
}

// HasFiles reports whether any file part was added.
func (m *Multipart) HasFiles() bool {
	return len(m.files) > 0
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	for _, f := range m.files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
