// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"atelier/internal/apiclient"
	"atelier/internal/models"
)

// captured is one request as seen by the fake API.
type captured struct {
	Method      string
	Path        string
	ContentType string
	Fields      map[string]any // JSON body, or multipart text fields
	Files       map[string][]string
}

// fakeAPI is an in-memory stand-in for the content API. Collections are
// keyed by their first path segment.
type fakeAPI struct {
	mu        sync.Mutex
	data      map[string][]map[string]any
	envelopes map[string]string
	requests  []captured
	failNext  int
	nextID    int
	// singletonObject answers GET /home-meta with an object, not an array.
	singletonObject bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *apiclient.Client) {
	t.Helper()
	f := &fakeAPI{
		data:      map[string][]map[string]any{},
		envelopes: map[string]string{"catalogues": "catalogue", "projects": "project"},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, apiclient.New(srv.URL, srv.Client())
}

func (f *fakeAPI) seed(collection string, records ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[collection] = append(f.data[collection], records...)
}

func (f *fakeAPI) calls() []captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]captured(nil), f.requests...)
}

func (f *fakeAPI) mutations() []captured {
	var out []captured
	for _, c := range f.calls() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := captured{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type")}
	if err := decodeBody(r, &c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.requests = append(f.requests, c)

	if f.failNext > 0 {
		f.failNext--
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"database unavailable"}`))
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	coll := parts[0]
	id := ""
	if len(parts) > 1 {
		id = parts[1]
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		items := f.data[coll]
		if items == nil {
			items = []map[string]any{}
		}
		if f.singletonObject && coll == "home-meta" {
			if len(items) == 0 {
				writeJSON(w, map[string]any{})
			} else {
				writeJSON(w, items[0])
			}
			return
		}
		writeJSON(w, items)

	case r.Method == http.MethodGet:
		for _, rec := range f.data[coll] {
			if rec["_id"] == id {
				f.respond(w, coll, rec, http.StatusOK)
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)

	case r.Method == http.MethodPost && (id == "" || id == "create"):
		f.nextID++
		rec := map[string]any{"_id": fmt.Sprintf("id-%d", f.nextID)}
		for k, v := range c.Fields {
			rec[k] = v
		}
		for k, names := range c.Files {
			rec[k] = "https://cdn.test/" + names[0]
		}
		f.data[coll] = append(f.data[coll], rec)
		f.respond(w, coll, rec, http.StatusCreated)

	case r.Method == http.MethodPut && id != "":
		for _, rec := range f.data[coll] {
			if rec["_id"] == id {
				for k, v := range c.Fields {
					rec[k] = v
				}
				f.respond(w, coll, rec, http.StatusOK)
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)

	case r.Method == http.MethodDelete && id != "":
		items := f.data[coll]
		for i, rec := range items {
			if rec["_id"] == id {
				f.data[coll] = append(items[:i:i], items[i+1:]...)
				writeJSON(w, map[string]any{"message": "deleted"})
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)

	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (f *fakeAPI) respond(w http.ResponseWriter, coll string, rec map[string]any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if env := f.envelopes[coll]; env != "" {
		json.NewEncoder(w).Encode(map[string]any{"message": "ok", env: rec})
		return
	}
	json.NewEncoder(w).Encode(rec)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, c *captured) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	mt, _, _ := mime.ParseMediaType(c.ContentType)
	switch mt {
	case "application/json":
		return json.NewDecoder(r.Body).Decode(&c.Fields)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return err
		}
		c.Fields = map[string]any{}
		for k, v := range r.MultipartForm.Value {
			c.Fields[k] = v[0]
		}
		c.Files = map[string][]string{}
		for k, fhs := range r.MultipartForm.File {
			for _, fh := range fhs {
				c.Files[k] = append(c.Files[k], fh.Filename)
			}
		}
	}
	return nil
}

// jsonFields decodes a JSON payload the way the API would see it.
func jsonFields(t *testing.T, p apiclient.Payload) map[string]any {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()
	if err := apiclient.New(srv.URL, srv.Client()).Post(context.Background(), "/", p, nil); err != nil {
		t.Fatalf("post payload: %v", err)
	}
	return got
}

func productFixture() models.Product {
	return models.Product{
		ID: "p1", Title: "Basalt", Description: "Dark stone", Category: "GVT",
		Size: models.StringSet{"600×600", "800×800"}, Finish: models.StringSet{"Matte"},
	}
}
