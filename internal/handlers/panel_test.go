package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"atelier/internal/crud"
)

func seedProducts(env *apiEnv) {
	env.API.seed("products",
		map[string]any{"_id": "p1", "title": "Basalt", "description": "Dark stone", "category": "GVT", "size": []string{"600×600"}},
		map[string]any{"_id": "p2", "title": "Oak Plank", "description": "Warm wood look", "category": "Wood"},
	)
}

func TestSectionListRendersRows(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)

	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Basalt", "Oak Plank", `id="row-p1"`, "/admin/products/p2/edit"} {
		if !strings.Contains(body, want) {
			t.Errorf("list missing %q", want)
		}
	}
}

func TestSectionListLoadFailureShowsNotification(t *testing.T) {
	env := newAPIEnv(t)
	env.API.setFailing(true)

	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Could not load products") {
		t.Error("expected a load failure notification")
	}

	// HTMX only swaps 2xx responses, so the notification comes back as 200.
	req := httptest.NewRequest(http.MethodGet, "/products/", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("htmx status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Could not load products") {
		t.Error("expected a load failure notification in the fragment")
	}
}

func TestSingletonCreateRefusedWhenListingFails(t *testing.T) {
	env := newAPIEnv(t)
	env.API.seed("home-meta", map[string]any{"_id": "h1", "title": "Atelier", "description": "Tiles"})
	env.API.failMethod(http.MethodGet)
	router := adminRouter(env.Admin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/home-meta/", url.Values{"title": {"Second"}, "description": {"x"}}))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Could not load") {
		t.Error("expected the load failure notification")
	}
	if strings.Contains(body, "/admin/home-meta/new") {
		t.Error("an unloaded singleton must not offer a create link")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home-meta/new", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("new: got %d, want 502", rec.Code)
	}

	if n := len(env.API.mutations()); n != 0 {
		t.Errorf("create behind a failed listing issued %d API calls", n)
	}
}

func TestMutationsRefusedWhenListingFails(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)
	env.API.failMethod(http.MethodGet)
	router := adminRouter(env.Admin)

	reqs := []*http.Request{
		formRequest(http.MethodPost, "/products/p1", url.Values{"title": {"Basalt"}, "description": {"x"}, "category": {"GVT"}}),
		httptest.NewRequest(http.MethodPost, "/products/p1/delete", nil),
	}
	for _, req := range reqs {
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s %s: got %d, want 200", req.Method, req.URL.Path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Could not load products") {
			t.Errorf("%s %s: expected the load failure notification", req.Method, req.URL.Path)
		}
	}
	if n := len(env.API.mutations()); n != 0 {
		t.Errorf("expected no API mutations, got %d", n)
	}
}

func TestSectionCreateHTMXReturnsReconciledList(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)

	req := formRequest(http.MethodPost, "/products/", url.Values{
		"title":       {"Terrazzo"},
		"description": {"Speckled"},
		"category":    {"Wall"},
		"size":        {"600×600", "600×600"},
		"size_new":    {"900×900, 600×600"},
	})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Push-Url"); got != "/admin/products" {
		t.Errorf("HX-Push-Url: got %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Terrazzo") || !strings.Contains(body, "Basalt") {
		t.Error("reconciled list should hold the new and the existing records")
	}
	if strings.Index(body, "Terrazzo") > strings.Index(body, "Basalt") {
		t.Error("new product should be listed first")
	}
	if !strings.Contains(body, "Product created.") {
		t.Error("expected a success notification")
	}

	muts := env.API.mutations()
	if len(muts) != 1 || muts[0].Method != http.MethodPost || muts[0].Path != "/products" {
		t.Fatalf("mutations: %+v", muts)
	}
	sizes, _ := muts[0].Fields["size"].([]any)
	if len(sizes) != 2 || sizes[0] != "600×600" || sizes[1] != "900×900" {
		t.Errorf("size should be a duplicate-free set with the free-text addition, got %v", muts[0].Fields["size"])
	}
	if _, ok := muts[0].Fields["size_new"]; ok {
		t.Error("size_new must not be sent to the API")
	}
}

func TestSectionCreatePlainRedirects(t *testing.T) {
	env := newAPIEnv(t)

	req := formRequest(http.MethodPost, "/blogs/", url.Values{
		"title":    {"Grout colours"},
		"excerpt":  {"Pick the right one"},
		"content":  {"<p>Hello</p>"},
		"category": {"Tips"},
		"author":   {"Ana"},
	})
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/blogs" {
		t.Errorf("Location: got %q", loc)
	}
	muts := env.API.mutations()
	if len(muts) != 1 || muts[0].Path != "/blogs/create" {
		t.Errorf("mutations: %+v", muts)
	}
}

func TestSectionCreateValidationFailureSkipsAPI(t *testing.T) {
	env := newAPIEnv(t)

	req := formRequest(http.MethodPost, "/products/", url.Values{
		"description": {"No title"},
		"category":    {"GVT"},
	})
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Title is required") {
		t.Error("expected the validation message")
	}
	if !strings.Contains(body, "No title") {
		t.Error("editor should keep the submitted values")
	}
	if n := len(env.API.mutations()); n != 0 {
		t.Errorf("validation failure issued %d API calls", n)
	}
}

func TestSectionUpdateReplacesInPlace(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)

	req := formRequest(http.MethodPost, "/products/p2", url.Values{
		"title":       {"Oak Plank XL"},
		"description": {"Warm wood look"},
		"category":    {"Wood"},
	})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Product updated.") {
		t.Error("expected a success notification")
	}
	if strings.Count(body, `id="row-p2"`) != 1 || !strings.Contains(body, "Oak Plank XL") {
		t.Error("updated record should replace the old row exactly once")
	}
	if strings.Index(body, `id="row-p1"`) > strings.Index(body, `id="row-p2"`) {
		t.Error("update must keep the record's position")
	}
}

func TestSectionUpdateFailureKeepsEditorOpen(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)
	env.API.failMethod(http.MethodPut)

	req := formRequest(http.MethodPost, "/products/p1", url.Values{
		"title":       {"Basalt Dark"},
		"description": {"Dark stone"},
		"category":    {"GVT"},
	})
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to update product") {
		t.Error("expected an error notification")
	}
	if !strings.Contains(body, `value="Basalt Dark"`) {
		t.Error("editor should stay open with the submitted values")
	}
}

func TestSectionEditUnknownRecordRefused(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)

	req := httptest.NewRequest(http.MethodGet, "/products/nope/edit", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Product not found") {
		t.Error("expected a not-found notification")
	}
}

func TestSectionDeleteRequiresConfirmation(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)
	router := adminRouter(env.Admin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1/delete", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `role="alertdialog"`) {
		t.Error("expected a confirmation dialog")
	}
	if n := len(env.API.mutations()); n != 0 {
		t.Fatalf("confirmation step issued %d API calls", n)
	}

	req := httptest.NewRequest(http.MethodPost, "/products/p1/delete", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, `id="row-p1"`) {
		t.Error("deleted row still listed")
	}
	if !strings.Contains(body, `id="row-p2"`) {
		t.Error("other rows should remain")
	}
	muts := env.API.mutations()
	if len(muts) != 1 || muts[0].Method != http.MethodDelete || muts[0].Path != "/products/p1" {
		t.Errorf("mutations: %+v", muts)
	}
}

func TestSectionDeleteMissingRecordRefusedLocally(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)

	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/gone/delete", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if n := len(env.API.mutations()); n != 0 {
		t.Errorf("expected no API call, got %d", n)
	}
}

func TestReadOnlySectionHasNoEditor(t *testing.T) {
	env := newAPIEnv(t)
	env.API.seed("contact-forms", map[string]any{"_id": "c1", "name": "Ana", "email": "ana@example.com", "message": "Hello"})
	router := adminRouter(env.Admin)

	for _, target := range []string{"/contact-forms/new", "/contact-forms/c1/edit"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: got %d, want no route", target, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact-forms/", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "ana@example.com") {
		t.Error("messages should be listed")
	}
	if strings.Contains(body, "/admin/contact-forms/c1/edit") {
		t.Error("read-only rows must not offer an edit link")
	}
}

func TestSingletonCreateRefusedOnceRecordExists(t *testing.T) {
	env := newAPIEnv(t)
	env.API.seed("home-meta", map[string]any{"_id": "h1", "title": "Atelier", "description": "Tiles"})

	req := httptest.NewRequest(http.MethodGet, "/home-meta/new", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Error("expected the singleton refusal notification")
	}

	req = formRequest(http.MethodPost, "/home-meta/", url.Values{"title": {"Second"}, "description": {"x"}})
	rec = httptest.NewRecorder()
	adminRouter(env.Admin).ServeHTTP(rec, req)
	if n := len(env.API.mutations()); n != 0 {
		t.Errorf("singleton create issued %d API calls", n)
	}
}

func TestMergeNewOptions(t *testing.T) {
	env := newAPIEnv(t)
	s := NewSection(env.Admin, crud.ProductSchema())

	form := crud.NewForm()
	form.Values["size"] = []string{"600×600"}
	form.Values["size_new"] = []string{" 900×900 , , 600×600"}
	form.Values["finish_new"] = []string{strings.Repeat("x", 50)}

	added := s.mergeNewOptions(form)

	if got := form.Values["size"]; len(got) != 2 || got[0] != "600×600" || got[1] != "900×900" {
		t.Errorf("size: got %v", got)
	}
	if _, ok := form.Values["size_new"]; ok {
		t.Error("size_new should be removed from the form")
	}
	if len(added) != 1 {
		t.Errorf("only the size set should gain values, got %v", added)
	}
	if _, ok := form.Values["finish"]; ok {
		t.Error("an invalid finish must not be merged")
	}
}

func TestDashboardCounts(t *testing.T) {
	env := newAPIEnv(t)
	seedProducts(env)
	env.API.seed("blogs", map[string]any{"_id": "b1", "title": "Hello"})

	rec := httptest.NewRecorder()
	env.Admin.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Products", "Blog posts", "Messages"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}
