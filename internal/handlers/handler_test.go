// handler_test.go provides shared test infrastructure for handler tests.
// Handlers talk to an in-memory fake of the content API; tests that also
// need PostgreSQL or Valkey are skipped when those are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"atelier/internal/apiclient"
	"atelier/internal/cache"
	"atelier/internal/database"
	"atelier/internal/middleware"
	"atelier/internal/preview"
	"atelier/internal/render"
	"atelier/internal/session"
	"atelier/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL, runs migrations and
// seeds the default admin.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "atelier")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "atelier")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)
	if err := database.Seed(db); err != nil {
		db.Close()
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "flash:*", "page:*", "preview:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return renderer
}

// apiEnv wires handlers to the fake content API only. Sessions, stores,
// previews and the page cache are left nil.
type apiEnv struct {
	API    *fakeAPI
	Admin  *Admin
	Public *Public
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	fake, client := newFakeAPI(t)
	renderer := testRenderer(t)
	return &apiEnv{
		API:    fake,
		Admin:  NewAdmin(renderer, nil, client, nil, nil, nil, nil, nil),
		Public: NewPublic(renderer, client),
	}
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	API         *fakeAPI
	Renderer    *render.Renderer
	Sessions    *session.Store
	UserStore   *store.UserStore
	OptionStore *store.OptionStore
	Previews    *preview.Store
	PageCache   *cache.PageCache
	Admin       *Admin
	Auth        *Auth
	Public      *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)
	fake, client := newFakeAPI(t)
	renderer := testRenderer(t)

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	optionStore := store.NewOptionStore(db)
	previews := preview.NewStore(vk, time.Minute)
	pageCache := cache.NewPageCache(vk, time.Minute)

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		API:         fake,
		Renderer:    renderer,
		Sessions:    sessions,
		UserStore:   userStore,
		OptionStore: optionStore,
		Previews:    previews,
		PageCache:   pageCache,
		Admin:       NewAdmin(renderer, sessions, client, userStore, optionStore, previews, pageCache, nil),
		Auth:        NewAuth(renderer, sessions, userStore),
		Public:      NewPublic(renderer, client),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// adminRouter mounts the entity sections the way the router does, minus
// authentication.
func adminRouter(a *Admin) http.Handler {
	r := chi.NewRouter()
	a.MountSections(r)
	return r
}

// publicRouter mounts the public pages the way the router does.
func publicRouter(p *Public) http.Handler {
	r := chi.NewRouter()
	r.Get("/", p.Homepage)
	r.Get("/about", p.About)
	r.Get("/contact", p.ContactPage)
	r.Post("/contact", p.ContactSubmit)
	r.Get("/products", p.Products)
	r.Get("/products/{id}", p.Product)
	r.Get("/products/{id}/{slug}", p.Product)
	r.Get("/catalogues", p.Catalogues)
	r.Get("/blogs", p.Blogs)
	r.Get("/blogs/{id}", p.Blog)
	r.Get("/projects", p.Projects)
	r.Get("/projects/{id}", p.Project)
	r.NotFound(p.NotFound)
	return r
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// captured is one request as seen by the fake API.
type captured struct {
	Method string
	Path   string
	Fields map[string]any
	Files  map[string][]string
}

// fakeAPI is an in-memory stand-in for the content API. Collections are
// keyed by their first path segment.
type fakeAPI struct {
	mu       sync.Mutex
	data     map[string][]map[string]any
	requests []captured
	failAll  bool
	failVerb string
	nextID   int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *apiclient.Client) {
	t.Helper()
	f := &fakeAPI{data: map[string][]map[string]any{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, apiclient.New(srv.URL, srv.Client())
}

func (f *fakeAPI) seed(collection string, records ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[collection] = append(f.data[collection], records...)
}

func (f *fakeAPI) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = v
}

// failMethod makes every request with the given method fail.
func (f *fakeAPI) failMethod(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failVerb = method
}

func (f *fakeAPI) mutations() []captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []captured
	for _, c := range f.requests {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := captured{Method: r.Method, Path: r.URL.Path}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/json":
		json.NewDecoder(r.Body).Decode(&c.Fields)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(10 << 20); err == nil {
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
	}
	f.requests = append(f.requests, c)

	if f.failAll || r.Method == f.failVerb {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"database unavailable"}`))
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	coll, id := parts[0], ""
	if len(parts) > 1 {
		id = parts[1]
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		items := f.data[coll]
		if items == nil {
			items = []map[string]any{}
		}
		writeJSON(w, http.StatusOK, items)
	case r.Method == http.MethodGet:
		if rec := f.find(coll, id); rec != nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
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
		writeJSON(w, http.StatusCreated, rec)
	case r.Method == http.MethodPut:
		if rec := f.find(coll, id); rec != nil {
			for k, v := range c.Fields {
				rec[k] = v
			}
			writeJSON(w, http.StatusOK, rec)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	case r.Method == http.MethodDelete:
		items := f.data[coll]
		for i, rec := range items {
			if rec["_id"] == id {
				f.data[coll] = append(items[:i:i], items[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]any{"message": "deleted"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (f *fakeAPI) find(coll, id string) map[string]any {
	for _, rec := range f.data[coll] {
		if rec["_id"] == id {
			return rec
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
