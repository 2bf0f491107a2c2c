package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sternrassler/notion-blog/internal/testutil"
	"github.com/Sternrassler/notion-blog/pkg/blog"
	"github.com/Sternrassler/notion-blog/pkg/client"
	"github.com/rs/zerolog"
)

// newTestBlog serves a blog from the mock with three posts:
// p1 (go), p2 (go, web, rank 2) and p3 (rank 1).
func newTestBlog(t *testing.T) (*blog.Client, *testutil.MockNotion) {
	t.Helper()

	mock := testutil.NewMockNotion()
	t.Cleanup(mock.Close)

	mock.SetEntries(
		testutil.EntryJSON(testutil.Entry{ID: "p1", Title: "First", Slug: "first", Date: "2024-03-01", Tags: []string{"go"}, Published: true}),
		testutil.EntryJSON(testutil.Entry{ID: "p2", Title: "Second", Slug: "second", Date: "2024-02-01", Tags: []string{"go", "web"}, Rank: 2, Published: true}),
		testutil.EntryJSON(testutil.Entry{ID: "p3", Title: "Third", Slug: "third", Date: "2024-01-01", Rank: 1, Published: true}),
	)
	mock.SetDatabase(testutil.DatabaseJSON("Blog", "Notes on things", "📝"))
	mock.SetChildren("p1", testutil.ParagraphJSON("b1", "Hello", true))
	mock.SetChildren("b1", testutil.ParagraphJSON("b1a", "Nested", false))

	cfg := client.DefaultConfig("secret_test")
	cfg.BaseURL = mock.URL()
	cfg.RequestsPerSecond = 0
	notionClient, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}

	blogCfg := blog.DefaultConfig("db1")
	blogCfg.PageSize = 2
	b, err := blog.New(notionClient, blogCfg)
	if err != nil {
		t.Fatalf("blog.New() error = %v", err)
	}
	return b, mock
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: invalid JSON: %v", path, err)
		}
	}
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	w, body := get(t, router, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	// Fill the cache so slot and request metrics exist.
	get(t, router, "/api/posts")

	w, _ := get(t, router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	for _, name := range []string{"notion_requests_total", "notion_pages_fetched_total", "notion_cache_slot_loads_total"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Errorf("metrics output is missing %s", name)
		}
	}
}

func TestListPostsEndpoint(t *testing.T) {
	b, mock := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	tests := []struct {
		path      string
		wantCode  int
		wantSlugs []string
	}{
		{"/api/posts", http.StatusOK, []string{"first", "second"}},
		{"/api/posts?page=2", http.StatusOK, []string{"third"}},
		{"/api/posts?page=3", http.StatusOK, []string{}},
		{"/api/posts?page=0", http.StatusBadRequest, nil},
		{"/api/posts?page=x", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, body := get(t, router, tt.path)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantSlugs == nil {
				return
			}
			if body["pages"] != float64(2) {
				t.Errorf("pages = %v, want 2", body["pages"])
			}
			posts, _ := body["posts"].([]any)
			if len(posts) != len(tt.wantSlugs) {
				t.Fatalf("posts = %v, want %v", posts, tt.wantSlugs)
			}
			for i, p := range posts {
				if slug := p.(map[string]any)["Slug"]; slug != tt.wantSlugs[i] {
					t.Errorf("posts[%d].Slug = %v, want %v", i, slug, tt.wantSlugs[i])
				}
			}
		})
	}

	if got := mock.RequestCount(testutil.KindQuery); got != 1 {
		t.Errorf("query requests = %d, want 1 (collection cached)", got)
	}
}

func TestGetPostEndpoint(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	w, body := get(t, router, "/api/posts/second")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	post := body["post"].(map[string]any)
	if post["PageId"] != "p2" || post["Title"] != "Second" {
		t.Errorf("post = %v", post)
	}
	if prev := body["prev"].(map[string]any); prev["Slug"] != "first" {
		t.Errorf("prev = %v, want first", prev)
	}
	if next := body["next"].(map[string]any); next["Slug"] != "third" {
		t.Errorf("next = %v, want third", next)
	}

	w, _ = get(t, router, "/api/posts/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", w.Code)
	}
}

func TestPostBlocksEndpoint(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/first/blocks", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	var blocks []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &blocks); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(blocks) != 1 || blocks[0]["Id"] != "b1" || blocks[0]["Type"] != "paragraph" {
		t.Fatalf("blocks = %v", blocks)
	}
	if _, ok := blocks[0]["paragraph"]; !ok {
		t.Error("payload should be keyed by the block type")
	}
	children, _ := blocks[0]["Children"].([]any)
	if len(children) != 1 {
		t.Errorf("children = %v, want one nested block", blocks[0]["Children"])
	}

	// p2 has no block content in the mock.
	w, _ = get(t, router, "/api/posts/second/blocks")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 for a failed fetch", w.Code)
	}
}

func TestTagEndpoints(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	var tags []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &tags); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(tags) != 2 || tags[0]["Name"] != "go" || tags[1]["Name"] != "web" {
		t.Errorf("tags = %v, want go, web", tags)
	}

	_, body := get(t, router, "/api/tags/go")
	if body["pages"] != float64(1) {
		t.Errorf("pages = %v, want 1", body["pages"])
	}
	if posts, _ := body["posts"].([]any); len(posts) != 2 {
		t.Errorf("posts = %v, want 2", body["posts"])
	}
}

func TestRankedEndpoint(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ranked", nil))
	var posts []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(posts) != 2 || posts[0]["Slug"] != "second" || posts[1]["Slug"] != "third" {
		t.Errorf("ranked = %v, want second, third", posts)
	}

	w, _ = get(t, router, "/api/ranked?limit=abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDatabaseEndpoint(t *testing.T) {
	b, _ := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	w, body := get(t, router, "/api/database")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["Title"] != "Blog" || body["Description"] != "Notes on things" {
		t.Errorf("database = %v", body)
	}
	icon, _ := body["Icon"].(map[string]any)
	if icon["Type"] != "emoji" || icon["Emoji"] != "📝" {
		t.Errorf("Icon = %v", body["Icon"])
	}
	if _, ok := body["Cover"]; !ok || body["Cover"] != nil {
		t.Errorf("Cover = %v, want explicit null", body["Cover"])
	}
}

func TestUpstreamFailure(t *testing.T) {
	b, mock := newTestBlog(t)
	router := newRouter(b, zerolog.Nop())

	mock.FailNext(testutil.KindQuery, testutil.NewNotFoundFault())
	w, body := get(t, router, "/api/posts")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if body["error"] == nil {
		t.Error("expected an error message")
	}

	// The failed drain is not cached; the next request succeeds.
	w, _ = get(t, router, "/api/posts")
	if w.Code != http.StatusOK {
		t.Errorf("status after recovery = %d, want 200", w.Code)
	}
}
