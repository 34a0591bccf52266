package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"newsagg/internal/api"
	"newsagg/internal/config"
	"newsagg/internal/models"
	"newsagg/internal/upstream"

	"github.com/gin-gonic/gin"
)

// newProxy runs the real proxy in front of a stub upstream
func newProxy(t *testing.T, upstreamHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstreamServer := httptest.NewServer(upstreamHandler)
	t.Cleanup(upstreamServer.Close)

	cfg := config.Default()
	cfg.EnableSwagger = false
	cfg.Security.EnableRateLimit = false
	cfg.Upstream.BaseURL = upstreamServer.URL
	cfg.Upstream.APIKey = "test-key"

	server := api.NewServer(upstream.New(cfg.Upstream), cfg, nil)
	proxy := httptest.NewServer(server.Handler())
	t.Cleanup(proxy.Close)
	return proxy
}

func TestProxySource_CategoryThroughProxy(t *testing.T) {
	var seen url.Values
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		w.Write([]byte(`{"status":"success","totalResults":3,"results":[
			{"title":"One","link":"u1","pubDate":"2024-03-01 10:00:00"},
			{"title":"Two","link":"u2","pubDate":"2024-03-02 10:00:00"},
			{"title":"Three","link":"u3","pubDate":"2024-03-03 10:00:00"}
		],"nextPage":"tok1"}`))
	})

	source := NewProxySource(proxy.URL, 3, time.Second)
	c := NewController(source, Filter{Kind: models.Category, Category: "technology"})

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	state := c.State()
	if len(state.Items) != 3 || state.Cursor != "tok1" || !c.CanLoadMore() {
		t.Errorf("Expected 3 items with cursor tok1, got %+v", state)
	}
	if state.Items[0].Link != "u3" {
		t.Errorf("Expected newest article first, got %s", state.Items[0].Link)
	}
	if seen.Get("category") != "technology" || seen.Get("size") != "3" {
		t.Errorf("Unexpected upstream query %v", seen)
	}
}

func TestProxySource_UpstreamUnavailable(t *testing.T) {
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	source := NewProxySource(proxy.URL, 9, time.Second)
	c := NewController(source, Filter{Kind: models.Latest})

	if err := c.Mount(context.Background()); err == nil {
		t.Fatal("Expected mount to fail")
	}

	state := c.State()
	if state.Phase != Error || state.Err != FetchErrorMessage || len(state.Items) != 0 {
		t.Errorf("Expected error banner with no items, got %+v", state)
	}
}

func TestProxySource_PassesCursorAndFilter(t *testing.T) {
	var got *http.Request
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"success":true,"status":200,"data":[],"nextPage":null,"totalResults":0}`))
	}))
	defer backend.Close()

	source := NewProxySource(backend.URL+"/", 9, time.Second)

	tests := []struct {
		filter Filter
		cursor string
		path   string
		query  map[string]string
	}{
		{Filter{Kind: models.Latest, Query: "climate"}, "", "/all-news", map[string]string{"q": "climate", "size": "9"}},
		{Filter{Kind: models.Category, Category: "sports", Country: "in"}, "abc", "/category/sports", map[string]string{"country": "in", "page": "abc"}},
		{Filter{Kind: models.Country, Country: "us"}, "", "/country/us", map[string]string{"size": "9"}},
	}

	for _, tt := range tests {
		page, err := source.FetchPage(context.Background(), tt.filter, tt.cursor)
		if err != nil {
			t.Fatalf("%s: FetchPage failed: %v", tt.filter, err)
		}
		if page.Next != "" {
			t.Errorf("%s: unexpected page %+v", tt.filter, page)
		}
		if got.URL.Path != tt.path {
			t.Errorf("%s: expected path %s, got %s", tt.filter, tt.path, got.URL.Path)
		}
		for key, want := range tt.query {
			if got.URL.Query().Get(key) != want {
				t.Errorf("%s: expected %s=%s, got %q", tt.filter, key, want, got.URL.Query().Get(key))
			}
		}
		if tt.cursor == "" && got.URL.Query().Has("page") {
			t.Errorf("%s: expected no page parameter on first page", tt.filter)
		}
	}
}

func TestProxySource_FailureBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"status":500,"message":"Failed to fetch data from the API"}`))
	}))
	defer backend.Close()

	_, err := NewProxySource(backend.URL, 9, time.Second).FetchPage(context.Background(), Filter{}, "")
	if err == nil {
		t.Error("Expected an error for success=false")
	}
}

func TestOffsetSource_Pages(t *testing.T) {
	var requests []url.Values
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query())
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"success":true,"data":{"totalResults":3,"articles":[
				{"title":"A","url":"a","publishedAt":"2024-01-01T10:00:00Z","author":"Ann","source":{"name":"Wire"}},
				{"title":"B","url":"b","publishedAt":"2024-01-02T10:00:00Z","source":{"name":"Wire"}}
			]}}`))
		default:
			w.Write([]byte(`{"success":true,"data":{"totalResults":3,"articles":[
				{"title":"C","url":"c","publishedAt":"2024-01-03T10:00:00Z","source":{"name":"Wire"}}
			]}}`))
		}
	}))
	defer backend.Close()

	source := NewOffsetSource(backend.URL, 2, time.Second)
	c := NewController(source, Filter{Kind: models.Latest})

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if state := c.State(); state.Cursor != "2" || len(state.Items) != 2 {
		t.Fatalf("Expected cursor 2 after first page, got %+v", state)
	}

	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}

	state := c.State()
	if state.Cursor != "" || len(state.Items) != 3 || c.CanLoadMore() {
		t.Errorf("Expected exhausted feed with 3 items, got %+v", state)
	}
	if state.Items[0].Link != "c" {
		t.Errorf("Expected newest first, got %s", state.Items[0].Link)
	}

	var ann models.Article
	for _, a := range state.Items {
		if a.Link == "a" {
			ann = a
		}
	}
	if ann.DisplayAuthor() != "Ann" || ann.DisplaySource() != "Wire" {
		t.Errorf("Unexpected normalized article %+v", ann)
	}

	if len(requests) != 2 || requests[1].Get("page") != "2" || requests[1].Get("pageSize") != "2" {
		t.Errorf("Unexpected backend requests %v", requests)
	}
}

func TestOffsetSource_CategoryURL(t *testing.T) {
	source := NewOffsetSource("http://backend/", 6, 0)
	got := source.pageURL(Filter{Kind: models.Category, Category: "health"}, 3)

	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("Invalid URL %q: %v", got, err)
	}
	q := parsed.Query()
	if parsed.Path != "/top-headlines" || q.Get("category") != "health" || q.Get("page") != "3" || q.Get("pageSize") != "6" {
		t.Errorf("Unexpected URL %s", got)
	}
}

func TestOffsetSource_InvalidCursor(t *testing.T) {
	source := NewOffsetSource("http://127.0.0.1:0", 6, time.Second)
	if _, err := source.FetchPage(context.Background(), Filter{}, "tok1"); err == nil {
		t.Error("Expected an error for a non numeric cursor")
	}
}
