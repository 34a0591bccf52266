package cli

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"newsagg/internal/aggregator"
	"newsagg/internal/feed"
	"newsagg/internal/history"
	"newsagg/internal/models"
	"newsagg/internal/paginator"
	"newsagg/internal/storage"
)

// stubSource returns two pages for every filter
type stubSource struct {
	mu      sync.Mutex
	filters []feed.Filter
	fail    bool
}

func (s *stubSource) FetchPage(ctx context.Context, filter feed.Filter, cursor string) (feed.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)

	if s.fail {
		return feed.Page{}, errors.New("backend down")
	}
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if cursor == "" {
		return feed.Page{
			Items: []models.Article{
				{Title: "First story", Link: "https://news/1", PublishedAt: published, SourceName: "Wire"},
				{Title: "", Link: "https://news/untitled", PublishedAt: published.Add(-time.Hour)},
			},
			Next:  "next",
			Total: 3,
		}, nil
	}
	return feed.Page{Items: []models.Article{{Title: "Third story", Link: "https://news/3"}}, Total: 3}, nil
}

type stubRecommender struct {
	mu    sync.Mutex
	calls []string
}

func (r *stubRecommender) Recommend(ctx context.Context, article models.Article) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, article.Title)
	return []models.Article{
		{Title: "Related A", Link: "https://rec/a"},
		{Title: "Related B", Link: "https://rec/b"},
	}, nil
}

type fixture struct {
	handler     *Handler
	out         *bytes.Buffer
	source      *stubSource
	recommender *stubRecommender
	agg         *aggregator.Aggregator
	clicks      *history.ClickHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.NewSQLiteStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	source := &stubSource{}
	recommender := &stubRecommender{}
	set := aggregator.NewSet()
	agg := aggregator.New(recommender, set)
	clicks := history.New(store)
	out := &bytes.Buffer{}

	handler := NewHandler(
		feed.NewController(source, feed.Filter{Kind: models.Latest}),
		agg,
		paginator.NewWindow(set, 1, 1),
		clicks,
		out,
	)
	return &fixture{handler: handler, out: out, source: source, recommender: recommender, agg: agg, clicks: clicks}
}

func (f *fixture) exec(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	if _, err := f.handler.Execute(context.Background(), line); err != nil {
		t.Fatalf("%q failed: %v", line, err)
	}
	return f.out.String()
}

func TestHandler_RunBrowsesFeed(t *testing.T) {
	f := newFixture(t)

	in := strings.NewReader("more\nquit\n")
	if err := f.handler.Run(context.Background(), in); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := f.out.String()
	for _, want := range []string{"# latest", "1. [", "First story", "Wire", "type 'more'", "Third story", "Showing 3 of 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, output)
		}
	}
}

func TestHandler_FilterCommands(t *testing.T) {
	f := newFixture(t)

	f.exec(t, "category Technology us")
	f.exec(t, "country IN")
	f.exec(t, "search climate change")

	if len(f.source.filters) != 3 {
		t.Fatalf("Expected 3 fetches, got %d", len(f.source.filters))
	}
	if got := f.source.filters[0]; got.Kind != models.Category || got.Category != "technology" || got.Country != "us" {
		t.Errorf("Unexpected category filter %+v", got)
	}
	if got := f.source.filters[1]; got.Kind != models.Country || got.Country != "in" {
		t.Errorf("Unexpected country filter %+v", got)
	}
	if got := f.source.filters[2]; got.Kind != models.Latest || got.Query != "climate change" {
		t.Errorf("Unexpected search filter %+v", got)
	}
}

func TestHandler_InvalidCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, line := range []string{"country india", "category", "category sports usa", "open", "open 7", "bogus"} {
		if _, err := f.handler.Execute(ctx, line); err == nil {
			t.Errorf("Expected %q to fail", line)
		}
	}

	if quit, err := f.handler.Execute(ctx, "   "); quit || err != nil {
		t.Error("Expected blank line to be ignored")
	}
	if quit, _ := f.handler.Execute(ctx, "quit"); !quit {
		t.Error("Expected quit to end the session")
	}
}

func TestHandler_OpenRecordsClickAndRecommends(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "all")

	output := f.exec(t, "open 1")
	if !strings.Contains(output, "https://news/1") {
		t.Errorf("Expected article link, got %q", output)
	}
	f.agg.Wait()

	titles, _ := f.clicks.Titles(context.Background())
	if len(titles) != 1 || titles[0] != "First story" {
		t.Errorf("Expected click history [First story], got %v", titles)
	}
	if f.agg.Set().Len() != 2 {
		t.Errorf("Expected 2 recommendations, got %d", f.agg.Set().Len())
	}

	output = f.exec(t, "recs")
	if !strings.Contains(output, "Related A") || strings.Contains(output, "Related B") {
		t.Errorf("Expected a window of one recommendation, got:\n%s", output)
	}
	if !strings.Contains(output, "recs more") {
		t.Errorf("Expected a show more hint, got:\n%s", output)
	}

	output = f.exec(t, "recs more")
	if !strings.Contains(output, "Related B") {
		t.Errorf("Expected second recommendation after show more, got:\n%s", output)
	}
}

func TestHandler_OpenUntitledSkipsRecommendation(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "all")

	f.exec(t, "open 2")
	f.agg.Wait()

	if len(f.recommender.calls) != 0 {
		t.Errorf("Expected no recommendation request, got %v", f.recommender.calls)
	}

	output := f.exec(t, "recs")
	if !strings.Contains(output, emptyRecommendations) {
		t.Errorf("Expected empty state, got:\n%s", output)
	}

	output = f.exec(t, "history")
	if !strings.Contains(output, "No articles opened yet") {
		t.Errorf("Expected empty history, got:\n%s", output)
	}
}

func TestHandler_FetchErrorBanner(t *testing.T) {
	f := newFixture(t)
	f.source.fail = true

	output := f.exec(t, "category sports")
	if !strings.Contains(output, feed.FetchErrorMessage) {
		t.Errorf("Expected error banner, got:\n%s", output)
	}

	f.source.fail = false
	output = f.exec(t, "retry")
	if strings.Contains(output, feed.FetchErrorMessage) || !strings.Contains(output, "First story") {
		t.Errorf("Expected recovered feed, got:\n%s", output)
	}
}

func TestHandler_FetchFailuresAreLogged(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	f := newFixture(t)
	f.source.fail = true

	output := f.exec(t, "country in")
	if !strings.Contains(output, feed.FetchErrorMessage) {
		t.Errorf("Expected error banner, got:\n%s", output)
	}
	f.exec(t, "retry")

	for _, want := range []string{"Feed filter failed: backend down", "Feed retry failed: backend down"} {
		if !strings.Contains(logged.String(), want) {
			t.Errorf("Expected %q logged, got:\n%s", want, logged.String())
		}
	}

	// An exhausted retry is not a failure
	f.source.fail = false
	f.exec(t, "all")
	f.exec(t, "more")
	logged.Reset()
	f.exec(t, "retry")
	if strings.Contains(logged.String(), "Feed retry failed") {
		t.Errorf("Expected no failure logged, got:\n%s", logged.String())
	}
}

func TestHandler_MoreWhenExhausted(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "all")
	f.exec(t, "more")

	output := f.exec(t, "more")
	if !strings.Contains(output, "No more articles") {
		t.Errorf("Expected exhausted message, got:\n%s", output)
	}
}

func TestHandler_Help(t *testing.T) {
	f := newFixture(t)
	output := f.exec(t, "help")
	if !strings.Contains(output, "recs more") || !strings.Contains(output, "category <name> [country]") {
		t.Errorf("Unexpected help text:\n%s", output)
	}
}
