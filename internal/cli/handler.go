package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"newsagg/internal/aggregator"
	"newsagg/internal/feed"
	"newsagg/internal/history"
	"newsagg/internal/models"
	"newsagg/internal/paginator"
)

type view int

const (
	feedView view = iota
	recommendationsView
)

type Handler struct {
	feed       *feed.Controller
	aggregator *aggregator.Aggregator
	window     *paginator.Window
	history    *history.ClickHistory
	out        io.Writer
	active     view
}

func NewHandler(
	controller *feed.Controller,
	agg *aggregator.Aggregator,
	window *paginator.Window,
	clicks *history.ClickHistory,
	out io.Writer,
) *Handler {
	return &Handler{
		feed:       controller,
		aggregator: agg,
		window:     window,
		history:    clicks,
		out:        out,
	}
}

// Run loads the initial feed and serves commands from in until quit, EOF
// or ctx is done
func (h *Handler) Run(ctx context.Context, in io.Reader) error {
	h.mount(ctx)

	scanner := bufio.NewScanner(in)
	fmt.Fprint(h.out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		quit, err := h.Execute(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(h.out, "Error: %v\n", err)
		}
		if quit {
			break
		}
		fmt.Fprint(h.out, "> ")
	}

	h.aggregator.Wait()
	return scanner.Err()
}

// Execute runs a single command line and reports whether the client
// should exit
func (h *Handler) Execute(ctx context.Context, line string) (bool, error) {
	cmd, ok := parseCommand(line)
	if !ok {
		return false, nil
	}

	switch cmd.name {
	case "quit", "exit":
		return true, nil
	case "help":
		h.ShowHelp()
	case "all", "search", "category", "country":
		filter, err := parseFilter(cmd)
		if err != nil {
			return false, err
		}
		h.active = feedView
		h.reportFetch("filter", h.feed.SetFilter(ctx, filter))
		h.showFeed()
	case "feed":
		h.active = feedView
		h.showFeed()
	case "more":
		h.active = feedView
		if err := h.feed.LoadMore(ctx); errors.Is(err, feed.ErrNothingToLoad) {
			fmt.Fprintln(h.out, "No more articles")
			return false, nil
		}
		h.showFeed()
	case "retry":
		h.active = feedView
		h.reportFetch("retry", h.feed.Retry(ctx))
		h.showFeed()
	case "open":
		return false, h.open(ctx, cmd.args)
	case "recs":
		h.active = recommendationsView
		if len(cmd.args) == 1 && cmd.args[0] == "more" {
			if !h.window.ShowMore() {
				fmt.Fprintln(h.out, "No more recommendations")
				return false, nil
			}
		}
		h.showRecommendations()
	case "history":
		return false, h.showHistory(ctx)
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", cmd.name)
	}
	return false, nil
}

// reportFetch logs a failed feed fetch. The feed view carries the banner;
// superseded and exhausted fetches are expected.
func (h *Handler) reportFetch(action string, err error) {
	if err == nil || errors.Is(err, feed.ErrSuperseded) || errors.Is(err, feed.ErrNothingToLoad) {
		return
	}
	log.Printf("Feed %s failed: %v", action, err)
}

func (h *Handler) mount(ctx context.Context) {
	h.reportFetch("mount", h.feed.Mount(ctx))
	h.showFeed()
}

// open prints the chosen article, stores its title and asks for related
// articles in the background
func (h *Handler) open(ctx context.Context, args []string) error {
	var items []models.Article
	if h.active == recommendationsView {
		items = h.window.Visible()
	} else {
		items = h.feed.State().Items
	}

	idx, err := parseIndex(args, len(items))
	if err != nil {
		return err
	}
	article := items[idx]

	fmt.Fprintf(h.out, "Opening %s\n", article.Link)

	if _, err := h.history.Record(ctx, article.Title); err != nil {
		log.Printf("Failed to record click on %q: %v", article.Title, err)
	}
	h.aggregator.Track(ctx, article)
	return nil
}

func (h *Handler) showFeed() {
	renderFeed(h.out, h.feed.State(), h.feed.CanLoadMore())
}

func (h *Handler) showRecommendations() {
	renderRecommendations(h.out, h.window.Visible(), h.aggregator.Set().Len(), h.window.HasMore())
}

func (h *Handler) showHistory(ctx context.Context) error {
	titles, err := h.history.Titles(ctx)
	if err != nil {
		return fmt.Errorf("failed to read click history: %w", err)
	}

	if len(titles) == 0 {
		fmt.Fprintln(h.out, "No articles opened yet")
		return nil
	}

	fmt.Fprintln(h.out, "# Opened articles")
	for i, title := range titles {
		fmt.Fprintf(h.out, "%d. %s\n", i+1, title)
	}
	return nil
}

func (h *Handler) ShowHelp() {
	help := `
Commands:
  all                       latest news
  search <terms>            latest news matching terms
  category <name> [country] news of a category, optionally for one country
  country <code>            news of a country (two-letter code)
  feed                      show the current feed again
  more                      load the next page of the current feed
  retry                     repeat the last failed fetch
  open <number>             open an article of the current list
  recs                      show recommendations
  recs more                 show more recommendations
  history                   list opened articles
  quit                      exit
`
	fmt.Fprint(h.out, strings.TrimLeft(help, "\n"))
}
