package cli

import (
	"fmt"
	"io"

	"newsagg/internal/feed"
	"newsagg/internal/models"
)

const emptyRecommendations = "No recommendations yet. Open an article to get suggestions."

func renderArticle(w io.Writer, n int, a models.Article) {
	fmt.Fprintf(w, "%d. [%s] %s\n", n, a.DisplayPublished(), a.Title)
	fmt.Fprintf(w, "   %s | %s\n", a.DisplaySource(), a.DisplayAuthor())
	fmt.Fprintf(w, "   %s\n", a.DisplayDescription())
	fmt.Fprintf(w, "   %s\n", a.Link)
	fmt.Fprintln(w)
}

func renderFeed(w io.Writer, state feed.State, canLoadMore bool) {
	fmt.Fprintf(w, "# %s\n\n", state.Filter)

	if state.Err != "" {
		fmt.Fprintf(w, "! %s\n\n", state.Err)
	}

	if len(state.Items) == 0 {
		if state.Err == "" {
			fmt.Fprintln(w, "No articles found")
		}
		return
	}

	for i, a := range state.Items {
		renderArticle(w, i+1, a)
	}

	fmt.Fprintf(w, "Showing %d of %d articles", len(state.Items), state.TotalCount)
	if canLoadMore {
		fmt.Fprint(w, " (type 'more' for the next page)")
	}
	fmt.Fprintln(w)
}

func renderRecommendations(w io.Writer, items []models.Article, total int, hasMore bool) {
	fmt.Fprintln(w, "# Recommended for you")
	fmt.Fprintln(w)

	if len(items) == 0 {
		fmt.Fprintln(w, emptyRecommendations)
		return
	}

	for i, a := range items {
		renderArticle(w, i+1, a)
	}

	fmt.Fprintf(w, "Showing %d of %d recommendations", len(items), total)
	if hasMore {
		fmt.Fprint(w, " (type 'recs more' to see more)")
	}
	fmt.Fprintln(w)
}
