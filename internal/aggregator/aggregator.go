package aggregator

import (
	"context"
	"log"
	"sync"

	"newsagg/internal/models"
)

// Aggregator turns article clicks into recommendations. Failures are logged
// and never reach the caller.
type Aggregator struct {
	recommender Recommender
	set         *Set
	wg          sync.WaitGroup
}

func New(recommender Recommender, set *Set) *Aggregator {
	if set == nil {
		set = NewSet()
	}
	return &Aggregator{recommender: recommender, set: set}
}

func (a *Aggregator) Set() *Set {
	return a.set
}

// RecordClick asks for articles related to article and merges them into
// the set. It returns the number of merged articles.
func (a *Aggregator) RecordClick(ctx context.Context, article models.Article) int {
	if !article.HasTitle() {
		log.Printf("Article title is missing, skipping recommendations for %q", article.Key())
		return 0
	}

	recommended, err := a.recommender.Recommend(ctx, article)
	if err != nil {
		log.Printf("Failed to fetch recommendations for %q: %v", article.Title, err)
		return 0
	}

	merged := a.set.Merge(recommended)
	log.Printf("Merged %d recommendations for %q (%d total)", merged, article.Title, a.set.Len())
	return merged
}

// Track runs RecordClick in the background
func (a *Aggregator) Track(ctx context.Context, article models.Article) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.RecordClick(ctx, article)
	}()
}

// Wait blocks until all tracked clicks are done
func (a *Aggregator) Wait() {
	a.wg.Wait()
}
