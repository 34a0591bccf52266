package feed

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"newsagg/internal/models"
)

// FetchErrorMessage is what a feed view shows after a failed fetch
const FetchErrorMessage = "Failed to fetch news. Please try again later."

var (
	// ErrSuperseded is returned for a fetch whose result was discarded
	// because the filter changed while it was in flight
	ErrSuperseded = errors.New("feed: fetch superseded by a newer filter")
	// ErrNothingToLoad is returned by LoadMore when the feed is exhausted
	// or another fetch is running
	ErrNothingToLoad = errors.New("feed: nothing more to load")
)

type Phase int

const (
	Idle Phase = iota
	LoadingInitial
	Loaded
	LoadingMore
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case LoadingInitial:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadingMore:
		return "loading-more"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of a feed view. An empty Cursor means the feed is
// exhausted or has not been fetched yet.
type State struct {
	Items      []models.Article
	Cursor     string
	TotalCount int
	Phase      Phase
	Err        string
	Filter     Filter
}

// Controller drives the incremental loading of one feed view. Its methods
// are safe for concurrent use and block until their fetch completes.
type Controller struct {
	source PageSource

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
}

func NewController(source PageSource, filter Filter) *Controller {
	return &Controller{
		source: source,
		state: State{
			Items:  []models.Article{},
			Phase:  Idle,
			Filter: filter.normalize(),
		},
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.state
	snapshot.Items = append([]models.Article(nil), c.state.Items...)
	if snapshot.Items == nil {
		snapshot.Items = []models.Article{}
	}
	return snapshot
}

// CanLoadMore reports whether a next page exists and nothing is in flight
func (c *Controller) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canLoadMore()
}

func (c *Controller) canLoadMore() bool {
	return c.state.Cursor != "" && c.state.Phase == Loaded
}

// Mount loads the first page of the current filter
func (c *Controller) Mount(ctx context.Context) error {
	return c.loadInitial(ctx, nil)
}

// SetFilter clears the feed and loads the first page of filter. Any fetch
// still running for the previous filter is canceled and its result dropped.
func (c *Controller) SetFilter(ctx context.Context, filter Filter) error {
	normalized := filter.normalize()
	return c.loadInitial(ctx, &normalized)
}

// Retry repeats the failed step: the first page when nothing is loaded,
// the next page otherwise
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	empty := len(c.state.Items) == 0
	c.mu.Unlock()

	if empty {
		return c.loadInitial(ctx, nil)
	}
	return c.LoadMore(ctx)
}

// LoadMore appends the page after the current cursor
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.canLoadMore() {
		c.mu.Unlock()
		return ErrNothingToLoad
	}

	gen := c.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state.Phase = LoadingMore
	filter := c.state.Filter
	cursor := c.state.Cursor
	c.mu.Unlock()

	page, err := c.source.FetchPage(fetchCtx, filter, cursor)
	return c.apply(gen, cancel, filter, page, err, true)
}

func (c *Controller) loadInitial(ctx context.Context, filter *Filter) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if filter != nil {
		c.state.Filter = *filter
	}
	c.state.Items = []models.Article{}
	c.state.Cursor = ""
	c.state.TotalCount = 0
	c.state.Err = ""
	c.state.Phase = LoadingInitial
	current := c.state.Filter
	c.mu.Unlock()

	page, err := c.source.FetchPage(fetchCtx, current, "")
	return c.apply(gen, cancel, current, page, err, false)
}

func (c *Controller) apply(gen uint64, cancel context.CancelFunc, filter Filter, page Page, err error, appendPage bool) error {
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		log.Printf("Discarding stale %s page", filter)
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		log.Printf("Failed to fetch %s: %v", filter, err)
		c.state.Err = FetchErrorMessage
		if len(c.state.Items) > 0 {
			c.state.Phase = Loaded
		} else {
			c.state.Phase = Error
		}
		return err
	}

	var items []models.Article
	if appendPage {
		items = make([]models.Article, 0, len(c.state.Items)+len(page.Items))
		items = append(items, c.state.Items...)
	}
	items = append(items, page.Items...)
	if items == nil {
		items = []models.Article{}
	}
	SortByPublished(items)

	c.state.Items = items
	c.state.Cursor = page.Next
	c.state.TotalCount = page.Total
	c.state.Err = ""
	c.state.Phase = Loaded
	return nil
}

// SortByPublished orders articles newest first. Undated articles go last
// and equal dates keep their arrival order.
func SortByPublished(items []models.Article) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}
