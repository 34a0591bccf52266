package paginator

import (
	"sync"

	"newsagg/internal/models"
)

const (
	DefaultInitial = 9
	DefaultStep    = 12
)

// Source is the live sequence a window is laid over
type Source interface {
	Items() []models.Article
}

// Window shows the first n articles of a growing source and widens by a
// fixed step on request. Growth of the source never resets it.
type Window struct {
	source Source
	step   int

	mu    sync.Mutex
	limit int
}

func NewWindow(source Source, initial, step int) *Window {
	if initial <= 0 {
		initial = DefaultInitial
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Window{source: source, step: step, limit: initial}
}

// Visible returns the articles inside the window
func (w *Window) Visible() []models.Article {
	items := w.source.Items()

	w.mu.Lock()
	limit := w.limit
	w.mu.Unlock()

	if limit > len(items) {
		limit = len(items)
	}
	return items[:limit]
}

// ShowMore widens the window when there is something beyond it and
// reports whether it did
func (w *Window) ShowMore() bool {
	total := len(w.source.Items())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.limit >= total {
		return false
	}
	w.limit += w.step
	return true
}

func (w *Window) HasMore() bool {
	total := len(w.source.Items())

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.limit < total
}

// Empty reports whether the source has nothing to show
func (w *Window) Empty() bool {
	return len(w.source.Items()) == 0
}

func (w *Window) Limit() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.limit
}
