package aggregator

import (
	"sync"

	"newsagg/internal/models"
)

// Set holds the aggregated recommendations keyed by article link. The most
// recently merged articles come first.
type Set struct {
	mu          sync.RWMutex
	order       []string
	byKey       map[string]models.Article
	subscribers []chan struct{}
}

func NewSet() *Set {
	return &Set{byKey: make(map[string]models.Article)}
}

// Merge puts batch in front of the current contents. On a key collision the
// batch value wins and moves to the batch position. Articles without a link
// are dropped. It returns how many articles the batch contributed.
func (s *Set) Merge(batch []models.Article) int {
	incoming := make([]string, 0, len(batch))
	values := make(map[string]models.Article, len(batch))
	for _, a := range batch {
		key := a.Key()
		if key == "" {
			continue
		}
		if _, dup := values[key]; !dup {
			incoming = append(incoming, key)
		}
		values[key] = a
	}
	if len(incoming) == 0 {
		return 0
	}

	s.mu.Lock()
	order := make([]string, 0, len(incoming)+len(s.order))
	order = append(order, incoming...)
	for _, key := range s.order {
		if _, replaced := values[key]; !replaced {
			order = append(order, key)
		}
	}
	for key, a := range values {
		s.byKey[key] = a
	}
	s.order = order
	subscribers := append([]chan struct{}(nil), s.subscribers...)
	s.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return len(incoming)
}

// Items returns the articles in display order
func (s *Set) Items() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Article, 0, len(s.order))
	for _, key := range s.order {
		items = append(items, s.byKey[key])
	}
	return items
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Set) Get(link string) (models.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byKey[link]
	return a, ok
}

// Subscribe returns a channel that receives a signal after merges. Signals
// coalesce while the reader is busy.
func (s *Set) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}
