package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"newsagg/internal/storage"
)

// StorageKey is the single key the clicked titles live under
const StorageKey = "clickedArticles"

// ClickHistory remembers the titles of opened articles, oldest first
type ClickHistory struct {
	store storage.Storage
	mu    sync.Mutex
}

func New(store storage.Storage) *ClickHistory {
	return &ClickHistory{store: store}
}

// Record appends title unless it is blank or already present. It reports
// whether the list changed.
func (h *ClickHistory) Record(ctx context.Context, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	titles, err := h.load(ctx)
	if err != nil {
		return false, err
	}

	for _, existing := range titles {
		if existing == title {
			return false, nil
		}
	}

	titles = append(titles, title)
	data, err := json.Marshal(titles)
	if err != nil {
		return false, fmt.Errorf("marshal click history: %w", err)
	}
	if err := h.store.Put(ctx, StorageKey, data); err != nil {
		return false, fmt.Errorf("save click history: %w", err)
	}
	return true, nil
}

// Titles returns a copy of the recorded titles
func (h *ClickHistory) Titles(ctx context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

func (h *ClickHistory) load(ctx context.Context) ([]string, error) {
	data, found, err := h.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load click history: %w", err)
	}
	if !found || len(data) == 0 {
		return []string{}, nil
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		// A damaged value starts a fresh list
		log.Printf("Click history is unreadable, starting over: %v", err)
		return []string{}, nil
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}
