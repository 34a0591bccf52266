package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsagg/internal/models"

	"github.com/google/uuid"
)

// Recommender returns articles related to a clicked article
type Recommender interface {
	Recommend(ctx context.Context, article models.Article) ([]models.Article, error)
}

type recommendRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ClickedURLs []string `json:"clicked_urls"`
}

type recommendResponse struct {
	Articles []models.NewsDataRecord `json:"articles"`
}

// Client talks to the external recommendation service
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Recommend(ctx context.Context, article models.Article) ([]models.Article, error) {
	payload := recommendRequest{
		Title:       strings.TrimSpace(article.Title),
		Description: article.Description,
		ClickedURLs: []string{},
	}
	if link := article.Key(); link != "" {
		payload.ClickedURLs = append(payload.ClickedURLs, link)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", models.ErrRecommendationService, requestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: request %s: status %d: %s", models.ErrRecommendationService, requestID, resp.StatusCode, serviceError(resp.Body))
	}

	var decoded recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: request %s: failed to decode response: %v", models.ErrRecommendationService, requestID, err)
	}
	return models.NormalizeRecords(decoded.Articles), nil
}

// serviceError extracts the "error" field of a failure body, falling back
// to the raw text
func serviceError(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
