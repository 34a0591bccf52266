package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"newsagg/internal/config"
	"newsagg/internal/models"
)

const (
	// MaxPageSize is the free-tier ceiling of the provider
	MaxPageSize = 10

	maxErrorBody = 64 << 10
)

// Fetcher is the contract the proxy endpoints depend on
type Fetcher interface {
	Fetch(ctx context.Context, req models.PageRequest) *models.Envelope
}

// Adapter talks to the NewsData.io API and normalizes its responses
type Adapter struct {
	baseURL      string
	apiKey       string
	language     string
	defaultQuery string
	client       *http.Client
}

var _ Fetcher = (*Adapter)(nil)

// response mirrors the NewsData.io payload. Results stays raw because the
// provider sends an object instead of a list on errors.
type response struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"`
	NextPage     *string         `json:"nextPage"`
}

func New(cfg config.UpstreamConfig) *Adapter {
	return &Adapter{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		defaultQuery: cfg.DefaultQuery,
		client:       &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch issues exactly one upstream GET and returns the normalized envelope.
// Failures never escape as errors: they are reported in the envelope.
func (a *Adapter) Fetch(ctx context.Context, req models.PageRequest) *models.Envelope {
	if a.apiKey == "" {
		log.Printf("Upstream %s request rejected: API key is not configured", req.Kind)
		return failure(fmt.Errorf("%w: API key is not configured", models.ErrUpstreamUnavailable),
			"upstream API key is not configured")
	}

	endpoint, err := a.buildURL(req)
	if err != nil {
		log.Printf("Upstream %s request could not be built: %v", req.Kind, err)
		return failure(err, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failure(fmt.Errorf("%w: new request: %v", models.ErrUpstreamUnavailable, err), err.Error())
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		log.Printf("Upstream %s request failed: %v", req.Kind, redact(err.Error(), a.apiKey))
		return failure(fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err), redact(err.Error(), a.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorDetail(resp.Body)
		log.Printf("Upstream %s request returned %s: %v", req.Kind, resp.Status, detail)
		return failure(fmt.Errorf("%w: status %d", models.ErrUpstreamBadResponse, resp.StatusCode), detail)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("Upstream %s response could not be decoded: %v", req.Kind, err)
		return failure(fmt.Errorf("%w: decode: %v", models.ErrUpstreamBadResponse, err), err.Error())
	}

	if payload.Status == "error" {
		detail := decodeDetail(payload.Results)
		log.Printf("Upstream %s request reported an error: %v", req.Kind, detail)
		return failure(fmt.Errorf("%w: provider reported error", models.ErrUpstreamBadResponse), detail)
	}

	records, ok := decodeResults(payload.Results)
	if !ok {
		// An unexpected shape is served as an empty page, not a failure
		log.Printf("Upstream schema drift on %s request: results missing or not a list, serving empty page", req.Kind)
		return &models.Envelope{OK: true, Status: http.StatusOK, Items: []models.Article{}}
	}

	env := &models.Envelope{
		OK:         true,
		Status:     http.StatusOK,
		Items:      normalizeRecords(req.Kind, records),
		TotalCount: payload.TotalResults,
	}
	if payload.NextPage != nil {
		env.NextCursor = *payload.NextPage
	}
	return env
}

func (a *Adapter) buildURL(req models.PageRequest) (string, error) {
	params := url.Values{}
	params.Set("apikey", a.apiKey)
	if a.language != "" {
		params.Set("language", a.language)
	}
	params.Set("size", strconv.Itoa(ClampPageSize(req.PageSize)))

	var path string
	switch req.Kind {
	case models.Latest:
		path = "/latest"
		query := strings.TrimSpace(req.Query)
		if query == "" {
			query = a.defaultQuery
		}
		if query != "" {
			params.Set("q", query)
		}
	case models.Category:
		category := strings.ToLower(strings.TrimSpace(req.Category))
		if category == "" {
			return "", fmt.Errorf("%w: category is required", models.ErrValidation)
		}
		path = "/latest"
		params.Set("category", category)
		if country := strings.ToLower(strings.TrimSpace(req.Country)); country != "" {
			params.Set("country", country)
		}
	case models.Country:
		country := strings.ToLower(strings.TrimSpace(req.Country))
		if country == "" {
			return "", fmt.Errorf("%w: country is required", models.ErrValidation)
		}
		path = "/news"
		params.Set("country", country)
	default:
		return "", fmt.Errorf("%w: unknown endpoint kind %d", models.ErrValidation, req.Kind)
	}

	if req.Cursor != "" {
		params.Set("page", req.Cursor)
	}

	return a.baseURL + path + "?" + params.Encode(), nil
}

// ClampPageSize applies the provider ceiling; non-positive sizes use it too
func ClampPageSize(size int) int {
	if size <= 0 || size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

func failure(err error, detail interface{}) *models.Envelope {
	return &models.Envelope{
		OK:          false,
		Status:      http.StatusInternalServerError,
		ErrorDetail: detail,
		Err:         err,
	}
}

// decodeResults splits results into raw records. Only a results value that
// is not a list counts as schema drift.
func decodeResults(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}

// normalizeRecords decodes each record on its own so one malformed record
// does not cost the rest of the page
func normalizeRecords(kind models.EndpointKind, records []json.RawMessage) []models.Article {
	items := make([]models.Article, 0, len(records))
	for i, raw := range records {
		var record models.NewsDataRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			log.Printf("Upstream schema drift on %s request: skipping record %d: %v", kind, i, err)
			continue
		}
		items = append(items, record.Normalize())
	}
	return items
}

// readErrorDetail keeps the upstream error payload for diagnostics,
// decoded as JSON when possible.
func readErrorDetail(body io.Reader) interface{} {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return err.Error()
	}
	return decodeDetail(data)
}

func decodeDetail(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	var detail interface{}
	if err := json.Unmarshal(data, &detail); err == nil {
		return detail
	}
	return strings.TrimSpace(string(data))
}

func redact(message, secret string) string {
	if secret == "" {
		return message
	}
	return strings.ReplaceAll(message, secret, "***")
}
