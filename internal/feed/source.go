package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsagg/internal/models"
)

// Filter selects which feed the controller shows
type Filter struct {
	Kind     models.EndpointKind
	Category string
	Country  string
	Query    string
}

func (f Filter) normalize() Filter {
	return Filter{
		Kind:     f.Kind,
		Category: strings.ToLower(strings.TrimSpace(f.Category)),
		Country:  strings.ToLower(strings.TrimSpace(f.Country)),
		Query:    strings.TrimSpace(f.Query),
	}
}

func (f Filter) String() string {
	switch f.Kind {
	case models.Category:
		if f.Country != "" {
			return fmt.Sprintf("category %s (%s)", f.Category, f.Country)
		}
		return "category " + f.Category
	case models.Country:
		return "country " + f.Country
	default:
		if f.Query != "" {
			return fmt.Sprintf("latest %q", f.Query)
		}
		return "latest"
	}
}

// Page is one fetched page. An empty Next means there is nothing after it.
type Page struct {
	Items []models.Article
	Next  string
	Total int
}

// PageSource fetches pages of a feed. The cursor is opaque to the
// controller; the empty cursor asks for the first page.
type PageSource interface {
	FetchPage(ctx context.Context, filter Filter, cursor string) (Page, error)
}

const maxErrorBody = 4 << 10

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, client *http.Client, target string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode feed: %w", err)
	}
	return nil
}

// ProxySource reads the cursor paginated proxy endpoints
type ProxySource struct {
	baseURL  string
	pageSize int
	client   *http.Client
}

func NewProxySource(baseURL string, pageSize int, timeout time.Duration) *ProxySource {
	return &ProxySource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		client:   newHTTPClient(timeout),
	}
}

func (s *ProxySource) FetchPage(ctx context.Context, filter Filter, cursor string) (Page, error) {
	var body models.FeedResponse
	if err := getJSON(ctx, s.client, s.pageURL(filter, cursor), &body); err != nil {
		return Page{}, err
	}
	if !body.Success {
		return Page{}, fmt.Errorf("proxy reported failure: %s", body.Message)
	}

	page := Page{Items: body.Data, Total: body.TotalResults}
	if body.NextPage != nil {
		page.Next = *body.NextPage
	}
	return page, nil
}

func (s *ProxySource) pageURL(filter Filter, cursor string) string {
	params := url.Values{}
	if s.pageSize > 0 {
		params.Set("size", strconv.Itoa(s.pageSize))
	}
	if cursor != "" {
		params.Set("page", cursor)
	}

	var path string
	switch filter.Kind {
	case models.Category:
		path = "/category/" + url.PathEscape(filter.Category)
		if filter.Country != "" {
			params.Set("country", filter.Country)
		}
	case models.Country:
		path = "/country/" + url.PathEscape(filter.Country)
	default:
		path = "/all-news"
		if filter.Query != "" {
			params.Set("q", filter.Query)
		}
	}

	return s.baseURL + path + "?" + params.Encode()
}

// OffsetSource reads a NewsAPI shaped backend with numbered pages. Its
// cursor is the decimal number of the next page.
type OffsetSource struct {
	baseURL  string
	pageSize int
	client   *http.Client
}

type offsetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Articles     []newsAPIArticle `json:"articles"`
		TotalResults int              `json:"totalResults"`
	} `json:"data"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Author      string `json:"author"`
	Source      struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
}

func (a newsAPIArticle) normalize() models.Article {
	article := models.Article{
		Title:       strings.TrimSpace(a.Title),
		Description: models.PlainText(a.Description),
		Link:        strings.TrimSpace(a.URL),
		ImageURL:    strings.TrimSpace(a.URLToImage),
		PublishedAt: models.ParsePubDate(a.PublishedAt),
		SourceID:    a.Source.ID,
		SourceName:  a.Source.Name,
	}
	if author := strings.TrimSpace(a.Author); author != "" {
		article.Creators = models.Creators{author}
	}
	return article
}

func NewOffsetSource(baseURL string, pageSize int, timeout time.Duration) *OffsetSource {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &OffsetSource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		client:   newHTTPClient(timeout),
	}
}

func (s *OffsetSource) FetchPage(ctx context.Context, filter Filter, cursor string) (Page, error) {
	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return Page{}, fmt.Errorf("invalid page cursor %q", cursor)
		}
		page = n
	}

	var body offsetResponse
	if err := getJSON(ctx, s.client, s.pageURL(filter, page), &body); err != nil {
		return Page{}, err
	}
	if !body.Success {
		return Page{}, fmt.Errorf("backend reported failure: %s", body.Message)
	}

	items := make([]models.Article, 0, len(body.Data.Articles))
	for _, a := range body.Data.Articles {
		items = append(items, a.normalize())
	}

	result := Page{Items: items, Total: body.Data.TotalResults}
	// An empty page ends the feed even if the total promises more
	if len(items) > 0 && page*s.pageSize < body.Data.TotalResults {
		result.Next = strconv.Itoa(page + 1)
	}
	return result, nil
}

func (s *OffsetSource) pageURL(filter Filter, page int) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(s.pageSize))

	path := "/all-news"
	switch filter.Kind {
	case models.Category:
		path = "/top-headlines"
		params.Set("language", "en")
		params.Set("category", filter.Category)
	case models.Country:
		path = "/top-headlines"
		params.Set("country", filter.Country)
	default:
		if filter.Query != "" {
			params.Set("q", filter.Query)
		}
	}

	return s.baseURL + path + "?" + params.Encode()
}
