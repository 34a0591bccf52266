package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// PlaceholderImage is shown for articles without an image
	PlaceholderImage = "https://placehold.co/600x400?text=News"

	unknown            = "Unknown"
	descriptionLimit   = 200
	noDescription      = "No description available."
	missingPublishDate = "N/A"
)

// Article is a single normalized news article. The link doubles as the
// identity key used for deduplication.
type Article struct {
	ArticleID   string    `json:"article_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	ImageURL    string    `json:"image_url"`
	PublishedAt time.Time `json:"published_at"`
	SourceID    string    `json:"source_id,omitempty"`
	SourceName  string    `json:"source_name,omitempty"`
	Creators    Creators  `json:"creator,omitempty"`
	Categories  []string  `json:"category,omitempty"`
	Countries   []string  `json:"country,omitempty"`
	Language    string    `json:"language,omitempty"`
}

// Key returns the identity key of the article
func (a Article) Key() string {
	return strings.TrimSpace(a.Link)
}

// HasTitle reports whether the article can trigger recommendations
func (a Article) HasTitle() bool {
	return strings.TrimSpace(a.Title) != ""
}

func (a Article) DisplaySource() string {
	if a.SourceName != "" {
		return a.SourceName
	}
	if a.SourceID != "" {
		return a.SourceID
	}
	return unknown
}

func (a Article) DisplayAuthor() string {
	if joined := a.Creators.String(); joined != "" {
		return joined
	}
	return unknown
}

// DisplayDescription returns the description cut to the card limit
func (a Article) DisplayDescription() string {
	if a.Description == "" {
		return noDescription
	}
	if utf8.RuneCountInString(a.Description) <= descriptionLimit {
		return a.Description
	}
	return string([]rune(a.Description)[:descriptionLimit])
}

func (a Article) DisplayImage() string {
	if a.ImageURL == "" {
		return PlaceholderImage
	}
	return a.ImageURL
}

func (a Article) DisplayPublished() string {
	if a.PublishedAt.IsZero() {
		return missingPublishDate
	}
	return a.PublishedAt.Format(time.RFC1123)
}

// Creators holds article authors. Upstream sends either a single string or
// a list of strings, so both are accepted.
type Creators []string

func (c *Creators) UnmarshalJSON(data []byte) error {
	*c = decodeStrings(data)
	return nil
}

// String joins the creators for display
func (c Creators) String() string {
	return strings.Join(c, ", ")
}

// StringList is a list field that upstream sometimes sends as a single
// string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = decodeStrings(data)
	return nil
}

// Text is a string field that upstream sometimes sends as a number
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}

	*t = ""
	return nil
}

// decodeStrings accepts a list of strings or a single string. Anything
// else (numbers, objects) is treated as missing.
func decodeStrings(data []byte) []string {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return compact(list)
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		return compact([]string{single})
	}
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EndpointKind selects the upstream resource
type EndpointKind int

const (
	Latest EndpointKind = iota
	Category
	Country
)

func (k EndpointKind) String() string {
	switch k {
	case Latest:
		return "latest"
	case Category:
		return "category"
	case Country:
		return "country"
	default:
		return "unknown"
	}
}

// PageRequest describes one upstream page fetch
type PageRequest struct {
	Kind     EndpointKind
	Category string
	Country  string
	Query    string
	PageSize int
	Cursor   string
}

// Envelope is the normalized adapter result
type Envelope struct {
	OK          bool
	Status      int
	Items       []Article
	NextCursor  string
	TotalCount  int
	ErrorDetail interface{}
	Err         error
}

// FeedResponse is the JSON body returned by the proxy endpoints on success.
// A nil NextPage means upstream has no further pages.
type FeedResponse struct {
	Success      bool        `json:"success"`
	Status       int         `json:"status"`
	Message      string      `json:"message"`
	Data         []Article   `json:"data"`
	NextPage     *string     `json:"nextPage"`
	TotalResults int         `json:"totalResults"`
	Error        interface{} `json:"error,omitempty"`
}
