package models

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var pubDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// NewsDataRecord is one article as sent by the NewsData.io API and by the
// recommendation service, which relays NewsData records.
type NewsDataRecord struct {
	ArticleID   Text       `json:"article_id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	PubDate     string     `json:"pubDate"`
	SourceID    Text       `json:"source_id"`
	SourceName  string     `json:"source_name"`
	Creator     Creators   `json:"creator"`
	Category    StringList `json:"category"`
	Country     StringList `json:"country"`
	Language    string     `json:"language"`
}

// Normalize converts the upstream record into an Article
func (r NewsDataRecord) Normalize() Article {
	return Article{
		ArticleID:   string(r.ArticleID),
		Title:       strings.TrimSpace(r.Title),
		Description: PlainText(r.Description),
		Link:        strings.TrimSpace(r.Link),
		ImageURL:    strings.TrimSpace(r.ImageURL),
		PublishedAt: ParsePubDate(r.PubDate),
		SourceID:    string(r.SourceID),
		SourceName:  strings.TrimSpace(r.SourceName),
		Creators:    r.Creator,
		Categories:  []string(r.Category),
		Countries:   []string(r.Country),
		Language:    r.Language,
	}
}

// NormalizeRecords converts a batch of upstream records
func NormalizeRecords(records []NewsDataRecord) []Article {
	articles := make([]Article, 0, len(records))
	for _, r := range records {
		articles = append(articles, r.Normalize())
	}
	return articles
}

// ParsePubDate parses the upstream publish date. NewsData sends UTC
// timestamps without a zone; unparseable values yield the zero time.
func ParsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// PlainText strips markup from a description, collapsing whitespace
func PlainText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || !strings.ContainsAny(value, "<&") {
		return value
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return value
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
