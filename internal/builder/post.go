package builder

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexanderRichey/newsrss/internal/frontmatter"
)

// Post is one feed item. Every field is resolved before rendering.
type Post struct {
	Title        string
	Author       string
	Date         time.Time
	Link         string
	GUID         string
	CommentsLink string
	CommentCount int
	HTML         string
}

var requiredFields = []string{"title", "date"}

// dateLayouts are tried in order. Layouts without a zone parse as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

func checkRequired(file string, data frontmatter.Metadata) error {
	for _, key := range requiredFields {
		if !data.Present(key) {
			return &ValidationError{File: file, Field: key, Err: ErrMissingField}
		}
	}

	return nil
}

// newPost derives a Post from the metadata of file. html is the rendered body.
func newPost(c *Config, file string, data frontmatter.Metadata, html string) (*Post, error) {
	err := checkRequired(file, data)
	if err != nil {
		return nil, err
	}

	slug, ok := data.String("slug")
	if !ok {
		slug = strings.TrimSuffix(file, filepath.Ext(file))
	}

	link, ok := data.String("link")
	if !ok {
		link = c.SiteURL + "/" + slug
	}

	date, ok := parseDate(data["date"])
	if !ok {
		return nil, &ValidationError{File: file, Field: "date", Value: data["date"], Err: ErrInvalidDate}
	}

	title, _ := data.String("title")

	author, ok := data.String("author")
	if !ok {
		author = c.DefaultAuthor
	}

	guid, ok := data.String("guid")
	if !ok {
		guid = link
	}

	commentsLink, ok := data.String("commentsLink")
	if !ok {
		commentsLink = link + "#comments"
	}

	return &Post{
		Title:        title,
		Author:       author,
		Date:         date,
		Link:         link,
		GUID:         guid,
		CommentsLink: commentsLink,
		CommentCount: commentCount(data),
		HTML:         html,
	}, nil
}

func parseDate(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func commentCount(data frontmatter.Metadata) int {
	n, ok := data.Number("comments")
	if !ok || n < 0 {
		return 0
	}

	if n >= float64(math.MaxInt) {
		return math.MaxInt
	}

	return int(n)
}
