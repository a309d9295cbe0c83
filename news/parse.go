package news

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"wolfhub/models"
	"wolfhub/upstream"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"golang.org/x/net/html/charset"
)

const defaultAuthor = "Unknown"

var errNoFeedRoot = errors.New("document has neither an <rss><channel> nor a <feed> root")

// Parse turns an RSS 2.0 or Atom document into a Feed. source is used for
// error messages and as Feed.Url; now fills in missing dates.
func Parse(data []byte, source string, now time.Time) (*models.Feed, error) {
	if err := checkRoot(data); err != nil {
		return nil, &upstream.ParseError{Source: source, Err: err}
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &upstream.ParseError{Source: source, Err: err}
	}

	feed := &models.Feed{
		Url:           source,
		Title:         lo.Ternary(parsed.Title != "", parsed.Title, "RSS Feed"),
		Description:   parsed.Description,
		Link:          parsed.Link,
		LastBuildDate: firstTime(now, parsed.UpdatedParsed, parsed.PublishedParsed),
		Items:         make([]models.Article, 0, len(parsed.Items)),
	}

	for i, item := range parsed.Items {
		feed.Items = append(feed.Items, toArticle(item, i, now))
	}
	return feed, nil
}

// checkRoot accepts <rss> with a <channel> child, or <feed>
func checkRoot(data []byte) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.CharsetReader = charset.NewReaderLabel

	depth := 0
	root := ""
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return errNoFeedRoot
		}
		if err != nil {
			return fmt.Errorf("invalid XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			name := strings.ToLower(t.Name.Local)
			switch {
			case depth == 1 && name == "feed":
				return nil
			case depth == 1 && name == "rss":
				root = name
			case depth == 1:
				return errNoFeedRoot
			case depth == 2 && root == "rss" && name == "channel":
				return nil
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				return errNoFeedRoot
			}
		}
	}
}

func toArticle(item *gofeed.Item, index int, now time.Time) models.Article {
	description, imageURL := stripHTML(item.Description)
	if imageURL == "" && item.Image != nil {
		imageURL = item.Image.URL
	}

	content := description
	if strings.TrimSpace(item.Content) != "" {
		content = item.Content
	}

	return models.Article{
		Id:          lo.Ternary(item.GUID != "", item.GUID, fmt.Sprintf("item-%d", index)),
		Guid:        lo.Ternary(item.GUID != "", item.GUID, fmt.Sprintf("guid-%d", index)),
		Title:       lo.Ternary(strings.TrimSpace(item.Title) != "", strings.TrimSpace(item.Title), "Untitled"),
		Description: description,
		Content:     content,
		Link:        item.Link,
		PublishedAt: firstTime(now, item.PublishedParsed, item.UpdatedParsed),
		Author:      author(item),
		Categories:  normalizeCategories(item.Categories),
		ImageUrl:    imageURL,
	}
}

func author(item *gofeed.Item) string {
	people := item.Authors
	if item.Author != nil {
		people = append(people, item.Author)
	}
	for _, p := range people {
		if p == nil {
			continue
		}
		if name := strings.TrimSpace(p.Name); name != "" {
			return name
		}
		if email := strings.TrimSpace(p.Email); email != "" {
			return email
		}
	}
	return defaultAuthor
}

// normalizeCategories returns the categories as a set, keeping first-seen order
func normalizeCategories(categories []string) []string {
	cleaned := lo.FilterMap(categories, func(c string, _ int) (string, bool) {
		c = strings.TrimSpace(c)
		return c, c != ""
	})
	return lo.Uniq(cleaned)
}

func firstTime(fallback time.Time, candidates ...*time.Time) time.Time {
	for _, t := range candidates {
		if t != nil && !t.IsZero() {
			return *t
		}
	}
	return fallback
}
