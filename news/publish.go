package news

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"wolfhub/models"

	"github.com/gorilla/feeds"
)

type Format string

const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
)

// Publish renders articles as an RSS 2.0 or Atom 1.0 document under the
// metadata of info.
func Publish(info models.FeedInfo, articles []models.Article, format Format) (string, error) {
	updated := info.LastBuildDate
	if updated.IsZero() {
		updated = time.Now()
	}

	feed := &feeds.Feed{
		Title:       info.Title,
		Link:        &feeds.Link{Href: info.Link},
		Description: info.Description,
		Id:          info.Url,
		Updated:     updated,
		Created:     updated,
		Items:       make([]*feeds.Item, 0, len(articles)),
	}

	for _, a := range articles {
		item := &feeds.Item{
			Id:          a.Guid,
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.Link},
			Description: a.Description,
			Author:      &feeds.Author{Name: a.Author},
			Created:     a.PublishedAt,
			Updated:     a.PublishedAt,
		}
		if a.Content != "" && a.Content != a.Description {
			item.Content = a.Content
		}
		if a.ImageUrl != "" {
			item.Enclosure = &feeds.Enclosure{Url: a.ImageUrl, Type: imageType(a.ImageUrl), Length: "0"}
		}
		feed.Items = append(feed.Items, item)
	}

	switch format {
	case FormatRSS:
		return feed.ToRss()
	case FormatAtom:
		return feed.ToAtom()
	default:
		return "", fmt.Errorf("unknown feed format %q", format)
	}
}

func imageType(url string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(url, "?", 2)[0]))
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
