package news

import (
	"slices"
	"strings"
	"time"
	"wolfhub/models"

	"github.com/samber/lo"
)

// Filter decides whether an article belongs in a view
type Filter interface {
	Keep(article models.Article) bool
}

// KeywordFilter matches a case-insensitive substring of the title,
// description, author or any category. An empty query matches everything.
type KeywordFilter struct {
	Query string
}

func (f *KeywordFilter) Keep(a models.Article) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return containsFold(a.Title, q) ||
		containsFold(a.Description, q) ||
		containsFold(a.Author, q) ||
		lo.SomeBy(a.Categories, func(c string) bool { return containsFold(c, q) })
}

// CategoryFilter matches articles with a category containing Category
type CategoryFilter struct {
	Category string
}

func (f *CategoryFilter) Keep(a models.Article) bool {
	q := strings.ToLower(strings.TrimSpace(f.Category))
	return lo.SomeBy(a.Categories, func(c string) bool { return containsFold(c, q) })
}

// RecencyFilter keeps articles published at or after Since
type RecencyFilter struct {
	Since time.Time
}

func (f *RecencyFilter) Keep(a models.Article) bool {
	return !a.PublishedAt.Before(f.Since)
}

// SportFilter keeps articles whose title or description mention any keyword
type SportFilter struct {
	Keywords []string
}

func (f *SportFilter) Keep(a models.Article) bool {
	text := strings.ToLower(a.Title + " " + a.Description)
	return lo.SomeBy(f.Keywords, func(k string) bool {
		return strings.Contains(text, strings.ToLower(k))
	})
}

var _ Filter = (*KeywordFilter)(nil)
var _ Filter = (*CategoryFilter)(nil)
var _ Filter = (*RecencyFilter)(nil)
var _ Filter = (*SportFilter)(nil)

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// Apply returns the articles every filter keeps, in their original order.
// The input is never modified.
func Apply(articles []models.Article, filters ...Filter) []models.Article {
	return lo.Filter(articles, func(a models.Article, _ int) bool {
		for _, f := range filters {
			if !f.Keep(a) {
				return false
			}
		}
		return true
	})
}

func Search(articles []models.Article, query string) []models.Article {
	return Apply(articles, &KeywordFilter{Query: query})
}

func ByCategory(articles []models.Article, category string) []models.Article {
	return Apply(articles, &CategoryFilter{Category: category})
}

// Recent keeps articles from the last days days, counted back from now
func Recent(articles []models.Article, days int, now time.Time) []models.Article {
	return Apply(articles, &RecencyFilter{Since: now.AddDate(0, 0, -days)})
}

// Latest returns the first limit articles in feed order
func Latest(articles []models.Article, limit int) []models.Article {
	if limit < 0 {
		limit = 0
	}
	return slices.Clone(articles[:min(limit, len(articles))])
}

// Featured returns the n most recently published articles, newest first
func Featured(articles []models.Article, n int) []models.Article {
	return Latest(NewestFirst(articles), n)
}

// NewestFirst returns a copy sorted by publication date, newest first.
// Articles with equal dates keep their feed order.
func NewestFirst(articles []models.Article) []models.Article {
	sorted := slices.Clone(articles)
	slices.SortStableFunc(sorted, func(a, b models.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return sorted
}

// DefaultSportKeywords are used when the configuration has no list for a sport
var DefaultSportKeywords = map[string][]string{
	"basketball": {"basketball", "hoops", "court", "ncaam"},
	"football":   {"football", "gridiron", "touchdown", "ncaaf"},
	"baseball":   {"baseball", "diamond", "home run", "ncaab"},
	"recruiting": {"recruit", "commitment", "transfer", "portal"},
}

// BySport keeps articles mentioning one of the sport's keywords. A sport
// without a keyword list matches on its own name.
func BySport(articles []models.Article, sport string, keywords map[string][]string) []models.Article {
	sport = strings.ToLower(strings.TrimSpace(sport))
	words, ok := keywords[sport]
	if !ok || len(words) == 0 {
		words = []string{sport}
	}
	return Apply(articles, &SportFilter{Keywords: words})
}
