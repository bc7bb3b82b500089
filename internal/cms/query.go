package cms

import (
	"net/url"
	"strconv"
	"strings"
)

// ListQuery describes one list fetch in domain terms and encodes itself
// into Strapi's bracketed query parameter syntax.
type ListQuery struct {
	Page     int
	PageSize int
	Sort     string

	// filters
	Title             string // title substring, case-insensitive
	CategoryName      string // exact category name, case-insensitive
	ArticleDocumentID string // comments of one article

	// relation expansion
	PopulateAll      bool
	PopulateUser     bool
	PopulateCategory bool
	PopulateArticle  bool
}

func (q ListQuery) Values() url.Values {
	v := make(url.Values)

	if q.Page > 0 {
		v.Set("pagination[page]", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pagination[pageSize]", strconv.Itoa(q.PageSize))
	}
	if strings.TrimSpace(q.Sort) != "" {
		v.Set("sort", q.Sort)
	}

	if q.PopulateAll {
		v.Set("populate", "*")
	} else {
		if q.PopulateUser {
			v.Set("populate[user]", "*")
		}
		if q.PopulateCategory {
			v.Set("populate[category]", "*")
		}
		if q.PopulateArticle {
			v.Set("populate[article]", "*")
		}
	}

	if title := strings.TrimSpace(q.Title); title != "" {
		v.Set("filters[title][$containsi]", title)
	}
	if category := strings.TrimSpace(q.CategoryName); category != "" {
		v.Set("filters[category][name][$eqi]", category)
	}
	if doc := strings.TrimSpace(q.ArticleDocumentID); doc != "" {
		v.Set("filters[article][documentId][$eq]", doc)
	}

	return v
}
