package web

import (
	"travelog/internal/articles"
	"travelog/internal/authgate"
	"travelog/internal/forms"
	"travelog/internal/i18n"
	"travelog/internal/session"
)

// Page carries what every template needs: the viewer, the locale and
// the translator.
type Page struct {
	Title         string
	Path          string
	Locale        string
	Theme         string
	Authenticated bool
	Username      string

	viewer session.State
	loc    *i18n.Localizer
}

func newPage(title string, path string, viewer session.State, loc *i18n.Localizer, theme string) Page {
	username := ""
	if viewer.User != nil {
		username = viewer.User.Username
	}

	return Page{
		Title:         title,
		Path:          path,
		Locale:        loc.Locale(),
		Theme:         theme,
		Authenticated: viewer.IsAuthenticated,
		Username:      username,
		viewer:        viewer,
		loc:           loc,
	}
}

// T translates a message id for the page's locale.
func (p Page) T(id string) string {
	return p.loc.T(id)
}

// Owns reports whether the viewer owns a resource authored by authorID.
func (p Page) Owns(authorID int) bool {
	return authgate.IsOwner(p.viewer, authorID)
}

type categoryBadge struct {
	Name   string
	URL    string
	Active bool
}

type landingView struct {
	Page

	Categories     []categoryBadge
	AllURL         string
	ActiveCategory string
	TitleQuery     string

	Latest []articles.Summary

	Articles        []articles.Summary
	ArticlesHasMore bool
	ArticlesFailed  bool
	ArticlesMoreURL string

	Comments        []articles.Comment
	CommentsHasMore bool
	CommentsFailed  bool
	CommentsMoreURL string
}

type loginView struct {
	Page

	Identifier string
	Redirect   string
	Category   string
	Errors     forms.FieldErrors
	Flash      string
}

type registerView struct {
	Page

	Email    string
	Username string
	Errors   forms.FieldErrors
	Flash    string
}

type articleView struct {
	Page

	Article *articles.Article
	IsOwner bool

	CommentContent string
	CommentErrors  forms.FieldErrors
	Flash          string
}

type articleFormView struct {
	Page

	IsEdit     bool
	DocumentID string
	Categories []articles.Category

	Title         string
	Description   string
	CoverImageURL string
	Category      string

	Errors forms.FieldErrors
	Flash  string
}

type errorView struct {
	Page

	Message string
}
