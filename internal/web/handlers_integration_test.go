package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelog/internal/articles"
	"travelog/internal/cms"
	"travelog/internal/config"
	"travelog/internal/i18n"
	"travelog/internal/session"
)

const (
	ownerToken = "owner-token"
	ownerID    = 42
)

// fakeBackend serves a small fixed catalog: five Bali articles and two
// Java ones, plus a handful of site-wide comments.
type fakeBackend struct {
	rejectTokens    bool
	failArticlePage int // ListArticles errors for this page when nonzero
	failCommentPage int
	articles        []cms.ArticleDoc
	comments        []cms.CommentDoc

	createdArticles []cms.ArticleInput
	createdComments []cms.CommentInput
	deletedArticles []string
	commentQueries  []cms.ListQuery
}

func newFakeBackend() *fakeBackend {
	owner := &cms.UserDoc{ID: ownerID, Username: "sari"}
	other := &cms.UserDoc{ID: 7, Username: "budi"}
	bali := &cms.CategoryDoc{ID: 1, DocumentID: "cat-bali", Name: "Bali"}
	java := &cms.CategoryDoc{ID: 2, DocumentID: "cat-java", Name: "Java"}

	f := &fakeBackend{}
	for i, spec := range []struct {
		doc      string
		title    string
		user     *cms.UserDoc
		category *cms.CategoryDoc
	}{
		{"a1", "Three Days in Ubud", owner, bali},
		{"a2", "Canggu by Scooter", other, bali},
		{"a3", "Sunrise at Batur", other, bali},
		{"a4", "Uluwatu Cliffs", owner, bali},
		{"a5", "Nusa Penida Loop", other, bali},
		{"a6", "Borobudur at Dawn", other, java},
		{"a7", "Street Food in Malang", owner, java},
	} {
		f.articles = append(f.articles, cms.ArticleDoc{
			ID:          i + 1,
			DocumentID:  spec.doc,
			Title:       spec.title,
			Description: "# " + spec.title + "\n\nSome travel notes.",
			PublishedAt: "2026-03-01T00:00:00.000Z",
			User:        spec.user,
			Category:    spec.category,
		})
	}

	f.comments = []cms.CommentDoc{
		{ID: 1, DocumentID: "cm1", Content: "first comment", User: other, Article: &cms.ArticleDoc{ID: 1, DocumentID: "a1"}},
		{ID: 2, DocumentID: "cm2", Content: "second comment", User: owner, Article: &cms.ArticleDoc{ID: 2, DocumentID: "a2"}},
		{ID: 3, DocumentID: "cm3", Content: "third comment", User: other, Article: &cms.ArticleDoc{ID: 1, DocumentID: "a1"}},
	}
	return f
}

func (f *fakeBackend) authErr(token string) error {
	if f.rejectTokens && token != "" {
		return cms.ErrUnauthorized
	}
	return nil
}

func paginate[T any](items []T, page int, pageSize int) ([]T, cms.Meta) {
	if pageSize < 1 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return items[start:end], cms.Meta{Pagination: &cms.Pagination{
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount,
		Total:     total,
	}}
}

func (f *fakeBackend) ListArticles(_ context.Context, token string, q cms.ListQuery) (cms.List[cms.ArticleDoc], error) {
	if err := f.authErr(token); err != nil {
		return cms.List[cms.ArticleDoc]{}, err
	}
	if f.failArticlePage != 0 && q.Page == f.failArticlePage {
		return cms.List[cms.ArticleDoc]{}, errors.New("upstream unavailable")
	}

	filtered := make([]cms.ArticleDoc, 0, len(f.articles))
	for _, doc := range f.articles {
		if q.CategoryName != "" && (doc.Category == nil || !strings.EqualFold(doc.Category.Name, q.CategoryName)) {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(doc.Title), strings.ToLower(q.Title)) {
			continue
		}
		filtered = append(filtered, doc)
	}

	pageItems, meta := paginate(filtered, q.Page, q.PageSize)
	return cms.List[cms.ArticleDoc]{Data: pageItems, Meta: meta}, nil
}

func (f *fakeBackend) GetArticle(_ context.Context, token string, documentID string, _ cms.ListQuery) (cms.ArticleDoc, error) {
	if err := f.authErr(token); err != nil {
		return cms.ArticleDoc{}, err
	}
	for _, doc := range f.articles {
		if doc.DocumentID == documentID {
			return doc, nil
		}
	}
	return cms.ArticleDoc{}, cms.ErrNotFound
}

func (f *fakeBackend) CreateArticle(_ context.Context, _ string, input cms.ArticleInput) (cms.ArticleDoc, error) {
	f.createdArticles = append(f.createdArticles, input)
	return cms.ArticleDoc{ID: 100, DocumentID: "a-new", Title: input.Title}, nil
}

func (f *fakeBackend) UpdateArticle(_ context.Context, _ string, documentID string, input cms.ArticleInput) (cms.ArticleDoc, error) {
	return cms.ArticleDoc{ID: 1, DocumentID: documentID, Title: input.Title}, nil
}

func (f *fakeBackend) DeleteArticle(_ context.Context, _ string, documentID string) error {
	f.deletedArticles = append(f.deletedArticles, documentID)
	return nil
}

func (f *fakeBackend) ListCategories(_ context.Context, _ string) ([]cms.CategoryDoc, error) {
	return []cms.CategoryDoc{
		{ID: 1, DocumentID: "cat-bali", Name: "Bali"},
		{ID: 2, DocumentID: "cat-java", Name: "Java"},
	}, nil
}

func (f *fakeBackend) ListComments(_ context.Context, token string, q cms.ListQuery) (cms.List[cms.CommentDoc], error) {
	f.commentQueries = append(f.commentQueries, q)
	if err := f.authErr(token); err != nil {
		return cms.List[cms.CommentDoc]{}, err
	}
	if f.failCommentPage != 0 && q.Page == f.failCommentPage {
		return cms.List[cms.CommentDoc]{}, errors.New("upstream unavailable")
	}

	filtered := make([]cms.CommentDoc, 0, len(f.comments))
	for _, doc := range f.comments {
		if q.ArticleDocumentID != "" && (doc.Article == nil || doc.Article.DocumentID != q.ArticleDocumentID) {
			continue
		}
		filtered = append(filtered, doc)
	}

	pageItems, meta := paginate(filtered, q.Page, q.PageSize)
	return cms.List[cms.CommentDoc]{Data: pageItems, Meta: meta}, nil
}

func (f *fakeBackend) GetComment(_ context.Context, _ string, documentID string, _ cms.ListQuery) (cms.CommentDoc, error) {
	for _, doc := range f.comments {
		if doc.DocumentID == documentID {
			return doc, nil
		}
	}
	return cms.CommentDoc{}, cms.ErrNotFound
}

func (f *fakeBackend) CreateComment(_ context.Context, _ string, input cms.CommentInput) (cms.CommentDoc, error) {
	f.createdComments = append(f.createdComments, input)
	return cms.CommentDoc{ID: 50, DocumentID: "cm-new", Content: input.Content}, nil
}

func (f *fakeBackend) UpdateComment(_ context.Context, _ string, documentID string, content string) (cms.CommentDoc, error) {
	return cms.CommentDoc{DocumentID: documentID, Content: content}, nil
}

func (f *fakeBackend) DeleteComment(_ context.Context, _ string, _ string) error {
	return nil
}

func (f *fakeBackend) Login(_ context.Context, identifier string, password string) (cms.AuthResponse, error) {
	if identifier == "sari" && password == "secret" {
		return cms.AuthResponse{JWT: ownerToken, User: cms.UserDoc{ID: ownerID, Username: "sari"}}, nil
	}
	return cms.AuthResponse{}, &cms.RequestError{Status: http.StatusBadRequest, Message: "Invalid identifier or password"}
}

func (f *fakeBackend) Register(_ context.Context, email string, username string, _ string) (cms.AuthResponse, error) {
	if username == "taken" {
		return cms.AuthResponse{}, &cms.RequestError{Status: http.StatusBadRequest, Message: "Email or Username are already taken"}
	}
	return cms.AuthResponse{JWT: "fresh-token", User: cms.UserDoc{ID: 99, Username: username, Email: email}}, nil
}

// browser drives the handler the way a cookie-keeping user agent
// would, so session and stream state survive across requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, backend articles.Backend) *browser {
	t.Helper()

	cfg := config.Config{
		StaticDir: "static",
		Pages: config.Pages{
			Preview:         3,
			Latest:          3,
			Comments:        2,
			ArticleComments: 25,
		},
		Locale: config.Locale{Default: "id"},
	}

	catalog, err := i18n.Load()
	require.NoError(t, err)

	sessions := session.NewStore([]byte("0123456789abcdef0123456789abcdef"), nil)
	handler, err := NewHandler(cfg, articles.NewService(backend, ""), sessions, catalog, nil)
	require.NoError(t, err)

	return &browser{t: t, handler: handler.Router(), cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method string, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		b.cookies[cookie.Name] = cookie
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) signIn() {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/login", url.Values{"identifier": {"sari"}, "password": {"secret"}})
	require.Equal(b.t, http.StatusFound, rec.Code, "sign-in should succeed")
}

func TestLanding_RendersArticlesCommentsAndCategories(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Three Days in Ubud")
	assert.Contains(t, body, "first comment")
	assert.Contains(t, body, "Bali")
	assert.Contains(t, body, "Java")
}

func TestLanding_LoadMoreAccumulatesAcrossRequests(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	first := b.get("/")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Three Days in Ubud")
	assert.NotContains(t, first.Body.String(), "Uluwatu Cliffs", "page two items not loaded yet")

	second := b.get("/?page=2")
	require.Equal(t, http.StatusOK, second.Code)
	body := second.Body.String()
	assert.Contains(t, body, "Three Days in Ubud", "page one items stay visible")
	assert.Contains(t, body, "Uluwatu Cliffs", "page two items appended")
}

func TestLanding_FailedLoadMoreRetriesSamePage(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)

	require.Equal(t, http.StatusOK, b.get("/").Code)

	backend.failArticlePage = 2
	rec := b.get("/?page=2")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Three Days in Ubud", "accumulated page stays visible")
	assert.NotContains(t, body, "Uluwatu Cliffs")
	assert.Contains(t, body, `class="button retry" href="/?page=2#articles"`,
		"retry points at the page that failed, not back at the start")

	// the same link now succeeds and appends page two
	backend.failArticlePage = 0
	retried := b.get("/?page=2")
	require.Equal(t, http.StatusOK, retried.Code)
	assert.Contains(t, retried.Body.String(), "Uluwatu Cliffs")
}

func TestLanding_FailedFirstPageRetriesFromStart(t *testing.T) {
	backend := newFakeBackend()
	backend.failArticlePage = 1
	b := newBrowser(t, backend)

	rec := b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="button retry" href="/#articles"`)

	backend.failArticlePage = 0
	retried := b.get("/")
	require.Equal(t, http.StatusOK, retried.Code)
	assert.Contains(t, retried.Body.String(), "Three Days in Ubud")
}

func TestLanding_FailedCommentLoadMoreRetriesSamePage(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)

	require.Equal(t, http.StatusOK, b.get("/").Code)

	backend.failCommentPage = 2
	rec := b.get("/?cpage=2")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "first comment", "accumulated page stays visible")
	assert.NotContains(t, body, "third comment")
	assert.Contains(t, body, `class="button retry" href="/?cpage=2#comments"`)

	backend.failCommentPage = 0
	retried := b.get("/?cpage=2")
	require.Equal(t, http.StatusOK, retried.Code)
	assert.Contains(t, retried.Body.String(), "third comment")
}

func TestLanding_ArticlePagingDoesNotResetComments(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	b.get("/")
	more := b.get("/?cpage=2")
	require.Equal(t, http.StatusOK, more.Code)
	assert.Contains(t, more.Body.String(), "third comment")

	// loading more articles keeps cpage in the URL it renders
	assert.Contains(t, more.Body.String(), "cpage=2")
}

func TestLanding_CategoryFilterRequiresSignIn(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.get("/?category=Bali")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?category=Bali", rec.Header().Get("Location"))
}

func TestLoginResumesCategoryIntent(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	// gate turns the anonymous visitor away
	rec := b.get("/?category=Bali")
	require.Equal(t, http.StatusFound, rec.Code)
	loginURL := rec.Header().Get("Location")

	// the login page carries the intent as a hidden field
	page := b.get(loginURL)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `name="category" value="Bali"`)

	// signing in resumes the filtered view
	rec = b.do(http.MethodPost, "/login", url.Values{
		"identifier": {"sari"},
		"password":   {"secret"},
		"category":   {"Bali"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/?category=Bali", rec.Header().Get("Location"))

	filtered := b.get("/?category=Bali")
	require.Equal(t, http.StatusOK, filtered.Code)
	assert.Contains(t, filtered.Body.String(), "Sunrise at Batur")
	assert.NotContains(t, filtered.Body.String(), "Borobudur at Dawn")
}

func TestLogin_RejectedCredentialsStayOnForm(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.do(http.MethodPost, "/login", url.Values{"identifier": {"sari"}, "password": {"wrong"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="sari"`, "identifier is kept")

	assert.Equal(t, http.StatusFound, b.get("/article/a1").Code, "still not signed in")
}

func TestLogin_ValidationErrors(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.do(http.MethodPost, "/login", url.Values{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegister_SuccessSignsIn(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.do(http.MethodPost, "/register", url.Values{
		"email":    {"new@example.com"},
		"username": {"newbie"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	detail := b.get("/article/a1")
	assert.Equal(t, http.StatusOK, detail.Code, "registered session is signed in")
}

func TestRegister_TakenUsernameShowsBackendMessage(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.do(http.MethodPost, "/register", url.Values{
		"email":    {"dup@example.com"},
		"username": {"taken"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "already taken")
}

func TestArticle_RequiresSignInWithReturnPath(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.get("/article/a1")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Farticle%2Fa1", rec.Header().Get("Location"))
}

func TestArticle_RendersForSignedInViewer(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()

	rec := b.get("/article/a1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Three Days in Ubud")
	assert.Contains(t, body, "/article/a1/edit", "owner sees edit controls")
	assert.Contains(t, body, "first comment")
}

func TestArticle_CommentsAreFetchedForThatArticle(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	rec := b.get("/article/a1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "first comment")
	assert.Contains(t, body, "third comment")
	assert.NotContains(t, body, "second comment", "belongs to another article")

	require.NotEmpty(t, backend.commentQueries)
	q := backend.commentQueries[len(backend.commentQueries)-1]
	assert.Equal(t, "a1", q.ArticleDocumentID)
	assert.Equal(t, 25, q.PageSize, "detail page size comes from configuration")
}

func TestArticle_NonOwnerSeesNoEditControls(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()

	rec := b.get("/article/a2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/article/a2/edit")
}

func TestArticle_UnknownDocumentRedirectsHome(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()

	rec := b.get("/article/nope")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestArticleEdit_NonOwnerIsRedirected(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()

	rec := b.get("/article/a2/edit")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestArticleCreate_FlowsToNewArticle(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	page := b.get("/article/create")
	require.Equal(t, http.StatusOK, page.Code)

	rec := b.do(http.MethodPost, "/article/create", url.Values{
		"title":           {"Hidden Waterfalls"},
		"description":     {"Off the beaten path."},
		"cover_image_url": {"https://img.example.com/falls.jpg"},
		"category":        {"cat-bali"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/article/a-new", rec.Header().Get("Location"))

	require.Len(t, backend.createdArticles, 1)
	assert.Equal(t, "cat-bali", backend.createdArticles[0].Category)
}

func TestArticleCreate_InvalidFormRerenders(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	rec := b.do(http.MethodPost, "/article/create", url.Values{
		"title":           {""},
		"description":     {"body"},
		"cover_image_url": {"not a url"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, backend.createdArticles)
}

func TestArticleDelete_OwnerOnly(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	rec := b.do(http.MethodPost, "/article/a2/delete", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Empty(t, backend.deletedArticles, "non-owner cannot delete")

	rec = b.do(http.MethodPost, "/article/a1/delete", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, []string{"a1"}, backend.deletedArticles)
}

func TestCommentCreate_AttachesToArticle(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	rec := b.do(http.MethodPost, "/article/a1/comments", url.Values{"content": {"great tips"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/article/a1", rec.Header().Get("Location"))

	require.Len(t, backend.createdComments, 1)
	assert.Equal(t, 1, backend.createdComments[0].Article)
	assert.Equal(t, "great tips", backend.createdComments[0].Content)
}

func TestCommentCreate_EmptyContentRerendersArticle(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	rec := b.do(http.MethodPost, "/article/a1/comments", url.Values{"content": {"  "}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, backend.createdComments)
}

func TestCommentEdit_OwnershipChecked(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()

	// cm1 belongs to budi, not the signed-in sari
	rec := b.do(http.MethodPost, "/comment/cm1/edit", url.Values{"content": {"hijack"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// cm2 belongs to sari
	rec = b.do(http.MethodPost, "/comment/cm2/edit", url.Values{"content": {"updated"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/article/a2", rec.Header().Get("Location"))
}

func TestExpiredToken_ClearsSessionAndRedirects(t *testing.T) {
	backend := newFakeBackend()
	b := newBrowser(t, backend)
	b.signIn()

	// backend starts rejecting the stored token
	backend.rejectTokens = true

	rec := b.get("/")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the session is gone: protected pages gate again
	backend.rejectTokens = false
	detail := b.get("/article/a1")
	require.Equal(t, http.StatusFound, detail.Code)
	assert.Contains(t, detail.Header().Get("Location"), "/login")
}

func TestLogout_DropsSessionAndStreams(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()
	b.get("/?page=2")

	rec := b.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	landing := b.get("/")
	require.Equal(t, http.StatusOK, landing.Code)
	assert.NotContains(t, landing.Body.String(), "Uluwatu Cliffs", "accumulated pages were dropped")

	detail := b.get("/article/a1")
	assert.Equal(t, http.StatusFound, detail.Code)
}

func TestLocaleSwitcher(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.get("/locale?to=en&redirect=%2F")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	landing := b.get("/")
	assert.Contains(t, landing.Body.String(), "Latest stories")

	b.get("/locale?to=id")
	landing = b.get("/")
	assert.Contains(t, landing.Body.String(), "Cerita terbaru")
}

func TestThemeSwitcher(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	landing := b.get("/")
	assert.Contains(t, landing.Body.String(), `data-theme="dark"`, "dark is the default")
	assert.Contains(t, landing.Body.String(), "/theme?to=light")

	rec := b.get("/theme?to=light&redirect=%2F")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	landing = b.get("/")
	assert.Contains(t, landing.Body.String(), `data-theme="light"`)
	assert.Contains(t, landing.Body.String(), "/theme?to=dark")

	// unknown values leave the stored choice alone
	b.get("/theme?to=neon")
	landing = b.get("/")
	assert.Contains(t, landing.Body.String(), `data-theme="light"`)
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.get("/no/such/page")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	b := newBrowser(t, newFakeBackend())

	rec := b.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTitleSearchResetsArticleStream(t *testing.T) {
	b := newBrowser(t, newFakeBackend())
	b.signIn()

	b.get("/?page=2")
	rec := b.get("/?title=ubud")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Three Days in Ubud")
	assert.NotContains(t, body, "Uluwatu Cliffs", "filter change resets accumulation")
}
