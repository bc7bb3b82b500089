package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"travelog/internal/articles"
	"travelog/internal/authgate"
	"travelog/internal/cms"
	"travelog/internal/config"
	"travelog/internal/forms"
	"travelog/internal/i18n"
	"travelog/internal/session"
)

const articleSort = "publishedAt:desc"

const (
	themeDark  = "dark"
	themeLight = "light"
)

type Handler struct {
	cfg      config.Config
	service  *articles.Service
	sessions *session.Store
	streams  *streamSet
	views    *views
	catalog  *i18n.Catalog
	logger   *zap.Logger
}

func NewHandler(
	cfg config.Config,
	service *articles.Service,
	sessions *session.Store,
	catalog *i18n.Catalog,
	logger *zap.Logger,
) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	v, err := newViews()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handler{
		cfg:      cfg,
		service:  service,
		sessions: sessions,
		streams:  newStreamSet(),
		views:    v,
		catalog:  catalog,
		logger:   logger,
	}, nil
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(Recover(h.logger), Logging(h.logger))

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleLanding).Methods(http.MethodGet)

	r.HandleFunc("/login", h.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.handleLoginSubmit).Methods(http.MethodPost)
	r.HandleFunc("/register", h.handleRegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/register", h.handleRegisterSubmit).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/locale", h.handleLocale).Methods(http.MethodGet)
	r.HandleFunc("/theme", h.handleTheme).Methods(http.MethodGet)

	// "/article/create" must be registered before the documentId route
	// so "create" is never taken for an id.
	r.HandleFunc("/article/create", h.handleArticleCreatePage).Methods(http.MethodGet)
	r.HandleFunc("/article/create", h.handleArticleCreateSubmit).Methods(http.MethodPost)
	r.HandleFunc("/article/{documentId}", h.handleArticle).Methods(http.MethodGet)
	r.HandleFunc("/article/{documentId}/edit", h.handleArticleEditPage).Methods(http.MethodGet)
	r.HandleFunc("/article/{documentId}/edit", h.handleArticleEditSubmit).Methods(http.MethodPost)
	r.HandleFunc("/article/{documentId}/delete", h.handleArticleDelete).Methods(http.MethodPost)
	r.HandleFunc("/article/{documentId}/comments", h.handleCommentCreate).Methods(http.MethodPost)

	r.HandleFunc("/comment/{documentId}/edit", h.handleCommentEdit).Methods(http.MethodPost)
	r.HandleFunc("/comment/{documentId}/delete", h.handleCommentDelete).Methods(http.MethodPost)

	static := http.FileServer(http.Dir(h.cfg.StaticDir))
	r.PathPrefix("/static/").Handler(withCacheControlPublicHour(http.StripPrefix("/static/", static)))

	// Unknown paths land on the home page rather than a dead end.
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// landing

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	loc := h.localizer(r)

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	title := strings.TrimSpace(q.Get("title"))

	// Filtering by category is a members-only view.
	if category != "" && !authgate.IsAuthorized(state) {
		intent := authgate.Intent{CategoryFilter: category}
		http.Redirect(w, r, intent.LoginURL(), http.StatusFound)
		return
	}

	page := intParam(q, "page")
	cpage := intParam(q, "cpage")
	sid := h.sessions.ID(w, r)

	articleFilter := streamFilter(category, title)
	articleStream := h.streams.articles.Get(sid)
	articlesFailed := false
	articleRetryPage := 0

	if fetchPage, fetch := articleStream.Begin(articleFilter, page); fetch {
		items, info, err := h.service.List(r.Context(), state.Token, articles.ListOptions{
			Page:     fetchPage,
			PageSize: h.cfg.Pages.Preview,
			Category: category,
			Title:    title,
			Sort:     articleSort,
		})
		if err != nil {
			articleStream.Fail()
			if h.redirectExpired(w, r, sid, err) {
				return
			}
			h.logger.Warn("article list fetch failed", zap.Error(err))
			articlesFailed = true
			articleRetryPage = fetchPage
		} else {
			articleStream.Finish(articleFilter, fetchPage, items, info)
		}
	}

	commentStream := h.streams.comments.Get(sid)
	commentsFailed := false
	commentRetryPage := 0

	if fetchPage, fetch := commentStream.Begin("", cpage); fetch {
		items, info, err := h.service.RecentComments(r.Context(), state.Token, fetchPage, h.cfg.Pages.Comments)
		if err != nil {
			commentStream.Fail()
			if h.redirectExpired(w, r, sid, err) {
				return
			}
			h.logger.Warn("comment list fetch failed", zap.Error(err))
			commentsFailed = true
			commentRetryPage = fetchPage
		} else {
			commentStream.Finish("", fetchPage, items, info)
		}
	}

	latest, _, err := h.service.List(r.Context(), state.Token, articles.ListOptions{
		Page:     1,
		PageSize: h.cfg.Pages.Latest,
		Sort:     articleSort,
	})
	if err != nil {
		if h.redirectExpired(w, r, sid, err) {
			return
		}
		h.logger.Warn("latest articles fetch failed", zap.Error(err))
	}

	categories, err := h.service.Categories(r.Context(), state.Token)
	if err != nil {
		h.logger.Warn("categories fetch failed", zap.Error(err))
	}

	articleSnap := articleStream.Snapshot()
	commentSnap := commentStream.Snapshot()

	view := landingView{
		Page:           newPage(loc.T("landing.title"), r.URL.Path, state, loc, h.theme(r)),
		AllURL:         landingURL("", title, 1, cpage),
		ActiveCategory: category,
		TitleQuery:     title,
		Latest:         latest,

		Articles:        articleSnap.Items,
		ArticlesHasMore: articleStream.HasMore(),
		ArticlesFailed:  articlesFailed,

		Comments:        commentSnap.Items,
		CommentsHasMore: commentStream.HasMore(),
		CommentsFailed:  commentsFailed,
	}

	// The retry link repeats the exact fetch that failed; load-more asks
	// for the page after the last one accumulated.
	if articlesFailed {
		view.ArticlesMoreURL = landingURL(category, title, articleRetryPage, commentSnap.Page)
	} else {
		view.ArticlesMoreURL = landingURL(category, title, articleSnap.Page+1, commentSnap.Page)
	}
	if commentsFailed {
		view.CommentsMoreURL = landingURL(category, title, articleSnap.Page, commentRetryPage)
	} else {
		view.CommentsMoreURL = landingURL(category, title, articleSnap.Page, commentSnap.Page+1)
	}

	for _, cat := range categories {
		view.Categories = append(view.Categories, categoryBadge{
			Name:   cat.Name,
			URL:    landingURL(cat.Name, title, 1, cpage),
			Active: cat.Name == category,
		})
	}

	h.render(w, http.StatusOK, "landing", view)
}

func intParam(q url.Values, key string) int {
	value, err := strconv.Atoi(q.Get(key))
	if err != nil || value < 1 {
		return 1
	}
	return value
}

// streamFilter tags the article stream with everything that defines
// it, so changing either the category or the search resets it.
func streamFilter(category string, title string) string {
	return category + "\x00" + title
}

// landingURL keeps both stream positions in the query so loading one
// list further never rewinds the other.
func landingURL(category string, title string, page int, cpage int) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if title != "" {
		q.Set("title", title)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if cpage > 1 {
		q.Set("cpage", strconv.Itoa(cpage))
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// auth

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	intent := authgate.ParseIntent(r.URL.Query())
	if authgate.IsAuthorized(state) {
		http.Redirect(w, r, intent.Resolve(), http.StatusFound)
		return
	}

	loc := h.localizer(r)
	h.render(w, http.StatusOK, "login", loginView{
		Page:     newPage(loc.T("login.title"), r.URL.Path, state, loc, h.theme(r)),
		Redirect: intent.TargetPath,
		Category: intent.CategoryFilter,
	})
}

func (h *Handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	intent := authgate.ParseIntent(r.PostForm)
	form := forms.Login{
		Identifier: strings.TrimSpace(r.PostFormValue("identifier")),
		Password:   r.PostFormValue("password"),
	}

	view := loginView{
		Page:       newPage(loc.T("login.title"), r.URL.Path, session.State{}, loc, h.theme(r)),
		Identifier: form.Identifier,
		Redirect:   intent.TargetPath,
		Category:   intent.CategoryFilter,
	}

	if ok, fields := forms.Validate(form); !ok {
		view.Errors = fields
		h.render(w, http.StatusUnprocessableEntity, "login", view)
		return
	}

	token, user, err := h.service.Login(r.Context(), form.Identifier, form.Password)
	if err != nil {
		h.logger.Info("login rejected", zap.String("identifier", form.Identifier), zap.Error(err))
		view.Flash = loc.T("login.failed")
		h.render(w, http.StatusUnauthorized, "login", view)
		return
	}

	// A new identity must not inherit lists fetched by the previous one.
	h.streams.Drop(h.sessions.ID(w, r))
	if err := h.sessions.Save(w, r, token, user); err != nil {
		h.serverError(w, r, loc, err)
		return
	}

	http.Redirect(w, r, intent.Resolve(), http.StatusFound)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if authgate.IsAuthorized(state) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	loc := h.localizer(r)
	h.render(w, http.StatusOK, "register", registerView{
		Page: newPage(loc.T("register.title"), r.URL.Path, state, loc, h.theme(r)),
	})
}

func (h *Handler) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	form := forms.Register{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}

	view := registerView{
		Page:     newPage(loc.T("register.title"), r.URL.Path, session.State{}, loc, h.theme(r)),
		Email:    form.Email,
		Username: form.Username,
	}

	if ok, fields := forms.Validate(form); !ok {
		view.Errors = fields
		h.render(w, http.StatusUnprocessableEntity, "register", view)
		return
	}

	token, user, err := h.service.Register(r.Context(), form.Email, form.Username, form.Password)
	if err != nil {
		h.logger.Info("registration rejected", zap.String("email", form.Email), zap.Error(err))
		view.Flash = registerFailureMessage(loc, err)
		h.render(w, http.StatusUnprocessableEntity, "register", view)
		return
	}

	h.streams.Drop(h.sessions.ID(w, r))
	if err := h.sessions.Save(w, r, token, user); err != nil {
		h.serverError(w, r, loc, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// registerFailureMessage surfaces the backend's own message when it
// has one ("Email or Username are already taken").
func registerFailureMessage(loc *i18n.Localizer, err error) string {
	var reqErr *cms.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return loc.T("register.failed")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.streams.Drop(h.sessions.ID(w, r))
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Warn("clearing session failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleLocale(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if i18n.Supported(to) {
		if err := h.sessions.SetLocale(w, r, to); err != nil {
			h.logger.Warn("persisting locale failed", zap.Error(err))
		}
	}

	back := authgate.ParseIntent(r.URL.Query()).Resolve()
	http.Redirect(w, r, back, http.StatusFound)
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if supportedTheme(to) {
		if err := h.sessions.SetTheme(w, r, to); err != nil {
			h.logger.Warn("persisting theme failed", zap.Error(err))
		}
	}

	back := authgate.ParseIntent(r.URL.Query()).Resolve()
	http.Redirect(w, r, back, http.StatusFound)
}

// articles

func (h *Handler) handleArticle(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{TargetPath: r.URL.Path}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	documentID := mux.Vars(r)["documentId"]

	article, err := h.loadArticle(r, state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}

	h.render(w, http.StatusOK, "article", articleView{
		Page:    newPage(article.Title, r.URL.Path, state, loc, h.theme(r)),
		Article: article,
		IsOwner: authgate.IsOwner(state, article.AuthorID()),
	})
}

// loadArticle fetches the article and the first page of its comments.
func (h *Handler) loadArticle(r *http.Request, token string, documentID string) (*articles.Article, error) {
	article, err := h.service.Get(r.Context(), token, documentID)
	if err != nil {
		return nil, err
	}

	comments, _, err := h.service.CommentsForArticle(r.Context(), token, documentID, 1, h.cfg.Pages.ArticleComments)
	if err != nil {
		return nil, err
	}
	article.Comments = comments

	return article, nil
}

func (h *Handler) handleArticleCreatePage(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{TargetPath: r.URL.Path}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	categories, err := h.service.Categories(r.Context(), state.Token)
	if err != nil {
		h.logger.Warn("categories fetch failed", zap.Error(err))
	}

	h.render(w, http.StatusOK, "article_form", articleFormView{
		Page:       newPage(loc.T("article.form.create_title"), r.URL.Path, state, loc, h.theme(r)),
		Categories: categories,
	})
}

func (h *Handler) handleArticleCreateSubmit(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{TargetPath: "/article/create"}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	form := articleForm(r)
	view := articleFormView{
		Page:          newPage(loc.T("article.form.create_title"), r.URL.Path, state, loc, h.theme(r)),
		Title:         form.Title,
		Description:   form.Description,
		CoverImageURL: form.CoverImageURL,
		Category:      form.Category,
	}
	view.Categories, _ = h.service.Categories(r.Context(), state.Token)

	if ok, fields := forms.Validate(form); !ok {
		view.Errors = fields
		h.render(w, http.StatusUnprocessableEntity, "article_form", view)
		return
	}

	created, err := h.service.Create(r.Context(), state.Token, articles.Draft{
		Title:              form.Title,
		Description:        form.Description,
		CoverImageURL:      form.CoverImageURL,
		CategoryDocumentID: form.Category,
	})
	if err != nil {
		if h.redirectExpired(w, r, h.sessions.ID(w, r), err) {
			return
		}
		h.serverError(w, r, loc, err)
		return
	}

	http.Redirect(w, r, "/article/"+url.PathEscape(created.DocumentID), http.StatusFound)
}

func (h *Handler) handleArticleEditPage(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{TargetPath: r.URL.Path}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	documentID := mux.Vars(r)["documentId"]

	article, err := h.service.Get(r.Context(), state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}
	if !authgate.IsOwner(state, article.AuthorID()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	view := articleFormView{
		Page:          newPage(loc.T("article.form.edit_title"), r.URL.Path, state, loc, h.theme(r)),
		IsEdit:        true,
		DocumentID:    article.DocumentID,
		Title:         article.Title,
		Description:   article.Description,
		CoverImageURL: article.CoverImageURL,
	}
	if article.Category != nil {
		view.Category = article.Category.DocumentID
	}
	view.Categories, _ = h.service.Categories(r.Context(), state.Token)

	h.render(w, http.StatusOK, "article_form", view)
}

func (h *Handler) handleArticleEditSubmit(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{TargetPath: r.URL.Path}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	documentID := mux.Vars(r)["documentId"]

	// Ownership is checked against the loaded resource, never assumed.
	article, err := h.service.Get(r.Context(), state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}
	if !authgate.IsOwner(state, article.AuthorID()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	form := articleForm(r)
	view := articleFormView{
		Page:          newPage(loc.T("article.form.edit_title"), r.URL.Path, state, loc, h.theme(r)),
		IsEdit:        true,
		DocumentID:    documentID,
		Title:         form.Title,
		Description:   form.Description,
		CoverImageURL: form.CoverImageURL,
		Category:      form.Category,
	}
	view.Categories, _ = h.service.Categories(r.Context(), state.Token)

	if ok, fields := forms.Validate(form); !ok {
		view.Errors = fields
		h.render(w, http.StatusUnprocessableEntity, "article_form", view)
		return
	}

	if _, err := h.service.Update(r.Context(), state.Token, documentID, articles.Draft{
		Title:              form.Title,
		Description:        form.Description,
		CoverImageURL:      form.CoverImageURL,
		CategoryDocumentID: form.Category,
	}); err != nil {
		if h.redirectExpired(w, r, h.sessions.ID(w, r), err) {
			return
		}
		h.serverError(w, r, loc, err)
		return
	}

	http.Redirect(w, r, "/article/"+url.PathEscape(documentID), http.StatusFound)
}

func (h *Handler) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	documentID := mux.Vars(r)["documentId"]

	article, err := h.service.Get(r.Context(), state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}
	if !authgate.IsOwner(state, article.AuthorID()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.service.Delete(r.Context(), state.Token, documentID); err != nil {
		if h.redirectExpired(w, r, h.sessions.ID(w, r), err) {
			return
		}
		h.serverError(w, r, loc, err)
		return
	}

	// The deleted article may still sit in an accumulated list.
	h.streams.Drop(h.sessions.ID(w, r))
	http.Redirect(w, r, "/", http.StatusFound)
}

func articleForm(r *http.Request) forms.Article {
	return forms.Article{
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Description:   r.PostFormValue("description"),
		CoverImageURL: strings.TrimSpace(r.PostFormValue("cover_image_url")),
		Category:      strings.TrimSpace(r.PostFormValue("category")),
	}
}

// comments

func (h *Handler) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	documentID := mux.Vars(r)["documentId"]
	articlePath := "/article/" + url.PathEscape(documentID)

	if decision := authgate.Guard(state, authgate.Intent{TargetPath: articlePath}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	article, err := h.loadArticle(r, state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}

	form := forms.Comment{Content: strings.TrimSpace(r.PostFormValue("content"))}
	if ok, fields := forms.Validate(form); !ok {
		h.render(w, http.StatusUnprocessableEntity, "article", articleView{
			Page:           newPage(article.Title, articlePath, state, loc, h.theme(r)),
			Article:        article,
			IsOwner:        authgate.IsOwner(state, article.AuthorID()),
			CommentContent: form.Content,
			CommentErrors:  fields,
		})
		return
	}

	if _, err := h.service.AddComment(r.Context(), state.Token, article.ID, form.Content); err != nil {
		if h.redirectExpired(w, r, h.sessions.ID(w, r), err) {
			return
		}
		h.serverError(w, r, loc, err)
		return
	}

	// The landing comment stream is stale now.
	h.streams.comments.Get(h.sessions.ID(w, r)).Reset("")
	http.Redirect(w, r, articlePath, http.StatusFound)
}

func (h *Handler) handleCommentEdit(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	documentID := mux.Vars(r)["documentId"]
	comment, err := h.service.GetComment(r.Context(), state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}
	if !authgate.IsOwner(state, comment.AuthorID()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	content := strings.TrimSpace(r.PostFormValue("content"))
	back := commentBackURL(comment, r.PostFormValue("article"))

	if ok, _ := forms.Validate(forms.Comment{Content: content}); !ok {
		http.Redirect(w, r, back, http.StatusFound)
		return
	}

	if err := h.service.EditComment(r.Context(), state.Token, documentID, content); err != nil {
		if h.redirectExpired(w, r, h.sessions.ID(w, r), err) {
			return
		}
		h.serverError(w, r, loc, err)
		return
	}

	h.streams.comments.Get(h.sessions.ID(w, r)).Reset("")
	http.Redirect(w, r, back, http.StatusFound)
}

func (h *Handler) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Probe(r)
	if decision := authgate.Guard(state, authgate.Intent{}); !decision.Allowed {
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	loc := h.localizer(r)
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, loc)
		return
	}

	documentID := mux.Vars(r)["documentId"]
	comment, err := h.service.GetComment(r.Context(), state.Token, documentID)
	if err != nil {
		h.articleError(w, r, loc, err)
		return
	}
	if !authgate.IsOwner(state, comment.AuthorID()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.service.RemoveComment(r.Context(), state.Token, documentID); err != nil {
		if h.redirectExpired(w, r, h.sessions.ID(w, r), err) {
			return
		}
		h.serverError(w, r, loc, err)
		return
	}

	h.streams.comments.Get(h.sessions.ID(w, r)).Reset("")
	http.Redirect(w, r, commentBackURL(comment, r.PostFormValue("article")), http.StatusFound)
}

func commentBackURL(comment articles.Comment, formArticle string) string {
	if comment.ArticleID != "" {
		return "/article/" + url.PathEscape(comment.ArticleID)
	}
	formArticle = strings.TrimSpace(formArticle)
	if formArticle != "" {
		return "/article/" + url.PathEscape(formArticle)
	}
	return "/"
}

// shared plumbing

func (h *Handler) localizer(r *http.Request) *i18n.Localizer {
	locale := h.sessions.Locale(r)
	if locale == "" {
		locale = h.cfg.Locale.Default
	}
	return h.catalog.Localizer(locale)
}

func supportedTheme(theme string) bool {
	return theme == themeDark || theme == themeLight
}

func (h *Handler) theme(r *http.Request) string {
	if theme := h.sessions.Theme(r); supportedTheme(theme) {
		return theme
	}
	return themeDark
}

// redirectExpired handles the backend rejecting the session's token:
// the session is cleared, its streams dropped, and the visitor sent to
// sign in again.
func (h *Handler) redirectExpired(w http.ResponseWriter, r *http.Request, sid string, err error) bool {
	if !errors.Is(err, cms.ErrUnauthorized) {
		return false
	}

	h.logger.Info("session token rejected by backend", zap.String("path", r.URL.Path))
	h.streams.Drop(sid)
	if clearErr := h.sessions.Clear(w, r); clearErr != nil {
		h.logger.Warn("clearing session failed", zap.Error(clearErr))
	}

	http.Redirect(w, r, authgate.Intent{TargetPath: r.URL.Path}.LoginURL(), http.StatusFound)
	return true
}

func (h *Handler) articleError(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer, err error) {
	switch {
	case errors.Is(err, articles.ErrNotFound):
		http.Redirect(w, r, "/", http.StatusFound)
	case h.redirectExpired(w, r, h.sessions.ID(w, r), err):
	default:
		h.serverError(w, r, loc, err)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer) {
	view := errorView{
		Page:    newPage(loc.T("error.server"), r.URL.Path, session.State{}, loc, h.theme(r)),
		Message: loc.T("error.server"),
	}
	h.render(w, http.StatusBadRequest, "error", view)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer, err error) {
	h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	view := errorView{
		Page:    newPage(loc.T("error.server"), r.URL.Path, h.sessions.Probe(r), loc, h.theme(r)),
		Message: loc.T("error.server"),
	}
	h.render(w, http.StatusInternalServerError, "error", view)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	if err := h.views.render(w, status, name, data); err != nil {
		h.logger.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
