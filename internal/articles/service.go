// Package articles is the domain service between the web layer and the
// remote CMS: it shapes wire documents into view-facing types and keeps
// every CMS call behind one interface.
package articles

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"travelog/internal/cms"
	md "travelog/internal/markdown"
	"travelog/internal/stream"
)

var ErrNotFound = errors.New("not found")

const (
	excerptLength   = 160
	defaultPageSize = 10
	commentSort     = "createdAt:desc"
)

// Backend is the slice of the CMS client this service consumes; tests
// substitute a fake.
type Backend interface {
	ListArticles(ctx context.Context, token string, q cms.ListQuery) (cms.List[cms.ArticleDoc], error)
	GetArticle(ctx context.Context, token string, documentID string, q cms.ListQuery) (cms.ArticleDoc, error)
	CreateArticle(ctx context.Context, token string, input cms.ArticleInput) (cms.ArticleDoc, error)
	UpdateArticle(ctx context.Context, token string, documentID string, input cms.ArticleInput) (cms.ArticleDoc, error)
	DeleteArticle(ctx context.Context, token string, documentID string) error
	ListCategories(ctx context.Context, token string) ([]cms.CategoryDoc, error)
	ListComments(ctx context.Context, token string, q cms.ListQuery) (cms.List[cms.CommentDoc], error)
	GetComment(ctx context.Context, token string, documentID string, q cms.ListQuery) (cms.CommentDoc, error)
	CreateComment(ctx context.Context, token string, input cms.CommentInput) (cms.CommentDoc, error)
	UpdateComment(ctx context.Context, token string, documentID string, content string) (cms.CommentDoc, error)
	DeleteComment(ctx context.Context, token string, documentID string) error
	Login(ctx context.Context, identifier string, password string) (cms.AuthResponse, error)
	Register(ctx context.Context, email string, username string, password string) (cms.AuthResponse, error)
}

type Service struct {
	backend Backend
	rootURL string
}

func NewService(backend Backend, rootURL string) *Service {
	return &Service{
		backend: backend,
		rootURL: strings.TrimSpace(rootURL),
	}
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Category struct {
	ID          int
	DocumentID  string
	Name        string
	Description string
}

type Comment struct {
	ID         int
	DocumentID string
	Content    string
	CreatedAt  string
	ArticleID  string // documentId of the article, when populated
	Author     *User
}

type Summary struct {
	ID            int
	DocumentID    string
	Title         string
	Excerpt       string
	CoverImageURL string
	PublishedAt   string
	Author        *User
	Category      *Category
}

type Article struct {
	ID              int
	DocumentID      string
	Title           string
	Description     string
	DescriptionHTML template.HTML
	CoverImageURL   string
	PublishedAt     string
	Author          *User
	Category        *Category
	Comments        []Comment // loaded separately via CommentsForArticle
}

// AuthorID is the id of the identity that owns the article, zero when
// the relation was not populated.
func (a *Article) AuthorID() int {
	if a == nil || a.Author == nil {
		return 0
	}
	return a.Author.ID
}

func (c Comment) AuthorID() int {
	if c.Author == nil {
		return 0
	}
	return c.Author.ID
}

// Draft carries the user-authored fields of an article create/update.
type Draft struct {
	Title              string
	Description        string
	CoverImageURL      string
	CategoryDocumentID string
}

type ListOptions struct {
	Page     int
	PageSize int
	Category string // category name filter, empty for all
	Title    string // title substring filter
	Sort     string
}

func (s *Service) List(ctx context.Context, token string, opts ListOptions) ([]Summary, stream.PageInfo, error) {
	q := cms.ListQuery{
		Page:             sanitizePage(opts.Page),
		PageSize:         opts.PageSize,
		Sort:             opts.Sort,
		Title:            opts.Title,
		CategoryName:     opts.Category,
		PopulateUser:     true,
		PopulateCategory: true,
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}

	list, err := s.backend.ListArticles(ctx, token, q)
	if err != nil {
		return nil, stream.PageInfo{}, err
	}

	items := make([]Summary, 0, len(list.Data))
	for _, doc := range list.Data {
		items = append(items, mapSummary(doc))
	}

	return items, pageInfo(list.Meta), nil
}

func (s *Service) Get(ctx context.Context, token string, documentID string) (*Article, error) {
	doc, err := s.backend.GetArticle(ctx, token, documentID, cms.ListQuery{
		PopulateUser:     true,
		PopulateCategory: true,
	})
	if err != nil {
		return nil, translateNotFound(err)
	}

	article := s.mapArticle(doc)
	return &article, nil
}

func (s *Service) Create(ctx context.Context, token string, draft Draft) (*Article, error) {
	doc, err := s.backend.CreateArticle(ctx, token, draftInput(draft))
	if err != nil {
		return nil, err
	}

	article := s.mapArticle(doc)
	return &article, nil
}

func (s *Service) Update(ctx context.Context, token string, documentID string, draft Draft) (*Article, error) {
	doc, err := s.backend.UpdateArticle(ctx, token, documentID, draftInput(draft))
	if err != nil {
		return nil, translateNotFound(err)
	}

	article := s.mapArticle(doc)
	return &article, nil
}

func (s *Service) Delete(ctx context.Context, token string, documentID string) error {
	return translateNotFound(s.backend.DeleteArticle(ctx, token, documentID))
}

func (s *Service) Categories(ctx context.Context, token string) ([]Category, error) {
	docs, err := s.backend.ListCategories(ctx, token)
	if err != nil {
		return nil, err
	}

	out := make([]Category, 0, len(docs))
	for _, doc := range docs {
		out = append(out, mapCategory(doc))
	}
	return out, nil
}

// RecentComments is the landing page's site-wide comment stream,
// newest first.
func (s *Service) RecentComments(ctx context.Context, token string, page int, pageSize int) ([]Comment, stream.PageInfo, error) {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	list, err := s.backend.ListComments(ctx, token, cms.ListQuery{
		Page:         sanitizePage(page),
		PageSize:     pageSize,
		Sort:         commentSort,
		PopulateUser: true,
	})
	if err != nil {
		return nil, stream.PageInfo{}, err
	}

	out := make([]Comment, 0, len(list.Data))
	for _, doc := range list.Data {
		out = append(out, mapComment(doc))
	}

	return out, pageInfo(list.Meta), nil
}

// CommentsForArticle pages through the comments attached to one
// article, newest first.
func (s *Service) CommentsForArticle(ctx context.Context, token string, articleDocumentID string, page int, pageSize int) ([]Comment, stream.PageInfo, error) {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	list, err := s.backend.ListComments(ctx, token, cms.ListQuery{
		Page:              sanitizePage(page),
		PageSize:          pageSize,
		Sort:              commentSort,
		ArticleDocumentID: articleDocumentID,
		PopulateUser:      true,
	})
	if err != nil {
		return nil, stream.PageInfo{}, err
	}

	out := make([]Comment, 0, len(list.Data))
	for _, doc := range list.Data {
		out = append(out, mapComment(doc))
	}

	return out, pageInfo(list.Meta), nil
}

func (s *Service) GetComment(ctx context.Context, token string, documentID string) (Comment, error) {
	doc, err := s.backend.GetComment(ctx, token, documentID, cms.ListQuery{
		PopulateUser:    true,
		PopulateArticle: true,
	})
	if err != nil {
		return Comment{}, translateNotFound(err)
	}
	return mapComment(doc), nil
}

func (s *Service) AddComment(ctx context.Context, token string, articleID int, content string) (Comment, error) {
	doc, err := s.backend.CreateComment(ctx, token, cms.CommentInput{
		Content: content,
		Article: articleID,
	})
	if err != nil {
		return Comment{}, err
	}
	return mapComment(doc), nil
}

func (s *Service) EditComment(ctx context.Context, token string, documentID string, content string) error {
	_, err := s.backend.UpdateComment(ctx, token, documentID, content)
	return translateNotFound(err)
}

func (s *Service) RemoveComment(ctx context.Context, token string, documentID string) error {
	return translateNotFound(s.backend.DeleteComment(ctx, token, documentID))
}

func (s *Service) Login(ctx context.Context, identifier string, password string) (string, User, error) {
	auth, err := s.backend.Login(ctx, identifier, password)
	if err != nil {
		return "", User{}, err
	}
	return auth.JWT, mapUserValue(auth.User), nil
}

func (s *Service) Register(ctx context.Context, email string, username string, password string) (string, User, error) {
	auth, err := s.backend.Register(ctx, email, username, password)
	if err != nil {
		return "", User{}, err
	}
	return auth.JWT, mapUserValue(auth.User), nil
}

func draftInput(draft Draft) cms.ArticleInput {
	return cms.ArticleInput{
		Title:         strings.TrimSpace(draft.Title),
		Description:   draft.Description,
		CoverImageURL: strings.TrimSpace(draft.CoverImageURL),
		Category:      strings.TrimSpace(draft.CategoryDocumentID),
	}
}

func mapSummary(doc cms.ArticleDoc) Summary {
	return Summary{
		ID:            doc.ID,
		DocumentID:    doc.DocumentID,
		Title:         strings.TrimSpace(doc.Title),
		Excerpt:       md.Excerpt(doc.Description, excerptLength),
		CoverImageURL: strings.TrimSpace(doc.CoverImageURL),
		PublishedAt:   formatDate(doc.PublishedAt),
		Author:        mapUser(doc.User),
		Category:      mapCategoryPtr(doc.Category),
	}
}

func (s *Service) mapArticle(doc cms.ArticleDoc) Article {
	return Article{
		ID:              doc.ID,
		DocumentID:      doc.DocumentID,
		Title:           strings.TrimSpace(doc.Title),
		Description:     doc.Description,
		DescriptionHTML: md.ToHTML(doc.Description, md.Options{RootURL: s.rootURL}),
		CoverImageURL:   strings.TrimSpace(doc.CoverImageURL),
		PublishedAt:     formatDate(doc.PublishedAt),
		Author:          mapUser(doc.User),
		Category:        mapCategoryPtr(doc.Category),
	}
}

func mapComment(doc cms.CommentDoc) Comment {
	articleID := ""
	if doc.Article != nil {
		articleID = doc.Article.DocumentID
	}

	return Comment{
		ID:         doc.ID,
		DocumentID: doc.DocumentID,
		Content:    doc.Content,
		CreatedAt:  formatDate(doc.CreatedAt),
		ArticleID:  articleID,
		Author:     mapUser(doc.User),
	}
}

func mapCategory(doc cms.CategoryDoc) Category {
	return Category{
		ID:          doc.ID,
		DocumentID:  doc.DocumentID,
		Name:        strings.TrimSpace(doc.Name),
		Description: strings.TrimSpace(doc.Description),
	}
}

func mapCategoryPtr(doc *cms.CategoryDoc) *Category {
	if doc == nil {
		return nil
	}
	mapped := mapCategory(*doc)
	return &mapped
}

func mapUser(doc *cms.UserDoc) *User {
	if doc == nil {
		return nil
	}
	mapped := mapUserValue(*doc)
	return &mapped
}

func mapUserValue(doc cms.UserDoc) User {
	return User{
		ID:       doc.ID,
		Username: strings.TrimSpace(doc.Username),
		Email:    strings.TrimSpace(doc.Email),
	}
}

// pageInfo normalizes the CMS pagination block. A missing block stays a
// zero PageInfo so callers can tell "no metadata yet" from page one.
func pageInfo(meta cms.Meta) stream.PageInfo {
	if meta.Pagination == nil {
		return stream.PageInfo{}
	}

	info := stream.PageInfo{
		Page:      meta.Pagination.Page,
		PageSize:  meta.Pagination.PageSize,
		PageCount: meta.Pagination.PageCount,
		Total:     meta.Pagination.Total,
	}
	if info.Page < 1 {
		info.Page = 1
	}
	if info.PageCount < 1 {
		info.PageCount = 1
	}
	return info
}

func translateNotFound(err error) error {
	if errors.Is(err, cms.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func formatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}

	return parsed.Format("Jan 2, 2006")
}

func sanitizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
