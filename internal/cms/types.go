package cms

// Wire types for the Strapi v4 content API. Every list response is
// wrapped in {data, meta.pagination}; single items in {data}.

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

type List[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

type Item[T any] struct {
	Data T `json:"data"`
}

type UserDoc struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Confirmed  bool   `json:"confirmed"`
	Blocked    bool   `json:"blocked"`
}

type CategoryDoc struct {
	ID          int    `json:"id"`
	DocumentID  string `json:"documentId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CommentDoc struct {
	ID          int         `json:"id"`
	DocumentID  string      `json:"documentId"`
	Content     string      `json:"content"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
	PublishedAt string      `json:"publishedAt"`
	User        *UserDoc    `json:"user,omitempty"`
	Article     *ArticleDoc `json:"article,omitempty"`
}

type ArticleDoc struct {
	ID            int          `json:"id"`
	DocumentID    string       `json:"documentId"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	CoverImageURL string       `json:"cover_image_url"`
	CreatedAt     string       `json:"createdAt"`
	UpdatedAt     string       `json:"updatedAt"`
	PublishedAt   string       `json:"publishedAt"`
	User          *UserDoc     `json:"user,omitempty"`
	Category      *CategoryDoc `json:"category,omitempty"`
}

type AuthResponse struct {
	JWT  string  `json:"jwt"`
	User UserDoc `json:"user"`
}

// ArticleInput is the payload for creating or updating an article.
// Category carries the category documentId relation, empty for none.
type ArticleInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CoverImageURL string `json:"cover_image_url"`
	Category      string `json:"category,omitempty"`
}

// CommentInput relates a new comment to its article by numeric id.
type CommentInput struct {
	Content string `json:"content"`
	Article int    `json:"article,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}
