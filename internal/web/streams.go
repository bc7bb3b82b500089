package web

import (
	"travelog/internal/articles"
	"travelog/internal/stream"
)

// streamSet holds the landing page's two accumulating lists, keyed by
// browsing session.
type streamSet struct {
	articles *stream.Store[articles.Summary, int]
	comments *stream.Store[articles.Comment, int]
}

func newStreamSet() *streamSet {
	return &streamSet{
		articles: stream.NewStore(func(s articles.Summary) int { return s.ID }),
		comments: stream.NewStore(func(c articles.Comment) int { return c.ID }),
	}
}

// Drop discards everything accumulated for one browsing session, used
// on logout and when the backend rejects the session's token.
func (s *streamSet) Drop(owner string) {
	s.articles.Drop(owner)
	s.comments.Drop(owner)
}
