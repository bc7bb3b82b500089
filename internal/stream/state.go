package stream

import "sync"

// State accumulates one logical list for a single active filter. Each
// browsing session owns its own State per stream; the mutex only
// serializes requests racing within that session.
type State[T any, K comparable] struct {
	mu       sync.Mutex
	key      func(T) K
	filter   string
	page     int
	items    []T
	info     PageInfo
	inFlight bool
}

// Snapshot is a point-in-time copy of a stream's accumulated data.
type Snapshot[T any] struct {
	Items  []T
	Info   PageInfo
	Page   int
	Filter string
}

func NewState[T any, K comparable](key func(T) K) *State[T, K] {
	return &State[T, K]{key: key, page: 1}
}

// Reset drops everything accumulated and rebinds the stream to a
// filter, as happens when its defining filter changes or the view that
// owns it is torn down.
func (s *State[T, K]) Reset(filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(filter)
}

func (s *State[T, K]) reset(filter string) {
	s.filter = filter
	s.page = 1
	s.items = nil
	s.info = PageInfo{}
}

// Begin claims the right to fetch one page for the given filter and
// requested page. It returns the page that must actually be fetched and
// whether to fetch at all: false while another fetch for this stream is
// unfinished, when the requested page is already accumulated, or when
// the stream is exhausted. A filter change or a request for page 1
// resets the stream before the fetch. Callers that get true must call
// Finish or Fail exactly once.
func (s *State[T, K]) Begin(filter string, requested int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return 0, false
	}

	if filter != s.filter || requested <= 1 {
		s.reset(filter)
		s.inFlight = true
		return 1, true
	}

	if requested <= s.page || !HasMore(s.info) {
		return 0, false
	}

	next := Advance(s.page, true, false)
	s.inFlight = true
	return next, true
}

// Finish applies a resolved fetch. A response tagged with a filter that
// is no longer the stream's active filter is stale and discarded; the
// response arrived after the user already moved on.
func (s *State[T, K]) Finish(filter string, page int, fetched []T, info PageInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	if filter != s.filter {
		return false
	}

	s.items = AppendPage(page, fetched, s.items, s.key)
	s.info = info
	s.page = page
	return true
}

// Fail releases the in-flight claim after a failed fetch. Accumulated
// items stay untouched: a failed load-more never clears what the user
// already sees.
func (s *State[T, K]) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// HasMore reports whether another page remains for the active filter.
func (s *State[T, K]) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HasMore(s.info)
}

func (s *State[T, K]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]T, len(s.items))
	copy(items, s.items)
	return Snapshot[T]{Items: items, Info: s.info, Page: s.page, Filter: s.filter}
}
