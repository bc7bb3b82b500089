// Package stream maintains growing, de-duplicated lists across
// sequential page fetches from the content API. The merge rules live in
// pure functions; State wraps them with the single-flight and
// stale-response bookkeeping one browsing session needs per list.
package stream

// PageInfo is the pagination block the CMS attaches to every list
// response. A zero PageInfo means no fetch has completed yet.
type PageInfo struct {
	Page      int
	PageSize  int
	PageCount int
	Total     int
}

// Absent reports whether pagination metadata has been seen at all.
func (p PageInfo) Absent() bool {
	return p == PageInfo{}
}

// AppendPage merges one fetched page into the accumulated list.
//
// A request for page 1 replaces the list with the fetched items, which
// covers both the first load and a filter reset without a separate
// reset call at the call site. Later pages append only items whose key
// has not been seen before, preserving fetch order among the new items,
// so overlapping page boundaries and retried fetches never duplicate an
// entry. Neither input slice is mutated.
func AppendPage[T any, K comparable](requested int, fetched []T, current []T, key func(T) K) []T {
	if requested <= 1 {
		out := make([]T, len(fetched))
		copy(out, fetched)
		return out
	}

	seen := make(map[K]struct{}, len(current))
	for _, item := range current {
		seen[key(item)] = struct{}{}
	}

	out := make([]T, len(current), len(current)+len(fetched))
	copy(out, current)
	for _, item := range fetched {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}

	return out
}

// HasMore reports whether pages remain after the one described by info.
// Absent metadata means nothing has loaded yet, so there is nothing
// more to request either.
func HasMore(info PageInfo) bool {
	return info.Page < info.PageCount
}

// Advance returns the next page to request. While a fetch is in flight,
// or when the stream is exhausted, the current page comes back
// unchanged: a load-more in that window is ignored, never queued.
func Advance(current int, hasMore bool, inFlight bool) int {
	if hasMore && !inFlight {
		return current + 1
	}
	return current
}
