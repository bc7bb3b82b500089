package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StatesAreIsolatedPerOwner(t *testing.T) {
	store := NewStore(itemKey)

	a := store.Get("session-a")
	page, _ := a.Begin("beach", 1)
	a.Finish("beach", page, []item{{id: 1}}, PageInfo{Page: 1, PageSize: 1, PageCount: 1, Total: 1})

	b := store.Get("session-b")
	assert.Empty(t, b.Snapshot().Items)
	assert.Equal(t, []int{1}, ids(store.Get("session-a").Snapshot().Items))
}

func TestStore_DropDiscardsState(t *testing.T) {
	store := NewStore(itemKey)
	st := store.Get("session-a")
	page, _ := st.Begin("", 1)
	st.Finish("", page, []item{{id: 1}}, PageInfo{Page: 1, PageSize: 1, PageCount: 1, Total: 1})

	store.Drop("session-a")

	assert.Empty(t, store.Get("session-a").Snapshot().Items)
}

func TestStore_PrunesIdleOwners(t *testing.T) {
	store := NewStore(itemKey)
	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	store.Get("stale")
	require.Equal(t, 1, store.Len())

	current = current.Add(defaultMaxIdle + time.Minute)
	store.Get("fresh")

	assert.Equal(t, 1, store.Len())
}
