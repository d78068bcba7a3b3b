package catalogclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// pagerServer отдаёт три страницы по два и одному элементу,
// считая обращения.
func pagerServer(t *testing.T, calls *int64) *httptest.Server {
	t.Helper()
	pages := map[int]Page{
		0: {
			Items:      []Item{{ID: 1, Name: "Portrait Diffuser"}, {ID: 2, Name: "Anime Sketcher"}},
			NextCursor: intPtr(2),
		},
		2: {
			Items:      []Item{{ID: 3, Name: "Prompt Studio"}, {ID: 4, Name: "Batch Upscaler"}},
			NextCursor: intPtr(4),
			PrevCursor: intPtr(0),
		},
		4: {
			Items:      []Item{{ID: 5, Name: "Style Mixer"}},
			PrevCursor: intPtr(2),
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		cursor, _ := strconv.Atoi(r.URL.Query().Get("cursor"))
		page, ok := pages[cursor]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"status":"Error","error":"unknown cursor"}`))
			return
		}
		pageResponse(t, w, page)
	}))
}

func itemIDs(items []Item) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPager_NextFlattensPages(t *testing.T) {
	var calls int64
	srv := pagerServer(t, &calls)
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	pager := NewPager(client, EndpointModels)
	ctx := context.Background()

	assert.Equal(t, StatusIdle, pager.Status())
	assert.Empty(t, pager.Items())

	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, StatusSuccess, pager.Status())
	assert.Equal(t, []int{1, 2}, itemIDs(pager.Items()))

	require.NoError(t, pager.Next(ctx))
	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, itemIDs(pager.Items()))

	// Последняя страница без nextCursor: ещё один Next ничего не делает.
	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, itemIDs(pager.Items()))
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestPager_PrevFromEmptyFetchesFirstPage(t *testing.T) {
	var calls int64
	srv := pagerServer(t, &calls)
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	pager := NewPager(client, EndpointModels)
	require.NoError(t, pager.Prev(context.Background()))
	assert.Equal(t, []int{1, 2}, itemIDs(pager.Items()))

	// Первая страница без prevCursor: Prev ничего не делает.
	require.NoError(t, pager.Prev(context.Background()))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestPager_ItemsSkipsNilPages(t *testing.T) {
	pager := NewPager(nil, EndpointModels)
	pager.pages = []*Page{
		{Items: []Item{{ID: 1}, {ID: 2}}},
		nil,
		{Items: []Item{{ID: 3}}},
	}
	pager.dirty = true

	assert.Equal(t, []int{1, 2, 3}, itemIDs(pager.Items()))
}

func TestPager_ItemsSnapshotIsCached(t *testing.T) {
	pager := NewPager(nil, EndpointModels)
	pager.pages = []*Page{{Items: []Item{{ID: 1}}}}
	pager.dirty = true

	first := pager.Items()
	second := pager.Items()
	assert.Same(t, &first[0], &second[0], "snapshot should not be rebuilt without new pages")
}

func TestPager_SetFilterResetsPages(t *testing.T) {
	var calls int64
	srv := pagerServer(t, &calls)
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	pager := NewPager(client, EndpointModels)
	ctx := context.Background()
	require.NoError(t, pager.Next(ctx))
	require.NotEmpty(t, pager.Items())

	pager.SetFilter(url.Values{"sort": {"Newest"}})
	assert.Equal(t, StatusIdle, pager.Status())
	assert.Empty(t, pager.Items())

	// Пагинация начинается заново с первой страницы.
	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, []int{1, 2}, itemIDs(pager.Items()))
}

func TestPager_KeepPreviousHoldsItemsUntilNextFetch(t *testing.T) {
	var calls int64
	srv := pagerServer(t, &calls)
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	pager := NewPager(client, EndpointModels, WithKeepPrevious())
	ctx := context.Background()
	require.NoError(t, pager.Next(ctx))
	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, []int{1, 2, 3, 4}, itemIDs(pager.Items()))

	pager.SetFilter(url.Values{"sort": {"Newest"}})
	// Прежний снимок остаётся видимым до успешной загрузки.
	assert.Equal(t, []int{1, 2, 3, 4}, itemIDs(pager.Items()))

	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, []int{1, 2}, itemIDs(pager.Items()))
}

func TestPager_DisabledIsNoop(t *testing.T) {
	var calls int64
	srv := pagerServer(t, &calls)
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	pager := NewPager(client, EndpointModels, WithDisabled())
	ctx := context.Background()

	require.NoError(t, pager.Next(ctx))
	require.NoError(t, pager.Prev(ctx))
	assert.Empty(t, pager.Items())
	assert.Equal(t, StatusIdle, pager.Status())
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))

	pager.SetEnabled(true)
	require.NoError(t, pager.Next(ctx))
	assert.Equal(t, []int{1, 2}, itemIDs(pager.Items()))
}

func TestPager_ErrorSurfacesWithoutRetry(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"Error","error":"could not list catalog items"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	pager := NewPager(client, EndpointApps)
	err = pager.Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusError, pager.Status())
	assert.Equal(t, err, pager.Err())
	assert.Empty(t, pager.Items())
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}
