package catalogclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageResponse(t *testing.T, w http.ResponseWriter, page Page) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"status": "OK",
		"data":   page,
	})
	require.NoError(t, err)
}

func TestListPage(t *testing.T) {
	var gotQuery string
	var gotAuth string
	next := 20
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, string(EndpointApps), r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		pageResponse(t, w, Page{
			Items:      []Item{{ID: 1, Name: "Prompt Studio", ItemType: "app"}},
			NextCursor: &next,
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithToken("test-token"))
	require.NoError(t, err)

	filter := map[string][]string{"sort": {"Most Used"}}
	page, err := client.ListPage(context.Background(), EndpointApps, filter, 0, 20)
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Prompt Studio", page.Items[0].Name)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, 20, *page.NextCursor)
	assert.Equal(t, "limit=20&sort=Most+Used", gotQuery)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestListPage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"Error","error":"could not list catalog items"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.ListPage(context.Background(), EndpointModels, nil, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not list catalog items")
}

func TestFilterSelection_CoalescesConcurrentReads(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"status":"OK","data":{"section":"models","selection":{"sort":"Newest"}}}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithToken("test-token"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			selection, err := client.FilterSelection(context.Background(), "models")
			assert.NoError(t, err)
			assert.Equal(t, map[string]string{"sort": "Newest"}, selection)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestListPage_BypassesCoalescing(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		<-release
		pageResponse(t, w, Page{Items: []Item{}})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ListPage(context.Background(), EndpointModels, nil, 0, 0)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestSaveFilterSelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/catalog/filters/apps", r.URL.Path)
		var selection map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&selection))
		assert.Equal(t, map[string]string{"sort": "Most Used"}, selection)
		_, _ = w.Write([]byte(`{"status":"OK","data":{"section":"apps"}}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithToken("test-token"))
	require.NoError(t, err)

	err = client.SaveFilterSelection(context.Background(), "apps", map[string]string{"sort": "Most Used"})
	require.NoError(t, err)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
