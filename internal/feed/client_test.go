package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VanThanhHoang/server-game/internal/domain"
)

func testConfig() domain.FeedConfig {
	cfg := domain.DefaultFeedConfig()
	cfg.VideoID = "123456"
	cfg.AccessToken = "token-abc"
	return cfg
}

func TestFetchPageBuildsRequest(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	_, err := client.FetchPage(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, "/v19.0/123456/comments", gotPath)
	assert.Equal(t, "token-abc", gotQuery["access_token"][0])
	assert.Equal(t, "20", gotQuery["limit"][0])
	assert.Equal(t, "toplevel", gotQuery["filter"][0])
	assert.Equal(t, "filter_low_quality", gotQuery["live_filter"][0])
	assert.Equal(t, "reverse_chronological", gotQuery["order"][0])
	assert.Equal(t, "id,message,from{id,name,picture},created_time", gotQuery["fields"][0])
	assert.NotContains(t, gotQuery, "since", "empty since must be omitted")
}

func TestFetchPageNormalizesComments(t *testing.T) {
	body := `{
		"data": [
			{
				"id": "c1",
				"message": "hello",
				"from": {"id": "u1", "name": "Alice", "picture": {"data": {"url": "https://cdn/a.png"}}},
				"created_time": "2024-05-01T10:00:00+0000"
			},
			{"id": "c2", "message": "no author"}
		],
		"paging": {"next": "https://next.page/cursor"}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	page, err := client.FetchPage(context.Background(), testConfig())
	require.NoError(t, err)

	require.Len(t, page.Comments, 2)
	c := page.Comments[0]
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "Alice", c.Author.Name)
	assert.Equal(t, "https://cdn/a.png", c.Author.Avatar)
	assert.Equal(t, "facebook", c.Platform.Name)
	assert.Equal(t, "hello", c.Text)
	assert.Equal(t, int64(1714557600000), c.Timestamp)
	assert.False(t, c.IsPlayerComment)

	assert.Equal(t, int64(0), page.Comments[1].Timestamp, "missing created_time falls back to zero")
	assert.Equal(t, "https://next.page/cursor", page.Next)
}

func TestFetchPageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid OAuth access token"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	_, err := client.FetchPage(context.Background(), testConfig())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid OAuth access token", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "400")
}

func TestFetchPageAPIErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	_, err := client.FetchPage(context.Background(), testConfig())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unknown error", apiErr.Message)
}

func TestFetchPageTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, clockwork.NewRealClock())
	_, err := client.FetchPage(context.Background(), testConfig())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}

func TestFetchAllFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page2":
			_, _ = w.Write([]byte(`{"data": [{"id": "c3"}]}`))
		default:
			_, _ = w.Write([]byte(`{"data": [{"id": "c1"}, {"id": "c2"}], "paging": {"next": "` + server.URL + `/page2"}}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	all, err := client.FetchAll(context.Background(), testConfig(), 5)
	require.NoError(t, err)

	require.Len(t, all, 3)
	assert.Equal(t, "c3", all[2].ID)
}

func TestFetchAllHonorsPageBudget(t *testing.T) {
	var requests int
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"data": [{"id": "c"}], "paging": {"next": "` + server.URL + `/more"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	all, err := client.FetchAll(context.Background(), testConfig(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	assert.Len(t, all, 2)
}

func TestFetchAllReturnsPartialResultOnMidPaginationError(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": "c1"}], "paging": {"next": "` + server.URL + `/page2"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, clockwork.NewRealClock())
	all, err := client.FetchAll(context.Background(), testConfig(), 5)

	require.Error(t, err)
	assert.Len(t, all, 1, "comments fetched before the failure are kept")
}
