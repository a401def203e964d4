package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search"
)

func TestSearch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"query":"AI Technology","results":[
			{"title":"OpenAI ships","url":"https://news.example/1","content":"snippet","raw_content":"full body","score":0.9,"published_date":"2026-10-18"},
			{"title":"No body","url":"https://news.example/2","content":"s2","raw_content":null}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("tvly-key").WithBaseURL(srv.URL)
	resp, err := c.Search(context.Background(), &search.Request{
		Query: "AI Technology", Topic: "news", IncludeRawContent: true, StartDate: "2026-10-12",
	})
	require.NoError(t, err)

	assert.Equal(t, "AI Technology", got["query"])
	assert.Equal(t, "news", got["topic"])
	assert.Equal(t, "basic", got["search_depth"])
	assert.EqualValues(t, 5, got["max_results"])
	assert.Equal(t, true, got["include_raw_content"])
	assert.Equal(t, "2026-10-12", got["start_date"])
	assert.NotContains(t, got, "end_date")

	require.Len(t, resp.Results, 2)
	assert.Equal(t, search.Result{
		Title: "OpenAI ships", URL: "https://news.example/1", Content: "snippet",
		RawContent: "full body", PublishedDate: "2026-10-18",
	}, resp.Results[0])
	assert.Empty(t, resp.Results[1].RawContent)
}

func TestSearchDefaultsTopic(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	resp, err := NewClient("k").WithBaseURL(srv.URL).Search(context.Background(), &search.Request{Query: "q", MaxResults: 16})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, "general", got["topic"])
	assert.EqualValues(t, 16, got["max_results"])
	assert.NotContains(t, got, "include_raw_content")
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient("x").WithBaseURL(srv.URL).Search(context.Background(), &search.Request{Query: "q"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "status 401")
}
