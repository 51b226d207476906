package jobo

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQueryParameters(t *testing.T) {
	remote := true
	postedAfter := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params SearchParams
		want   map[string]string
		absent []string
	}{
		{
			name:   "defaults",
			params: SearchParams{Query: "golang"},
			want:   map[string]string{"q": "golang", "page": "1", "page_size": "25"},
			absent: []string{"location", "sources", "remote", "posted_after"},
		},
		{
			name: "all set",
			params: SearchParams{
				Query:       "data engineer",
				Location:    "Berlin",
				Sources:     "greenhouse,lever",
				Remote:      &remote,
				PostedAfter: &postedAfter,
				Page:        3,
				PageSize:    50,
			},
			want: map[string]string{
				"q":            "data engineer",
				"location":     "Berlin",
				"sources":      "greenhouse,lever",
				"remote":       "true",
				"posted_after": "2025-01-01T00:00:00Z",
				"page":         "3",
				"page_size":    "50",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/jobs", r.URL.Path)
				q := r.URL.Query()
				for key, value := range tt.want {
					assert.Equal(t, value, q.Get(key), key)
				}
				for _, key := range tt.absent {
					assert.False(t, q.Has(key), key)
				}
				writeJSON(t, w, map[string]any{"jobs": []any{}, "total": 0, "page": 1, "page_size": 25, "total_pages": 0})
			})

			_, err := client.Search.Search(context.Background(), tt.params)
			require.NoError(t, err)
		})
	}
}

func TestSearchAdvanced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs/search", r.URL.Path)

		body := readJSON(t, r)
		assert.Equal(t, []any{"golang", "rust"}, body["queries"])
		assert.EqualValues(t, 1, body["page"])
		assert.EqualValues(t, 25, body["page_size"])
		assert.NotContains(t, body, "is_remote")

		writeJSON(t, w, map[string]any{
			"jobs":        []any{testJob("Backend")},
			"total":       120,
			"page":        1,
			"page_size":   25,
			"total_pages": 5,
		})
	})

	resp, err := client.Search.SearchAdvanced(context.Background(), JobSearchRequest{Queries: []string{"golang", "rust"}})
	require.NoError(t, err)
	assert.EqualValues(t, 120, resp.Total)
	assert.Equal(t, 5, resp.TotalPages)
	require.Len(t, resp.Jobs, 1)
	assert.True(t, resp.PagedResult().HasMorePages())
}

func TestSearchEnumerateWalksAllPages(t *testing.T) {
	var pages []float64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		page := body["page"].(float64)
		pages = append(pages, page)

		writeJSON(t, w, map[string]any{
			"jobs":        []any{testJob(fmt.Sprintf("job-%d", int(page)))},
			"total":       3,
			"page":        int(page),
			"page_size":   1,
			"total_pages": 3,
		})
	})

	var titles []string
	for job, err := range client.Search.Enumerate(context.Background(), JobSearchRequest{Page: 7, PageSize: 1}) {
		require.NoError(t, err)
		titles = append(titles, job.Title)
	}

	assert.Equal(t, []string{"job-1", "job-2", "job-3"}, titles)
	assert.Equal(t, []float64{1, 2, 3}, pages)
}

func TestSearchEnumerateEmpty(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(t, w, map[string]any{"jobs": []any{}, "total": 0, "page": 1, "page_size": 25, "total_pages": 0})
	})

	count := 0
	for _, err := range client.Search.Enumerate(context.Background(), JobSearchRequest{}) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)
	assert.Equal(t, 1, calls)
}

func TestSearchValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"page_size must be at most 100"}`))
	})

	_, err := client.Search.Search(context.Background(), SearchParams{PageSize: 1000})
	require.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "HTTP 400: page_size must be at most 100")
}
