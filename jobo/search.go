package jobo

import (
	"context"
	"iter"
	"net/url"

	"github.com/jobo-ai/jobo-go/pager"
)

// DefaultPageSize is the search page size used when a request leaves it unset
const DefaultPageSize = 25

// SearchClient accesses job search (GET /api/jobs and POST /api/jobs/search)
type SearchClient struct {
	client *Client
}

// Search runs a simple query-string search
func (s *SearchClient) Search(ctx context.Context, params SearchParams) (*JobSearchResponse, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}

	q := query(url.Values{})
	q.setString("q", params.Query)
	q.setString("location", params.Location)
	q.setString("sources", params.Sources)
	q.setBool("remote", params.Remote)
	q.setTime("posted_after", params.PostedAfter)
	q.setInt("page", params.Page)
	q.setInt("page_size", params.PageSize)

	var resp JobSearchResponse
	if err := s.client.get(ctx, "/api/jobs", url.Values(q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchAdvanced runs a body-based search
func (s *SearchClient) SearchAdvanced(ctx context.Context, req JobSearchRequest) (*JobSearchResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = DefaultPageSize
	}

	var resp JobSearchResponse
	if err := s.client.post(ctx, "/api/jobs/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enumerate yields every result of an advanced search. Pages are requested
// from 1 regardless of req.Page until the last page has been read.
func (s *SearchClient) Enumerate(ctx context.Context, req JobSearchRequest) iter.Seq2[Job, error] {
	return pager.Pages(ctx, func(ctx context.Context, page int) (pager.PagedResult[Job], error) {
		r := req
		r.Page = page
		resp, err := s.SearchAdvanced(ctx, r)
		if err != nil {
			return pager.PagedResult[Job]{}, err
		}
		return resp.PagedResult(), nil
	})
}
