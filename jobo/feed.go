package jobo

import (
	"context"
	"iter"
	"net/url"

	"github.com/google/uuid"

	"github.com/jobo-ai/jobo-go/pager"
)

// DefaultBatchSize is the feed batch size used when a request leaves it unset
const DefaultBatchSize = 1000

// FeedClient accesses the bulk job feed (POST /api/feed/jobs and
// GET /api/feed/jobs/expired)
type FeedClient struct {
	client *Client
}

// GetJobs fetches a single batch of jobs from the feed
func (f *FeedClient) GetJobs(ctx context.Context, req JobFeedRequest) (*JobFeedResponse, error) {
	if req.BatchSize <= 0 {
		req.BatchSize = DefaultBatchSize
	}

	var resp JobFeedResponse
	if err := f.client.post(ctx, "/api/feed/jobs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnumerateJobs yields every job of the feed, following cursors until the
// server reports no more data. Enumeration starts at req.Cursor, which is
// empty for the beginning of the feed.
func (f *FeedClient) EnumerateJobs(ctx context.Context, req JobFeedRequest) iter.Seq2[Job, error] {
	return pager.CursorFrom(ctx, req.Cursor, func(ctx context.Context, cursor string) (pager.CursorPage[Job], error) {
		page := req
		page.Cursor = cursor
		resp, err := f.GetJobs(ctx, page)
		if err != nil {
			return pager.CursorPage[Job]{}, err
		}
		return resp.CursorPage(), nil
	})
}

// GetExpiredJobIDs fetches a single batch of ids of jobs that expired since
// req.ExpiredSince
func (f *FeedClient) GetExpiredJobIDs(ctx context.Context, req ExpiredJobIDsRequest) (*ExpiredJobIDsResponse, error) {
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	params := query(url.Values{})
	params.setString("expired_since", formatTime(req.ExpiredSince))
	params.setInt("batch_size", batchSize)
	params.setString("cursor", req.Cursor)

	var resp ExpiredJobIDsResponse
	if err := f.client.get(ctx, "/api/feed/jobs/expired", url.Values(params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnumerateExpiredJobIDs yields every expired job id since req.ExpiredSince,
// starting at req.Cursor
func (f *FeedClient) EnumerateExpiredJobIDs(ctx context.Context, req ExpiredJobIDsRequest) iter.Seq2[uuid.UUID, error] {
	return pager.CursorFrom(ctx, req.Cursor, func(ctx context.Context, cursor string) (pager.CursorPage[uuid.UUID], error) {
		page := req
		page.Cursor = cursor
		resp, err := f.GetExpiredJobIDs(ctx, page)
		if err != nil {
			return pager.CursorPage[uuid.UUID]{}, err
		}
		return resp.CursorPage(), nil
	})
}
