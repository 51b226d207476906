// Package pager turns paged and cursor-based HTTP listings into lazy,
// single-pass sequences.
//
// Both flavours share one loop: fetch a page with the current state, yield its
// items in server order, then either stop or advance the state and fetch again.
// At most one fetch is outstanding at a time, and a consumer that stops ranging
// (or a cancelled context) prevents any further fetch.
//
//	for job, err := range pager.Cursor(ctx, fetchFeedPage) {
//		if err != nil {
//			return err
//		}
//		process(job)
//	}
package pager

import (
	"context"
	"errors"
	"iter"
)

// ErrMissingCursor is yielded when a page reports more data but carries no
// cursor to fetch it with.
var ErrMissingCursor = errors.New("pager: page has more results but no next cursor")

// CursorPage is one batch of a cursor-paginated listing.
//
// NextCursor is opaque and only meaningful to the server. It is ignored when
// HasMore is false.
type CursorPage[T any] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// PagedResult is one page of a page-number paginated listing.
type PagedResult[T any] struct {
	Items      []T
	TotalItems int64
	Page       int
	PageSize   int
	TotalPages int
}

// HasMorePages reports whether pages follow this one.
func (r PagedResult[T]) HasMorePages() bool {
	return r.Page < r.TotalPages
}

// CursorFetcher fetches the page identified by cursor. The empty cursor
// requests the first page.
type CursorFetcher[T any] func(ctx context.Context, cursor string) (CursorPage[T], error)

// PageFetcher fetches the given 1-based page.
type PageFetcher[T any] func(ctx context.Context, page int) (PagedResult[T], error)

// step fetches the page addressed by state and returns its items, the state
// for the following fetch, and whether another fetch should happen.
type step[S, T any] func(ctx context.Context, state S) (items []T, next S, more bool, err error)

// Cursor enumerates a cursor-paginated listing starting from the first page.
func Cursor[T any](ctx context.Context, fetch CursorFetcher[T]) iter.Seq2[T, error] {
	return CursorFrom(ctx, "", fetch)
}

// CursorFrom enumerates a cursor-paginated listing starting at cursor.
func CursorFrom[T any](ctx context.Context, cursor string, fetch CursorFetcher[T]) iter.Seq2[T, error] {
	return paginate(ctx, cursor, func(ctx context.Context, cursor string) ([]T, string, bool, error) {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, "", false, err
		}
		if !page.HasMore {
			return page.Items, "", false, nil
		}
		if page.NextCursor == "" {
			return page.Items, "", false, ErrMissingCursor
		}
		return page.Items, page.NextCursor, true, nil
	})
}

// Pages enumerates a page-number paginated listing. Pages are requested from 1
// upwards and enumeration stops once the fetched page number reaches
// TotalPages, so a TotalPages of 0 or 1 results in a single fetch.
func Pages[T any](ctx context.Context, fetch PageFetcher[T]) iter.Seq2[T, error] {
	return paginate(ctx, 1, func(ctx context.Context, page int) ([]T, int, bool, error) {
		result, err := fetch(ctx, page)
		if err != nil {
			return nil, 0, false, err
		}
		return result.Items, page + 1, page < result.TotalPages, nil
	})
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}

// paginate is the loop shared by every flavour. Items of a page whose fetch
// also reported an error are yielded before the error.
func paginate[S, T any](ctx context.Context, start S, fetch step[S, T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		state := start
		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			items, next, more, err := fetch(ctx, state)
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if err != nil {
				yield(zero, err)
				return
			}
			if !more {
				return
			}
			state = next
		}
	}
}
