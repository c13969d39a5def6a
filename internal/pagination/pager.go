package pagination

import "context"

// DefaultPageSize is the page size used when none is given.
const DefaultPageSize = 100

// FetchFunc returns one page of items. Pages are numbered from 1.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// ProgressFunc is called after each non-empty page with the page number and the running total.
type ProgressFunc func(page, accumulated int)

// Result is the outcome of walking a paginated collection.
// Err is set when the walk stopped early; Items then holds everything fetched before the failure.
type Result[T any] struct {
	Items []T
	Pages int
	Err   error
}

// Complete reports whether the walk reached the end of the collection.
func (r Result[T]) Complete() bool {
	return r.Err == nil
}

// Partial reports whether the walk failed after fetching at least one item.
func (r Result[T]) Partial() bool {
	return r.Err != nil && len(r.Items) > 0
}

// IsLastPage reports whether a page of n items, requested with the given limit, ends the collection.
// A full page is never treated as last, so a collection whose size is a multiple of limit costs one
// extra, empty request.
func IsLastPage(n, limit int) bool {
	return n == 0 || n < limit
}

// Collect requests pages 1, 2, ... in order until IsLastPage holds or fetch fails.
// A failure ends the walk with the items accumulated so far; it is never retried.
func Collect[T any](ctx context.Context, pageSize int, fetch FetchFunc[T], onPage ProgressFunc) Result[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var res Result[T]
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		items, err := fetch(ctx, page, pageSize)
		res.Pages++
		if err != nil {
			res.Err = err
			return res
		}
		if len(items) == 0 {
			return res
		}

		res.Items = append(res.Items, items...)
		if onPage != nil {
			onPage(page, len(res.Items))
		}

		if IsLastPage(len(items), pageSize) {
			return res
		}
	}
}
