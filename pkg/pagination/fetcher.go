package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "couchers_pagination_pages_fetched_total",
		Help: "Total number of list pages fetched",
	})

	aggregationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "couchers_pagination_failures_total",
		Help: "Total number of list walks aborted by a page failure",
	})
)

// Page is one reply of a paginated list. Next is the cursor of the following
// page; its zero value means there are no more pages.
type Page[T any, C comparable] struct {
	Items []T
	Next  C
}

// Done reports whether this is the last page.
func (p Page[T, C]) Done() bool {
	var zero C
	return p.Next == zero
}

// PageFunc fetches the page starting at cursor. The first call receives the
// zero cursor.
type PageFunc[T any, C comparable] func(ctx context.Context, cursor C) (Page[T, C], error)

// FetchAll fetches every page and returns the concatenated items in response
// order. The first failing page aborts the walk; its error is returned
// without partial results.
func FetchAll[T any, C comparable](ctx context.Context, fetch PageFunc[T, C]) ([]T, error) {
	start := time.Now()
	it := NewIterator(fetch)

	var all []T
	for it.Next(ctx) {
		all = append(all, it.Page().Items...)
	}
	if err := it.Err(); err != nil {
		aggregationFailuresTotal.Inc()
		return nil, err
	}

	log.Debug().
		Int("pages", it.Pages()).
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetched all pages")

	return all, nil
}

// Iterator walks a paginated list one page at a time.
//
//	it := pagination.NewIterator(fetch)
//	for it.Next(ctx) {
//		use(it.Page().Items)
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any, C comparable] struct {
	fetch  PageFunc[T, C]
	cursor C
	page   Page[T, C]
	pages  int
	err    error
	done   bool
}

// NewIterator returns an iterator positioned before the first page.
func NewIterator[T any, C comparable](fetch PageFunc[T, C]) *Iterator[T, C] {
	return &Iterator[T, C]{fetch: fetch}
}

// Next fetches the next page. It returns false once the last page has been
// returned or a fetch failed; Err distinguishes the two.
func (it *Iterator[T, C]) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		it.fail(err)
		return false
	}

	page, err := it.fetch(ctx, it.cursor)
	if err != nil {
		it.fail(fmt.Errorf("fetch page %d: %w", it.pages+1, err))
		return false
	}
	pagesFetchedTotal.Inc()

	it.pages++
	it.page = page
	it.cursor = page.Next
	// The terminal page is still returned by this call; the next one stops.
	it.done = page.Done()
	return true
}

// Page returns the page fetched by the last successful Next.
func (it *Iterator[T, C]) Page() Page[T, C] {
	return it.page
}

// Pages returns how many pages have been fetched.
func (it *Iterator[T, C]) Pages() int {
	return it.pages
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator[T, C]) Err() error {
	return it.err
}

func (it *Iterator[T, C]) fail(err error) {
	it.err = err
	it.done = true
	it.page = Page[T, C]{}
}
