package pagination

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

// scripted returns a PageFunc serving pages in order and recording the
// cursors it was called with.
func scripted[T any](pages []Page[T, string], calls *[]string) PageFunc[T, string] {
	return func(ctx context.Context, cursor string) (Page[T, string], error) {
		*calls = append(*calls, cursor)
		if len(*calls) > len(pages) {
			return Page[T, string]{}, errors.New("fetched past the last page")
		}
		return pages[len(*calls)-1], nil
	}
}

func TestFetchAll_ConcatenatesInOrder(t *testing.T) {
	var calls []string
	pages := []Page[int, string]{
		{Items: []int{1, 2}, Next: "a"},
		{Items: []int{3}, Next: ""},
	}

	got, err := FetchAll(context.Background(), scripted(pages, &calls))
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if want := []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("FetchAll = %v, want %v", got, want)
	}
	if want := []string{"", "a"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("cursors = %q, want %q", calls, want)
	}
}

func TestFetchAll_StopsAtFirstEmptyCursor(t *testing.T) {
	tests := []struct {
		name      string
		pages     []Page[string, string]
		want      []string
		wantCalls int
	}{
		{
			name:      "single page",
			pages:     []Page[string, string]{{Items: []string{"x"}}},
			want:      []string{"x"},
			wantCalls: 1,
		},
		{
			name: "empty middle page keeps going",
			pages: []Page[string, string]{
				{Items: []string{"a"}, Next: "1"},
				{Items: nil, Next: "2"},
				{Items: []string{"b", "c"}},
			},
			want:      []string{"a", "b", "c"},
			wantCalls: 3,
		},
		{
			name: "pages after the terminal one are never fetched",
			pages: []Page[string, string]{
				{Items: []string{"a"}, Next: "1"},
				{Items: []string{"b"}},
				{Items: []string{"never"}},
			},
			want:      []string{"a", "b"},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			got, err := FetchAll(context.Background(), scripted(tt.pages, &calls))
			if err != nil {
				t.Fatalf("FetchAll failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FetchAll = %v, want %v", got, tt.want)
			}
			if len(calls) != tt.wantCalls {
				t.Errorf("calls = %d, want %d", len(calls), tt.wantCalls)
			}
		})
	}
}

func TestFetchAll_IntegerCursor(t *testing.T) {
	// Message lists page by the last seen id; 0 marks the end.
	fetch := func(ctx context.Context, after int64) (Page[int64, int64], error) {
		switch after {
		case 0:
			return Page[int64, int64]{Items: []int64{30, 20}, Next: 20}, nil
		case 20:
			return Page[int64, int64]{Items: []int64{10}}, nil
		}
		return Page[int64, int64]{}, errors.New("unexpected cursor")
	}

	got, err := FetchAll(context.Background(), fetch)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if want := []int64{30, 20, 10}; !reflect.DeepEqual(got, want) {
		t.Errorf("FetchAll = %v, want %v", got, want)
	}
}

func TestFetchAll_FailureReturnsNoPartialResults(t *testing.T) {
	boom := errors.New("backend unavailable")
	calls := 0
	fetch := func(ctx context.Context, cursor string) (Page[int, string], error) {
		calls++
		if calls == 2 {
			return Page[int, string]{}, boom
		}
		return Page[int, string]{Items: []int{calls}, Next: "more"}, nil
	}

	got, err := FetchAll(context.Background(), fetch)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped backend error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected no partial results, got %v", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (no retry)", calls)
	}
}

func TestFetchAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, cursor string) (Page[int, string], error) {
		cancel()
		return Page[int, string]{Items: []int{1}, Next: "next"}, nil
	}

	_, err := FetchAll(ctx, fetch)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestIterator_YieldsLazily(t *testing.T) {
	var calls []string
	pages := []Page[int, string]{
		{Items: []int{1}, Next: "a"},
		{Items: []int{2}, Next: "b"},
		{Items: []int{3}},
	}
	it := NewIterator(scripted(pages, &calls))
	ctx := context.Background()

	if !it.Next(ctx) {
		t.Fatalf("first Next returned false: %v", it.Err())
	}
	if len(calls) != 1 {
		t.Errorf("Expected exactly one fetch after first Next, got %d", len(calls))
	}
	if !reflect.DeepEqual(it.Page().Items, []int{1}) {
		t.Errorf("first page = %v", it.Page().Items)
	}

	for it.Next(ctx) {
	}
	if it.Err() != nil {
		t.Fatalf("Unexpected error: %v", it.Err())
	}
	if it.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", it.Pages())
	}
	if !it.Page().Done() {
		t.Error("Last page should report Done")
	}

	// Exhausted iterators stay exhausted.
	if it.Next(ctx) {
		t.Error("Next after the terminal page should return false")
	}
	if len(calls) != 3 {
		t.Errorf("calls = %d, want 3", len(calls))
	}
}

func TestIterator_StopsAfterError(t *testing.T) {
	calls := 0
	it := NewIterator(func(ctx context.Context, cursor string) (Page[int, string], error) {
		calls++
		return Page[int, string]{}, errors.New("nope")
	})

	if it.Next(context.Background()) {
		t.Fatal("Next should fail")
	}
	if it.Err() == nil {
		t.Fatal("Err should be set")
	}
	if it.Next(context.Background()) {
		t.Fatal("Next after error should keep failing")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestForEach(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	var sum atomic.Int64
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	err := ForEach(context.Background(), items, 2, func(ctx context.Context, item int) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		sum.Add(int64(item))

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if sum.Load() != 21 {
		t.Errorf("sum = %d, want 21", sum.Load())
	}
	if maxInFlight > 2 {
		t.Errorf("max in flight = %d, want <= 2", maxInFlight)
	}
}

func TestForEach_ReturnsFirstError(t *testing.T) {
	boom := errors.New("mark failed")
	err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(ctx context.Context, item int) error {
		if item == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestForEach_Empty(t *testing.T) {
	called := false
	err := ForEach(context.Background(), []string(nil), 0, func(ctx context.Context, item string) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("ForEach on empty input: err=%v called=%v", err, called)
	}
}
