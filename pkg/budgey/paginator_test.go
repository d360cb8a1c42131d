package budgey

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPageFetcher is a mock implementation of the PageFetcher interface
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) FetchPage(ctx context.Context, userID string, pageSize int, cursor string) (*ExpensePage, error) {
	args := m.Called(ctx, userID, pageSize, cursor)
	if page, ok := args.Get(0).(*ExpensePage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

// blockingFetcher holds each fetch until released, so tests can observe
// paginator state while a fetch is in flight
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	page    *ExpensePage
	err     error

	mu    sync.Mutex
	calls int
}

func newBlockingFetcher(page *ExpensePage) *blockingFetcher {
	return &blockingFetcher{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
		page:    page,
	}
}

func (f *blockingFetcher) FetchPage(ctx context.Context, userID string, pageSize int, cursor string) (*ExpensePage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	f.started <- struct{}{}
	<-f.release
	return f.page, f.err
}

func (f *blockingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewBreakdownPaginator_Validation(t *testing.T) {
	fetcher := new(MockPageFetcher)

	tests := []struct {
		name     string
		userID   string
		pageSize int
	}{
		{name: "blank user", userID: "", pageSize: 20},
		{name: "zero page size", userID: "user-1", pageSize: 0},
		{name: "negative page size", userID: "user-1", pageSize: -5},
		{name: "page size over cap", userID: "user-1", pageSize: MaxPageSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewBreakdownPaginator(fetcher, tt.userID, tt.pageSize, nil)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.False(t, IsRetryable(err))
		})
	}
}

func TestBreakdownPaginator_LoadNextPage(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 2, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID())

	page1 := &ExpensePage{
		Records: []*ExpenseRecord{
			expense("a", "cat-food", "Food", 100, "01-25"),
			expense("b", "cat-food", "Food", 50, "01-25"),
		},
		NextCursor: "cursor-1",
	}
	// Short page: the source is treated as exhausted afterwards
	page2 := &ExpensePage{
		Records: []*ExpenseRecord{
			expense("c", "cat-transport", "Transport", 30, "01-25"),
		},
	}

	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "").Return(page1, nil).Once()
	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "cursor-1").Return(page2, nil).Once()

	ctx := context.Background()
	require.NoError(t, p.LoadNextPage(ctx))

	state := p.State()
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, "cursor-1", state.Cursor)
	assert.Equal(t, "user-1", state.CursorUserID)
	assert.True(t, state.HasNextPage)
	assert.False(t, state.HasPreviousPage)

	require.NoError(t, p.LoadNextPage(ctx))

	state = p.State()
	assert.Equal(t, 2, state.CurrentPage)
	assert.False(t, state.HasNextPage)
	assert.True(t, state.HasPreviousPage)

	breakdown := p.Breakdown()
	require.NotNil(t, breakdown)
	require.Len(t, breakdown.Months, 1)
	assert.Equal(t, 180.0, breakdown.Months[0].TotalExpenses)

	// Exhausted: further calls are silent no-ops with no fetches
	require.NoError(t, p.LoadNextPage(ctx))
	fetcher.AssertNumberOfCalls(t, "FetchPage", 2)
}

func TestBreakdownPaginator_FetchFailureLeavesStateUntouched(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 2, nil)
	require.NoError(t, err)

	page1 := &ExpensePage{
		Records: []*ExpenseRecord{
			expense("a", "cat-food", "Food", 100, "01-25"),
			expense("b", "cat-food", "Food", 50, "01-25"),
		},
		NextCursor: "cursor-1",
	}
	fetchErr := NewError(KindTransientFetch, "backend unavailable")

	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "").Return(page1, nil).Once()
	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "cursor-1").Return(nil, fetchErr).Once()

	ctx := context.Background()
	require.NoError(t, p.LoadNextPage(ctx))
	before := p.State()

	err = p.LoadNextPage(ctx)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	// Cursor and breakdown are unchanged, so a retry repeats the same page
	after := p.State()
	assert.Equal(t, before, after)
	assert.Equal(t, 150.0, p.Breakdown().Months[0].TotalExpenses)

	// Retry succeeds against the same cursor
	page2 := &ExpensePage{Records: []*ExpenseRecord{
		expense("c", "cat-transport", "Transport", 30, "01-25"),
	}}
	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "cursor-1").Return(page2, nil).Once()
	require.NoError(t, p.LoadNextPage(ctx))
	assert.Equal(t, 180.0, p.Breakdown().Months[0].TotalExpenses)
}

func TestBreakdownPaginator_ConcurrentLoadIsNoOp(t *testing.T) {
	fetcher := newBlockingFetcher(&ExpensePage{
		Records: []*ExpenseRecord{expense("a", "cat-food", "Food", 100, "01-25")},
	})
	p, err := NewBreakdownPaginator(fetcher, "user-1", 2, nil)
	require.NoError(t, err)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- p.LoadNextPage(ctx) }()

	<-fetcher.started

	// Second call while the first is in flight returns immediately without
	// fetching
	require.NoError(t, p.LoadNextPage(ctx))
	assert.Equal(t, 1, fetcher.callCount())

	close(fetcher.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, p.State().CurrentPage)
	assert.NotNil(t, p.Breakdown())
}

func TestBreakdownPaginator_ResetCursorDiscardsInflightResult(t *testing.T) {
	fetcher := newBlockingFetcher(&ExpensePage{
		Records:    []*ExpenseRecord{expense("a", "cat-food", "Food", 100, "01-25")},
		NextCursor: "cursor-1",
	})
	p, err := NewBreakdownPaginator(fetcher, "user-1", 2, nil)
	require.NoError(t, err)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- p.LoadNextPage(ctx) }()

	<-fetcher.started
	p.ResetCursor()
	close(fetcher.release)
	require.NoError(t, <-done)

	// The superseded fetch was discarded, not merged
	assert.Nil(t, p.Breakdown())
	state := p.State()
	assert.Equal(t, 1, state.CurrentPage)
	assert.Empty(t, state.Cursor)
	assert.Empty(t, state.CursorUserID)

	// The paginator is not wedged: a fresh load proceeds
	fetcher.release = make(chan struct{})
	close(fetcher.release)
	go func() { done <- p.LoadNextPage(ctx) }()
	<-fetcher.started
	require.NoError(t, <-done)
	require.NotNil(t, p.Breakdown())
	assert.Equal(t, 100.0, p.Breakdown().Months[0].TotalExpenses)
}

func TestBreakdownPaginator_Refresh(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 1, nil)
	require.NoError(t, err)

	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "").
		Return(&ExpensePage{
			Records:    []*ExpenseRecord{expense("a", "cat-food", "Food", 100, "01-25")},
			NextCursor: "cursor-1",
		}, nil).Once()
	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "cursor-1").
		Return(&ExpensePage{
			Records:    []*ExpenseRecord{expense("b", "cat-food", "Food", 50, "01-25")},
			NextCursor: "cursor-2",
		}, nil).Once()

	ctx := context.Background()
	require.NoError(t, p.LoadNextPage(ctx))
	require.NoError(t, p.LoadNextPage(ctx))
	assert.Equal(t, 2, p.CurrentPage())
	assert.Equal(t, 150.0, p.Breakdown().Months[0].TotalExpenses)

	// The refreshed page 1 carries different data, as after an upstream edit
	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "").
		Return(&ExpensePage{
			Records:    []*ExpenseRecord{expense("d", "cat-food", "Food", 75, "01-25")},
			NextCursor: "cursor-d",
		}, nil).Once()

	require.NoError(t, p.Refresh(ctx))

	state := p.State()
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, "cursor-d", state.Cursor)
	assert.True(t, state.HasNextPage)
	assert.False(t, state.HasPreviousPage)
	assert.Equal(t, 75.0, p.Breakdown().Months[0].TotalExpenses)
}

func TestBreakdownPaginator_LoadPreviousPageRebuildsFromStart(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 1, nil)
	require.NoError(t, err)

	pageA := &ExpensePage{
		Records:    []*ExpenseRecord{expense("a", "cat-food", "Food", 100, "01-25")},
		NextCursor: "cursor-1",
	}
	pageB := &ExpensePage{
		Records:    []*ExpenseRecord{expense("b", "cat-food", "Food", 50, "01-25")},
		NextCursor: "cursor-2",
	}
	pageC := &ExpensePage{
		Records:    []*ExpenseRecord{expense("c", "cat-transport", "Transport", 30, "01-25")},
		NextCursor: "cursor-3",
	}

	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "").Return(pageA, nil)
	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "cursor-1").Return(pageB, nil)
	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "cursor-2").Return(pageC, nil)

	ctx := context.Background()
	require.NoError(t, p.LoadNextPage(ctx))
	require.NoError(t, p.LoadNextPage(ctx))
	require.NoError(t, p.LoadNextPage(ctx))
	assert.Equal(t, 3, p.CurrentPage())
	assert.Equal(t, 180.0, p.Breakdown().Months[0].TotalExpenses)

	// Stepping back re-fetches pages 1 and 2 from the start of data
	require.NoError(t, p.LoadPreviousPage(ctx))

	state := p.State()
	assert.Equal(t, 2, state.CurrentPage)
	assert.Equal(t, "cursor-2", state.Cursor)
	assert.True(t, state.HasPreviousPage)
	assert.Equal(t, 150.0, p.Breakdown().Months[0].TotalExpenses)

	// 3 forward fetches + 2 rebuild fetches
	fetcher.AssertNumberOfCalls(t, "FetchPage", 5)
}

func TestBreakdownPaginator_LoadPreviousPageFloorsAtPageOne(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 1, nil)
	require.NoError(t, err)

	page := &ExpensePage{
		Records:    []*ExpenseRecord{expense("a", "cat-food", "Food", 100, "01-25")},
		NextCursor: "cursor-1",
	}
	fetcher.On("FetchPage", mock.Anything, "user-1", 1, "").Return(page, nil)

	ctx := context.Background()
	require.NoError(t, p.LoadNextPage(ctx))

	// Already on page 1; stepping back stays there
	require.NoError(t, p.LoadPreviousPage(ctx))
	assert.Equal(t, 1, p.CurrentPage())
	assert.False(t, p.State().HasPreviousPage)
}

func TestBreakdownPaginator_CursorForAnotherUserIsNotReplayed(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 2, nil)
	require.NoError(t, err)

	// Simulate a cursor captured for a different user session
	p.mu.Lock()
	p.cursor = "stale-cursor"
	p.cursorUserID = "user-2"
	p.mu.Unlock()

	page := &ExpensePage{Records: []*ExpenseRecord{
		expense("a", "cat-food", "Food", 100, "01-25"),
	}}
	// The fetch goes to the start of data, not the stale cursor
	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "").Return(page, nil).Once()

	require.NoError(t, p.LoadNextPage(context.Background()))
	fetcher.AssertExpectations(t)
	assert.Equal(t, "user-1", p.State().CursorUserID)
}

func TestBreakdownPaginator_ContextCancellationSurfaces(t *testing.T) {
	fetcher := new(MockPageFetcher)
	p, err := NewBreakdownPaginator(fetcher, "user-1", 2, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	fetcher.On("FetchPage", mock.Anything, "user-1", 2, "").
		Return(nil, mapTransportError(context.DeadlineExceeded, "expense page fetch failed")).Once()

	err = p.LoadNextPage(ctx)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Nil(t, p.Breakdown())
}
