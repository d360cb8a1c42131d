package budgey

import (
	"context"
)

// PageFetcher abstracts a cursor-paginated expense query. An empty cursor
// requests the start of data. Implementations must return records in a
// single stable, most-recent-first order; the merge ordering guarantees of
// BreakdownPaginator depend on it.
type PageFetcher interface {
	// FetchPage retrieves one page of raw expense records for a user
	FetchPage(ctx context.Context, userID string, pageSize int, cursor string) (*ExpensePage, error)
}

// CategorySource abstracts the uncached upstream category store
type CategorySource interface {
	// List retrieves all categories for a user
	List(ctx context.Context, userID string) ([]*CategoryRecord, error)

	// Create creates a new category
	Create(ctx context.Context, params *CreateCategoryParams) (*CategoryRecord, error)
}

// ExpenseService handles expense record operations
type ExpenseService interface {
	// FetchPage retrieves one page of raw expense records for a user
	FetchPage(ctx context.Context, userID string, pageSize int, cursor string) (*ExpensePage, error)

	// Create validates the category against the cached category list and
	// creates a new expense or income record
	Create(ctx context.Context, params *CreateExpenseParams) (*ExpenseRecord, error)
}

// CategoryService handles categories through the invalidation-aware cache
type CategoryService interface {
	// List retrieves the user's categories, served from cache unless
	// forceRefresh is set, the cache is empty, or it belongs to another user
	List(ctx context.Context, userID string, forceRefresh bool) ([]*CategoryRecord, error)

	// Create creates a new category and invalidates the cache
	Create(ctx context.Context, params *CreateCategoryParams) (*CategoryRecord, error)

	// Invalidate clears the category cache unconditionally. Any external
	// category-mutation path must call it on success.
	Invalidate()
}
