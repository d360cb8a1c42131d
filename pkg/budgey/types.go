package budgey

import (
	"time"
)

// RecordType distinguishes expense records from income records
type RecordType string

const (
	RecordTypeExpense RecordType = "EXPENSE"
	RecordTypeIncome  RecordType = "INCOME"
)

// ExpenseRecord is a single raw record as stored in the backend. Records are
// immutable once fetched; the aggregation pipeline never modifies them.
type ExpenseRecord struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	CategoryID    string     `json:"categoryId"`
	CategoryName  string     `json:"categoryName"`
	Type          RecordType `json:"type"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description,omitempty"`
	PeriodStart   time.Time  `json:"periodStart"`
	PeriodEnd     time.Time  `json:"periodEnd"`
	MonthKey      string     `json:"monthKey"`
	CreatedAt     time.Time  `json:"createdAt"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
}

// CategoryRecord is a user-defined expense category
type CategoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryBreakdown is the per-category slice of one month's expenses.
// Derived data, recomputed on every aggregation pass.
type CategoryBreakdown struct {
	CategoryID    string           `json:"categoryId"`
	CategoryName  string           `json:"categoryName"`
	Records       []*ExpenseRecord `json:"records"`
	TotalAmount   float64          `json:"totalAmount"`
	Count         int              `json:"count"`
	AverageAmount float64          `json:"averageAmount"`
	// Percentage of the month's expense total, 0-100. 0 when the month
	// total is 0.
	Percentage float64 `json:"percentage"`
}

// MonthlyBreakdown is the aggregate view of one budget month. Categories
// cover expense records only; income records contribute to the month totals
// and are carried separately so merges can deduplicate them by id.
type MonthlyBreakdown struct {
	MonthKey      string               `json:"monthKey"`
	DisplayLabel  string               `json:"displayLabel"`
	Categories    []*CategoryBreakdown `json:"categories"`
	IncomeRecords []*ExpenseRecord     `json:"incomeRecords,omitempty"`
	TotalExpenses float64              `json:"totalExpenses"`
	TotalIncome   float64              `json:"totalIncome"`
	NetAmount     float64              `json:"netAmount"`
	ExpenseCount  int                  `json:"expenseCount"`
	IncomeCount   int                  `json:"incomeCount"`
}

// OverallTotals summarizes an ExpenseBreakdown across all months
type OverallTotals struct {
	TotalExpenses          float64 `json:"totalExpenses"`
	TotalIncome            float64 `json:"totalIncome"`
	NetAmount              float64 `json:"netAmount"`
	MonthCount             int     `json:"monthCount"`
	AverageMonthlyExpenses float64 `json:"averageMonthlyExpenses"`
	AverageMonthlyIncome   float64 `json:"averageMonthlyIncome"`
	// TopCategory is the category name with the largest aggregate expense
	// total across all months, ties broken by first-encountered order.
	TopCategory string `json:"topCategory,omitempty"`
}

// ExpenseBreakdown is the accumulated two-level (month, category) aggregate.
// Months are sorted most recent first. Treat as a read-only snapshot: merges
// always build a new value.
type ExpenseBreakdown struct {
	Months []*MonthlyBreakdown `json:"months"`
	Totals OverallTotals       `json:"totals"`
}

// ExpensePage is one fetched page of raw records plus the cursor to continue
// from. NextCursor is opaque to the caller; empty means the source reported
// no continuation point.
type ExpensePage struct {
	Records    []*ExpenseRecord `json:"records"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// PaginationState is a snapshot of a paginator's position
type PaginationState struct {
	CurrentPage int    `json:"currentPage"`
	Cursor      string `json:"cursor,omitempty"`
	// CursorUserID is the user the cursor was captured for. A mismatch with
	// the paginator's user forces a reset to the start of data.
	CursorUserID string `json:"cursorUserId,omitempty"`
	// HasNextPage is heuristic: a page shorter than the requested size is
	// treated as the last page. A true last page of exactly the requested
	// size leaves it set until the next fetch returns empty.
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// CreateExpenseParams for creating expense or income records
type CreateExpenseParams struct {
	UserID        string     `json:"userId"`
	CategoryID    string     `json:"categoryId"`
	Type          RecordType `json:"type"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description,omitempty"`
	PeriodStart   time.Time  `json:"periodStart"`
	PeriodEnd     time.Time  `json:"periodEnd"`
	Currency      string     `json:"currency,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
}

// CreateCategoryParams for creating categories
type CreateCategoryParams struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Color  string `json:"color,omitempty"`
}
