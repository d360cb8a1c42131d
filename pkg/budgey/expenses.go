package budgey

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// expenseService implements the ExpenseService interface over the document
// store transport
type expenseService struct {
	client *Client
}

// FetchPage retrieves one page of expense records for a user, most recent
// first. It implements PageFetcher for BreakdownPaginator.
func (s *expenseService) FetchPage(ctx context.Context, userID string, pageSize int, cursor string) (*ExpensePage, error) {
	if userID == "" {
		return nil, invalidInputf("user id must not be blank")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, invalidInputf("page size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}

	params := map[string]interface{}{
		"collection": "expenses",
		"filters": map[string]interface{}{
			"userId": userID,
		},
		"orderBy": []map[string]interface{}{
			{"field": "createdAt", "direction": "DESC"},
		},
		"pageSize": pageSize,
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var result struct {
		Documents  []*ExpenseRecord `json:"documents"`
		NextCursor string           `json:"nextCursor"`
	}

	if err := s.client.execute(ctx, "documents/query", params, &result); err != nil {
		return nil, mapTransportError(errors.Wrap(err, "failed to fetch expense page"), "expense page fetch failed")
	}

	return &ExpensePage{
		Records:    result.Documents,
		NextCursor: result.NextCursor,
	}, nil
}

// Create validates the category against the cached category list and writes
// a new record. The record's month key is derived from its budget period
// start here, at creation time; downstream aggregation never repairs keys.
func (s *expenseService) Create(ctx context.Context, params *CreateExpenseParams) (*ExpenseRecord, error) {
	if params == nil {
		return nil, invalidInputf("params must not be nil")
	}
	if params.UserID == "" {
		return nil, invalidInputf("user id must not be blank")
	}
	if params.CategoryID == "" {
		return nil, invalidInputf("category id must not be blank")
	}
	if params.Amount < 0 {
		return nil, invalidInputf("amount must not be negative, got %v", params.Amount)
	}
	if params.Type != RecordTypeExpense && params.Type != RecordTypeIncome {
		return nil, invalidInputf("unknown record type %q", params.Type)
	}
	if params.PeriodEnd.Before(params.PeriodStart) {
		return nil, invalidInputf("budget period end precedes its start")
	}

	categories, err := s.client.Categories.List(ctx, params.UserID, false)
	if err != nil {
		return nil, err
	}

	var category *CategoryRecord
	for _, c := range categories {
		if c.ID == params.CategoryID {
			category = c
			break
		}
	}
	if category == nil {
		return nil, invalidInputf("unknown category %q", params.CategoryID)
	}

	currency := params.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	record := &ExpenseRecord{
		ID:            uuid.New().String(),
		UserID:        params.UserID,
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		Type:          params.Type,
		Amount:        params.Amount,
		Description:   params.Description,
		PeriodStart:   params.PeriodStart,
		PeriodEnd:     params.PeriodEnd,
		MonthKey:      MonthKeyFor(params.PeriodStart),
		CreatedAt:     time.Now().UTC(),
		Currency:      currency,
		PaymentMethod: params.PaymentMethod,
		Tags:          params.Tags,
	}

	createParams := map[string]interface{}{
		"collection": "expenses",
		"document":   record,
	}

	var result struct {
		Document *ExpenseRecord `json:"document"`
	}

	if err := s.client.execute(ctx, "documents/create", createParams, &result); err != nil {
		return nil, mapTransportError(errors.Wrap(err, "failed to create expense"), "expense creation failed")
	}

	if result.Document != nil {
		return result.Document, nil
	}
	return record, nil
}
