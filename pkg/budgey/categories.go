package budgey

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// categoryService implements CategoryService: the upstream category store
// fronted by the invalidation-aware CategoryCache
type categoryService struct {
	client *Client
	cache  *CategoryCache
}

// newCategoryService creates the category service and its cache
func newCategoryService(client *Client) *categoryService {
	s := &categoryService{client: client}
	s.cache = NewCategoryCache(&categorySource{client: client})
	return s
}

// List retrieves the user's categories through the cache
func (s *categoryService) List(ctx context.Context, userID string, forceRefresh bool) ([]*CategoryRecord, error) {
	return s.cache.Get(ctx, userID, forceRefresh)
}

// Create creates a new category and invalidates the cache on success
func (s *categoryService) Create(ctx context.Context, params *CreateCategoryParams) (*CategoryRecord, error) {
	category, err := s.cache.source.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	return category, nil
}

// Invalidate clears the category cache unconditionally
func (s *categoryService) Invalidate() {
	s.cache.Invalidate()
}

// categorySource is the uncached upstream store, implementing CategorySource
type categorySource struct {
	client *Client
}

// List retrieves all categories for a user, ordered by name
func (s *categorySource) List(ctx context.Context, userID string) ([]*CategoryRecord, error) {
	if userID == "" {
		return nil, invalidInputf("user id must not be blank")
	}

	params := map[string]interface{}{
		"collection": "categories",
		"filters": map[string]interface{}{
			"userId": userID,
		},
		"orderBy": []map[string]interface{}{
			{"field": "name", "direction": "ASC"},
		},
	}

	var result struct {
		Documents []*CategoryRecord `json:"documents"`
	}

	if err := s.client.execute(ctx, "documents/query", params, &result); err != nil {
		return nil, mapTransportError(errors.Wrap(err, "failed to list categories"), "category list fetch failed")
	}

	return result.Documents, nil
}

// Create writes a new category document
func (s *categorySource) Create(ctx context.Context, params *CreateCategoryParams) (*CategoryRecord, error) {
	if params == nil {
		return nil, invalidInputf("params must not be nil")
	}
	if params.UserID == "" {
		return nil, invalidInputf("user id must not be blank")
	}
	if params.Name == "" {
		return nil, invalidInputf("category name must not be blank")
	}

	category := &CategoryRecord{
		ID:     uuid.New().String(),
		UserID: params.UserID,
		Name:   params.Name,
		Icon:   params.Icon,
		Color:  params.Color,
	}

	createParams := map[string]interface{}{
		"collection": "categories",
		"document":   category,
	}

	var result struct {
		Document *CategoryRecord `json:"document"`
	}

	if err := s.client.execute(ctx, "documents/create", createParams, &result); err != nil {
		return nil, mapTransportError(errors.Wrap(err, "failed to create category"), "category creation failed")
	}

	if result.Document != nil {
		return result.Document, nil
	}
	return category, nil
}
