package budgey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_ListIsCached(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockResponse := `{
		"documents": [
			{"id": "cat-food", "userId": "user-1", "name": "Food"},
			{"id": "cat-transport", "userId": "user-1", "name": "Transport"}
		]
	}`

	mockTransport.On("Execute",
		mock.Anything,
		"documents/query",
		mock.Anything,
		mock.Anything,
	).Return(mockResponse, nil)

	ctx := context.Background()

	categories, err := client.Categories.List(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)

	_, err = client.Categories.List(ctx, "user-1", false)
	require.NoError(t, err)

	// The second list was served from cache
	mockTransport.AssertNumberOfCalls(t, "Execute", 1)
}

func TestCategoryService_CreateInvalidatesCache(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	listResponse := `{
		"documents": [
			{"id": "cat-food", "userId": "user-1", "name": "Food"}
		]
	}`

	mockTransport.On("Execute",
		mock.Anything,
		"documents/query",
		mock.Anything,
		mock.Anything,
	).Return(listResponse, nil)
	mockTransport.On("Execute",
		mock.Anything,
		"documents/create",
		mock.Anything,
		mock.Anything,
	).Return(nil, nil)

	ctx := context.Background()

	_, err := client.Categories.List(ctx, "user-1", false)
	require.NoError(t, err)

	category, err := client.Categories.Create(ctx, &CreateCategoryParams{
		UserID: "user-1",
		Name:   "Entertainment",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "Entertainment", category.Name)

	// The creation invalidated the cache, so the next list refetches
	_, err = client.Categories.List(ctx, "user-1", false)
	require.NoError(t, err)

	mockTransport.AssertNumberOfCalls(t, "Execute", 3)
}

func TestCategoryService_InvalidateClearsCache(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Execute",
		mock.Anything,
		"documents/query",
		mock.Anything,
		mock.Anything,
	).Return(`{"documents": []}`, nil)

	ctx := context.Background()

	_, err := client.Categories.List(ctx, "user-1", false)
	require.NoError(t, err)

	client.Categories.Invalidate()

	_, err = client.Categories.List(ctx, "user-1", false)
	require.NoError(t, err)

	mockTransport.AssertNumberOfCalls(t, "Execute", 2)
}

func TestCategoryService_CreateValidation(t *testing.T) {
	client := newTestClient(new(MockTransport))
	ctx := context.Background()

	tests := []struct {
		name   string
		params *CreateCategoryParams
	}{
		{name: "nil params", params: nil},
		{name: "blank user", params: &CreateCategoryParams{Name: "Food"}},
		{name: "blank name", params: &CreateCategoryParams{UserID: "user-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, err := client.Categories.Create(ctx, tt.params)
			require.Error(t, err)
			assert.Nil(t, category)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
