package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/service"
)

func loadedModeration(t *testing.T, api *mockAPI, ps []domain.Product) *service.Moderation {
	t.Helper()
	api.On("ListProducts", mock.Anything).Return(ps, nil).Once()
	m := service.NewModeration(api)
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestModerationSelection(t *testing.T) {
	api := new(mockAPI)
	m := loadedModeration(t, api, sampleProducts())

	assert.Equal(t, service.PhaseIdle, m.Phase())

	require.NoError(t, m.ToggleSelect(3))
	require.NoError(t, m.ToggleSelect(1))
	assert.Equal(t, []int64{3, 1}, m.Selected())
	assert.Equal(t, service.PhaseSelecting, m.Phase())
	assert.True(t, m.IsSelected(1))

	require.NoError(t, m.ToggleSelect(3))
	assert.Equal(t, []int64{1}, m.Selected())

	err := m.ToggleSelect(99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, []int64{1}, m.Selected())

	m.ClearSelection()
	assert.Empty(t, m.Selected())
	assert.Equal(t, service.PhaseIdle, m.Phase())
}

func TestModerationToggleTwiceRestores(t *testing.T) {
	api := new(mockAPI)
	m := loadedModeration(t, api, sampleProducts())

	require.NoError(t, m.ToggleSelect(2))
	before := m.Selected()
	for _, id := range []int64{1, 5} {
		require.NoError(t, m.ToggleSelect(id))
		require.NoError(t, m.ToggleSelect(id))
		assert.Equal(t, before, m.Selected())
	}
}

func TestModerationToggleSelectAll(t *testing.T) {
	api := new(mockAPI)
	ps := []domain.Product{
		{ID: 1, Status: domain.StatusPending},
		{ID: 2, Status: domain.StatusApproved},
		{ID: 3, Status: domain.StatusBlocked},
	}
	m := loadedModeration(t, api, ps)

	require.NoError(t, m.ToggleSelect(2))
	m.ToggleSelectAll()
	assert.Equal(t, []int64{1, 2, 3}, m.Selected())

	m.ToggleSelectAll()
	assert.Empty(t, m.Selected())
}

func TestModerationMetrics(t *testing.T) {
	api := new(mockAPI)
	m := loadedModeration(t, api, []domain.Product{
		{ID: 1, Status: domain.StatusPending},
		{ID: 2, Status: domain.StatusApproved},
		{ID: 3, Status: domain.StatusPending},
	})
	assert.Equal(t, domain.Metrics{Total: 3, Approved: 1, Pending: 2}, m.Metrics())
}

func TestModerationLoadPrunesSelection(t *testing.T) {
	api := new(mockAPI)
	m := loadedModeration(t, api, sampleProducts())
	require.NoError(t, m.ToggleSelect(2))
	require.NoError(t, m.ToggleSelect(4))

	api.On("ListProducts", mock.Anything).
		Return([]domain.Product{{ID: 4}, {ID: 5}}, nil).Once()
	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, []int64{4}, m.Selected())
}

func TestModerationUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyIDsIsNoop", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())

		require.NoError(t, m.UpdateStatus(ctx, nil, domain.StatusApproved))
		api.AssertNotCalled(t, "BulkUpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		api.AssertNumberOfCalls(t, "ListProducts", 1)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())

		err := m.UpdateStatus(ctx, []int64{1}, "archived")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		api.AssertNotCalled(t, "BulkUpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SuccessReloadsAndClears", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())
		require.NoError(t, m.ToggleSelect(1))
		require.NoError(t, m.ToggleSelect(2))

		api.On("BulkUpdateStatus", mock.Anything, []int64{1, 2}, domain.StatusApproved).
			Return([]domain.Product{}, nil).Once()
		api.On("ListProducts", mock.Anything).Return(sampleProducts(), nil).Once()

		require.NoError(t, m.UpdateStatus(ctx, m.Selected(), domain.StatusApproved))
		assert.Empty(t, m.Selected())
		assert.Equal(t, service.PhaseIdle, m.Phase())
		api.AssertNumberOfCalls(t, "ListProducts", 2)
		api.AssertExpectations(t)
	})

	t.Run("FailureKeepsSelection", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())
		require.NoError(t, m.ToggleSelect(3))

		api.On("BulkUpdateStatus", mock.Anything, []int64{3}, domain.StatusBlocked).
			Return(nil, errors.New("Request failed: 500")).Once()

		err := m.UpdateStatus(ctx, m.Selected(), domain.StatusBlocked)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Request failed: 500")
		assert.Equal(t, []int64{3}, m.Selected())
		assert.Equal(t, service.PhaseSelecting, m.Phase())
		api.AssertNumberOfCalls(t, "ListProducts", 1)
	})

	t.Run("SecondActionRejectedWhileActing", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())

		entered := make(chan struct{})
		release := make(chan struct{})
		api.On("BulkUpdateStatus", mock.Anything, []int64{1}, domain.StatusApproved).
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return([]domain.Product{}, nil).Once()
		api.On("ListProducts", mock.Anything).Return(sampleProducts(), nil).Once()

		done := make(chan error)
		go func() { done <- m.UpdateStatus(ctx, []int64{1}, domain.StatusApproved) }()
		<-entered

		assert.Equal(t, service.PhaseActing, m.Phase())
		err := m.DeleteProducts(ctx, []int64{2})
		assert.ErrorIs(t, err, domain.ErrActionInProgress)

		close(release)
		require.NoError(t, <-done)
		api.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
	})
}

func TestModerationDeleteProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleUsesItemEndpoint", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())
		require.NoError(t, m.ToggleSelect(4))

		api.On("DeleteProduct", mock.Anything, int64(4)).Return(nil).Once()
		api.On("ListProducts", mock.Anything).Return(sampleProducts()[:3], nil).Once()

		require.NoError(t, m.DeleteProducts(ctx, m.Selected()))
		assert.Empty(t, m.Selected())
		assert.Len(t, m.Products(), 3)
		api.AssertNotCalled(t, "BulkDeleteProducts", mock.Anything, mock.Anything)
		api.AssertExpectations(t)
	})

	t.Run("SeveralUseBulkEndpoint", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())

		api.On("BulkDeleteProducts", mock.Anything, []int64{1, 2}).Return(2, nil).Once()
		api.On("ListProducts", mock.Anything).Return(sampleProducts()[2:], nil).Once()

		require.NoError(t, m.DeleteProducts(ctx, []int64{1, 2}))
		api.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
		api.AssertExpectations(t)
	})

	t.Run("EmptyIDsIsNoop", func(t *testing.T) {
		api := new(mockAPI)
		m := loadedModeration(t, api, sampleProducts())

		require.NoError(t, m.DeleteProducts(ctx, []int64{}))
		api.AssertNumberOfCalls(t, "ListProducts", 1)
	})
}
