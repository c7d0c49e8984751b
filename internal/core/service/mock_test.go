package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/pkg/formdata"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Login(
	ctx context.Context, c domain.Credentials,
) (domain.User, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAPI) Signup(
	ctx context.Context, r domain.Registration,
) (domain.User, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *mockAPI) CreateProduct(
	ctx context.Context, f *formdata.Form,
) (domain.Product, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockAPI) UpdateProductForm(
	ctx context.Context, id int64, f *formdata.Form,
) (domain.Product, error) {
	args := m.Called(ctx, id, f)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockAPI) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAPI) BulkUpdateStatus(
	ctx context.Context, ids []int64, status domain.ProductStatus,
) ([]domain.Product, error) {
	args := m.Called(ctx, ids, status)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *mockAPI) BulkDeleteProducts(
	ctx context.Context, ids []int64,
) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

type listerFunc func(context.Context) ([]domain.Product, error)

func (f listerFunc) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return f(ctx)
}
