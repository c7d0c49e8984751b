package apiclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
	"github.com/zibot/farmconnect/pkg/formdata"
)

var _ port.MarketplaceAPI = (*Client)(nil)

const (
	loginPath      = "/auth/login"
	signupPath     = "/auth/signup"
	productsPath   = "/products"
	bulkStatusPath = "/products/bulk/status"
	bulkDeletePath = "/products/bulk/delete"
)

func productPath(id int64) string {
	return productsPath + "/" + strconv.FormatInt(id, 10)
}

func (c Client) Login(
	ctx context.Context, cred domain.Credentials,
) (domain.User, error) {
	const op = "Client.Login"

	var u user
	req := loginRequest{Email: cred.Email, Password: cred.Password}
	if err := c.PostJSON(ctx, loginPath, req, &u); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u.toDomain(), nil
}

func (c Client) Signup(
	ctx context.Context, reg domain.Registration,
) (domain.User, error) {
	const op = "Client.Signup"

	var u user
	req := signupRequest{
		Name:     reg.Name,
		Email:    reg.Email,
		Password: reg.Password,
		Role:     string(reg.Role),
	}
	if err := c.PostJSON(ctx, signupPath, req, &u); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u.toDomain(), nil
}

func (c Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.ListProducts"

	var ps []product
	if err := c.Get(ctx, productsPath, &ps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return productsToDomain(ps), nil
}

func (c Client) CreateProduct(
	ctx context.Context, f *formdata.Form,
) (domain.Product, error) {
	const op = "Client.CreateProduct"

	var p product
	if err := c.PostForm(ctx, productsPath, f, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p.toDomain(), nil
}

func (c Client) UpdateProductForm(
	ctx context.Context, id int64, f *formdata.Form,
) (domain.Product, error) {
	const op = "Client.UpdateProductForm"

	var p product
	if err := c.PatchForm(ctx, productPath(id)+"/form", f, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p.toDomain(), nil
}

func (c Client) DeleteProduct(ctx context.Context, id int64) error {
	const op = "Client.DeleteProduct"

	if err := c.Delete(ctx, productPath(id), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c Client) BulkUpdateStatus(
	ctx context.Context, ids []int64, status domain.ProductStatus,
) ([]domain.Product, error) {
	const op = "Client.BulkUpdateStatus"

	var ps []product
	req := bulkStatusRequest{IDs: ids, Status: string(status)}
	if err := c.PostJSON(ctx, bulkStatusPath, req, &ps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return productsToDomain(ps), nil
}

func (c Client) BulkDeleteProducts(
	ctx context.Context, ids []int64,
) (int, error) {
	const op = "Client.BulkDeleteProducts"

	var res bulkDeleteResponse
	if err := c.PostJSON(ctx, bulkDeletePath, bulkDeleteRequest{ids}, &res); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.Deleted, nil
}
