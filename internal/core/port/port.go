package port

import (
	"context"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/pkg/formdata"
)

type Authenticator interface {
	Login(context.Context, domain.Credentials) (domain.User, error)
	Signup(context.Context, domain.Registration) (domain.User, error)
}

type ProductsLister interface {
	ListProducts(context.Context) ([]domain.Product, error)
}

type ProductCreator interface {
	CreateProduct(context.Context, *formdata.Form) (domain.Product, error)
}

type ProductUpdater interface {
	UpdateProductForm(ctx context.Context, id int64, f *formdata.Form) (domain.Product, error)
}

type ProductDeleter interface {
	DeleteProduct(ctx context.Context, id int64) error
}

type BulkStatusUpdater interface {
	BulkUpdateStatus(
		ctx context.Context, ids []int64, status domain.ProductStatus,
	) ([]domain.Product, error)
}

type BulkDeleter interface {
	BulkDeleteProducts(ctx context.Context, ids []int64) (deleted int, err error)
}

type ImagePicker interface {
	PickImage(ctx context.Context, uri string) (domain.ImageAsset, error)
}

type ModerationAPI interface {
	ProductsLister
	BulkStatusUpdater
	ProductDeleter
	BulkDeleter
}

type ListingsAPI interface {
	ProductsLister
	ProductUpdater
}

// MarketplaceAPI is everything the client needs from the remote API.
type MarketplaceAPI interface {
	Authenticator
	ModerationAPI
	ProductCreator
	ProductUpdater
}
