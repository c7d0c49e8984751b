package apiclient

import (
	"github.com/shopspring/decimal"
	"github.com/zibot/farmconnect/internal/core/domain"
)

type (
	user struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	signupRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
)

type (
	product struct {
		ID          int64           `json:"id"`
		Name        string          `json:"name"`
		Price       decimal.Decimal `json:"price"`
		Quantity    int             `json:"quantity"`
		Category    string          `json:"category"`
		Location    *string         `json:"location"`
		Description *string         `json:"description"`
		ImageURL    *string         `json:"image_url"`
		SellerID    int64           `json:"seller_id"`
		Status      string          `json:"status"`
	}

	bulkStatusRequest struct {
		IDs    []int64 `json:"ids"`
		Status string  `json:"status"`
	}

	bulkDeleteRequest struct {
		IDs []int64 `json:"ids"`
	}

	bulkDeleteResponse struct {
		Deleted int `json:"deleted"`
	}
)

func (u user) toDomain() domain.User {
	return domain.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  domain.Role(u.Role),
	}
}

func (p product) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Location:    deref(p.Location),
		Description: deref(p.Description),
		ImageURL:    deref(p.ImageURL),
		SellerID:    p.SellerID,
		Status:      domain.ProductStatus(p.Status),
	}
}

func productsToDomain(ps []product) []domain.Product {
	out := make([]domain.Product, len(ps))
	for i := range ps {
		out[i] = ps[i].toDomain()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
