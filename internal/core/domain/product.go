package domain

import "github.com/shopspring/decimal"

type ProductStatus string

const (
	StatusPending  ProductStatus = "pending"
	StatusApproved ProductStatus = "approved"
	StatusBlocked  ProductStatus = "blocked"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusBlocked:
		return true
	}
	return false
}

type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Quantity    int
	Category    string
	Location    string
	Description string
	ImageURL    string
	SellerID    int64
	Status      ProductStatus
}

// Metrics is the approval summary shown on the admin workspace.
type Metrics struct {
	Total    int
	Approved int
	Pending  int
	Blocked  int
}

func CountStatuses(ps []Product) (m Metrics) {
	m.Total = len(ps)
	for _, p := range ps {
		switch p.Status {
		case StatusApproved:
			m.Approved++
		case StatusPending:
			m.Pending++
		case StatusBlocked:
			m.Blocked++
		}
	}
	return
}
