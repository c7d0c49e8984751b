// Package service holds the per-screen controllers of the marketplace
// client. Every controller guards its state with a mutex so a background
// load and a user action can run at the same time.
package service

import (
	"slices"

	"github.com/zibot/farmconnect/internal/core/domain"
)

// productList is the last applied product list of a controller.
//
// Loads are numbered when issued and only the latest issued load may
// replace the list, so a slow early response never overwrites a newer one.
// The owner must hold its mutex while calling the methods.
type productList struct {
	issued   uint64
	inFlight int
	products []domain.Product
}

func (l *productList) begin() uint64 {
	l.issued++
	l.inFlight++
	return l.issued
}

// end reports whether ps replaced the list.
func (l *productList) end(seq uint64, ps []domain.Product, err error) bool {
	l.inFlight--
	if err != nil || seq != l.issued {
		return false
	}
	l.products = ps
	return true
}

func (l *productList) loading() bool {
	return l.inFlight > 0
}

func (l *productList) snapshot() []domain.Product {
	return slices.Clone(l.products)
}

func (l *productList) find(id int64) (domain.Product, bool) {
	i := slices.IndexFunc(l.products, func(p domain.Product) bool {
		return p.ID == id
	})
	if i < 0 {
		return domain.Product{}, false
	}
	return l.products[i], true
}
