package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
)

// AllCategories is the facet that disables category filtering.
const AllCategories = "All"

// Catalog is the buyer's product list with its search and category filter.
type Catalog struct {
	lister port.ProductsLister

	mu       sync.Mutex
	list     productList
	search   string
	category string
}

func NewCatalog(lister port.ProductsLister) *Catalog {
	return &Catalog{lister: lister, category: AllCategories}
}

// Load fetches all products. On failure the previous list is kept and the
// error is logged and returned.
func (c *Catalog) Load(ctx context.Context) error {
	const op = "Catalog.Load"
	log := slog.With("op", op)

	c.mu.Lock()
	seq := c.list.begin()
	c.mu.Unlock()

	ps, err := c.lister.ListProducts(ctx)

	c.mu.Lock()
	applied := c.list.end(seq, ps, err)
	c.mu.Unlock()

	if err != nil {
		log.Warn("failed to load products", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		log.Debug("superseded load discarded", "seq", seq)
	}
	return nil
}

// Refresh replaces the in-memory list with a fresh fetch.
func (c *Catalog) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Catalog) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.loading()
}

func (c *Catalog) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.snapshot()
}

func (c *Catalog) SetSearch(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = s
}

func (c *Catalog) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SetCategory selects a category facet. An empty name selects AllCategories.
func (c *Catalog) SetCategory(name string) {
	if name == "" {
		name = AllCategories
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = name
}

func (c *Catalog) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

func (c *Catalog) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ProductCategories(c.list.products)
}

// Filtered applies the current search text and category to the loaded list.
func (c *Catalog) Filtered() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FilterProducts(c.list.products, c.category, c.search)
}

// ProductCategories returns AllCategories followed by the distinct non-empty
// categories of ps in first-seen order.
func ProductCategories(ps []domain.Product) []string {
	out := []string{AllCategories}
	for _, p := range ps {
		if p.Category == "" || slices.Contains(out[1:], p.Category) {
			continue
		}
		out = append(out, p.Category)
	}
	return out
}

// FilterProducts keeps the products of category (any when empty or
// AllCategories) whose name or description contains search, ignoring case.
// Search is trimmed; an empty search matches everything. Input order is
// preserved.
func FilterProducts(ps []domain.Product, category, search string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
