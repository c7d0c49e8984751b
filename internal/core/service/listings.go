package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
	"github.com/zibot/farmconnect/pkg/formdata"
)

// EditDraft is the edit form of one listing. Values stay strings until the
// form is sent.
type EditDraft struct {
	ProductID   int64
	Name        string
	Price       string
	Quantity    string
	Category    string
	Description string
	Image       *domain.ImageAsset
}

func draftOf(p domain.Product) EditDraft {
	return EditDraft{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Quantity:    strconv.Itoa(p.Quantity),
		Category:    p.Category,
		Description: p.Description,
	}
}

// Form assembles the edit form. Without an image the stored one is kept.
func (d EditDraft) Form() (*formdata.Form, error) {
	f := formdata.New().
		Add("name", d.Name).
		Add("price", d.Price).
		Add("quantity", d.Quantity).
		Add("category", d.Category).
		AddOptional("description", d.Description)
	if err := attachImage(f, d.Image); err != nil {
		return nil, err
	}
	return f, nil
}

// Listings is the seller dashboard: the seller's own products and at most
// one open edit draft.
type Listings struct {
	api    port.ListingsAPI
	seller domain.User

	mu     sync.Mutex
	list   productList
	draft  *EditDraft
	saving bool
}

func NewListings(api port.ListingsAPI, seller domain.User) *Listings {
	return &Listings{api: api, seller: seller}
}

func (l *Listings) Seller() domain.User {
	return l.seller
}

// Load fetches all products and keeps the seller's own. When the seller id
// is unknown every product is kept.
func (l *Listings) Load(ctx context.Context) error {
	const op = "Listings.Load"
	log := slog.With("op", op)

	l.mu.Lock()
	seq := l.list.begin()
	l.mu.Unlock()

	ps, err := l.api.ListProducts(ctx)
	if err == nil && l.seller.ID != 0 {
		own := make([]domain.Product, 0, len(ps))
		for _, p := range ps {
			if p.SellerID == l.seller.ID {
				own = append(own, p)
			}
		}
		ps = own
	}

	l.mu.Lock()
	l.list.end(seq, ps, err)
	l.mu.Unlock()

	if err != nil {
		log.Warn("failed to load listings", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *Listings) Refresh(ctx context.Context) error {
	return l.Load(ctx)
}

func (l *Listings) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.loading()
}

func (l *Listings) Products() []domain.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.snapshot()
}

// OpenEdit starts editing the listing id, replacing any open draft.
func (l *Listings) OpenEdit(id int64) (EditDraft, error) {
	const op = "Listings.OpenEdit"

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.list.find(id)
	if !ok {
		return EditDraft{}, fmt.Errorf("%s: %w: %d", op, domain.ErrProductNotFound, id)
	}
	d := draftOf(p)
	l.draft = &d
	return d, nil
}

func (l *Listings) Draft() (EditDraft, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.draft == nil {
		return EditDraft{}, false
	}
	return *l.draft, true
}

// UpdateDraft applies fn to the open draft.
func (l *Listings) UpdateDraft(fn func(*EditDraft)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.draft == nil {
		return domain.ErrNoDraft
	}
	fn(l.draft)
	return nil
}

func (l *Listings) AttachImage(img domain.ImageAsset) error {
	return l.UpdateDraft(func(d *EditDraft) {
		d.Image = &img
	})
}

func (l *Listings) CancelEdit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.draft = nil
}

// SaveEdit sends the whole draft, reloads the listings and closes the
// draft. On failure the draft stays open.
func (l *Listings) SaveEdit(ctx context.Context) (domain.Product, error) {
	const op = "Listings.SaveEdit"
	log := slog.With("op", op)

	l.mu.Lock()
	if l.draft == nil {
		l.mu.Unlock()
		return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrNoDraft)
	}
	if l.saving {
		l.mu.Unlock()
		return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrActionInProgress)
	}
	d := *l.draft
	l.saving = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.saving = false
		l.mu.Unlock()
	}()

	f, err := d.Form()
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := l.api.UpdateProductForm(ctx, d.ProductID, f)
	if err != nil {
		log.Warn("edit failed", "err", err, "productID", d.ProductID)
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	err = l.Load(ctx)

	l.mu.Lock()
	if l.draft != nil && l.draft.ProductID == d.ProductID {
		l.draft = nil
	}
	l.mu.Unlock()

	if err != nil {
		return p, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
