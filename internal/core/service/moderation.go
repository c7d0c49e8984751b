package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
)

// Phase is the state of the admin selection machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseActing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelecting:
		return "selecting"
	case PhaseActing:
		return "acting"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Moderation is the admin workspace: the full product list, a multi
// selection over it and bulk actions on the selection.
//
// The selection is always a subset of the loaded ids and keeps the order
// in which ids were selected. Only one bulk action runs at a time.
type Moderation struct {
	api port.ModerationAPI

	mu       sync.Mutex
	list     productList
	selected []int64
	acting   bool
}

func NewModeration(api port.ModerationAPI) *Moderation {
	return &Moderation{api: api}
}

// Load fetches all products and drops selected ids that are gone.
func (m *Moderation) Load(ctx context.Context) error {
	const op = "Moderation.Load"
	log := slog.With("op", op)

	m.mu.Lock()
	seq := m.list.begin()
	m.mu.Unlock()

	ps, err := m.api.ListProducts(ctx)

	m.mu.Lock()
	if m.list.end(seq, ps, err) {
		m.selected = slices.DeleteFunc(m.selected, func(id int64) bool {
			_, ok := m.list.find(id)
			return !ok
		})
	}
	m.mu.Unlock()

	if err != nil {
		log.Warn("failed to load products", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Moderation) Refresh(ctx context.Context) error {
	return m.Load(ctx)
}

func (m *Moderation) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.loading()
}

func (m *Moderation) Products() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.snapshot()
}

func (m *Moderation) Metrics() domain.Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CountStatuses(m.list.products)
}

func (m *Moderation) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.acting:
		return PhaseActing
	case len(m.selected) > 0:
		return PhaseSelecting
	}
	return PhaseIdle
}

// ToggleSelect adds id to the selection or removes it when present.
func (m *Moderation) ToggleSelect(id int64) error {
	const op = "Moderation.ToggleSelect"

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := slices.Index(m.selected, id); i >= 0 {
		m.selected = slices.Delete(m.selected, i, i+1)
		return nil
	}
	if _, ok := m.list.find(id); !ok {
		return fmt.Errorf("%s: %w: %d", op, domain.ErrProductNotFound, id)
	}
	m.selected = append(m.selected, id)
	return nil
}

func (m *Moderation) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = nil
}

// ToggleSelectAll clears the selection when every loaded product is
// selected and otherwise selects every loaded product, whatever its status.
func (m *Moderation) ToggleSelectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.list.products) > 0 && len(m.selected) == len(m.list.products) {
		m.selected = nil
		return
	}
	m.selected = make([]int64, 0, len(m.list.products))
	for _, p := range m.list.products {
		m.selected = append(m.selected, p.ID)
	}
}

// Selected returns the selected ids in selection order.
func (m *Moderation) Selected() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.selected)
}

func (m *Moderation) IsSelected(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.selected, id)
}

// UpdateStatus sets status on ids with a single bulk call, then reloads the
// list and clears the selection. Empty ids is a no-op. On failure the
// selection is kept.
func (m *Moderation) UpdateStatus(
	ctx context.Context, ids []int64, status domain.ProductStatus,
) error {
	const op = "Moderation.UpdateStatus"
	log := slog.With("op", op)

	if len(ids) == 0 {
		return nil
	}
	if !status.Valid() {
		return fmt.Errorf("%s: %w: %q", op, domain.ErrInvalidStatus, status)
	}
	if err := m.startAction(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.stopAction()

	if _, err := m.api.BulkUpdateStatus(ctx, ids, status); err != nil {
		log.Warn("bulk status update failed", "err", err, "ids", ids)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.afterAction(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteProducts removes ids, one by the single delete endpoint and more
// by the bulk one, then reloads the list and clears the selection.
func (m *Moderation) DeleteProducts(ctx context.Context, ids []int64) error {
	const op = "Moderation.DeleteProducts"
	log := slog.With("op", op)

	if len(ids) == 0 {
		return nil
	}
	if err := m.startAction(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.stopAction()

	var err error
	if len(ids) == 1 {
		err = m.api.DeleteProduct(ctx, ids[0])
	} else {
		var n int
		n, err = m.api.BulkDeleteProducts(ctx, ids)
		log.Debug("bulk delete", "requested", len(ids), "deleted", n)
	}
	if err != nil {
		log.Warn("delete failed", "err", err, "ids", ids)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.afterAction(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Moderation) startAction() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acting {
		return domain.ErrActionInProgress
	}
	m.acting = true
	return nil
}

func (m *Moderation) stopAction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acting = false
}

// afterAction reloads and clears the selection, even when the reload fails.
func (m *Moderation) afterAction(ctx context.Context) error {
	err := m.Load(ctx)
	m.ClearSelection()
	return err
}
