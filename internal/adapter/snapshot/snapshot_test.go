package snapshot

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zibot/farmconnect/internal/core/domain"
)

type stubLister struct {
	ps  []domain.Product
	err error
}

func (s stubLister) ListProducts(context.Context) ([]domain.Product, error) {
	return s.ps, s.err
}

func catalog() []domain.Product {
	return []domain.Product{
		{
			ID: 1, Name: "Eggs", Price: decimal.RequireFromString("3.20"),
			Quantity: 12, Category: "Dairy", Location: "Kent",
			SellerID: 7, Status: domain.StatusApproved,
		},
		{
			ID: 2, Name: "Kale", Price: decimal.RequireFromString("0.99"),
			Quantity: 3, Category: "Vegetables", Description: "curly",
			ImageURL: "https://cdn.test/kale.png", SellerID: 8, Status: domain.StatusPending,
		},
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, catalog()))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := catalog()
	for i := range want {
		assert.True(t, want[i].Price.Equal(got[i].Price))
		got[i].Price = want[i].Price
		assert.Equal(t, want[i], got[i])
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExporter(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := NewExporter(stubLister{ps: catalog()}).Export(context.Background(), &buf)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NotZero(t, buf.Len())
	})

	t.Run("ListFails", func(t *testing.T) {
		boom := errors.New("boom")
		var buf bytes.Buffer
		_, err := NewExporter(stubLister{err: boom}).Export(context.Background(), &buf)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, buf.Len())
	})
}
