// Package snapshot exports the catalog as an Avro object container file.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hamba/avro/v2/ocf"
	"github.com/shopspring/decimal"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
	"github.com/zibot/farmconnect/pkg/schema"
)

type Exporter struct {
	lister port.ProductsLister
}

func NewExporter(lister port.ProductsLister) Exporter {
	return Exporter{lister}
}

// Export fetches the catalog and writes it to w. It returns the number of
// records written.
func (e Exporter) Export(ctx context.Context, w io.Writer) (int, error) {
	const op = "Exporter.Export"
	log := slog.With("op", op)

	ps, err := e.lister.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := Write(w, ps); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("catalog exported", "records", len(ps))
	return len(ps), nil
}

// Write encodes ps as deflate compressed ProductV1 records.
func Write(w io.Writer, ps []domain.Product) error {
	const op = "snapshot.Write"

	enc, err := ocf.NewEncoder(
		schema.ProductSchemaTextV1, w, ocf.WithCodec(ocf.Deflate),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range ps {
		if err := enc.Encode(fromDomain(p)); err != nil {
			return fmt.Errorf("%s: product %d: %w", op, p.ID, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Read decodes a file written by Write.
func Read(r io.Reader) ([]domain.Product, error) {
	const op = "snapshot.Read"

	dec, err := ocf.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var ps []domain.Product
	for dec.HasNext() {
		var v schema.ProductV1
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p, err := toDomain(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ps = append(ps, p)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func fromDomain(p domain.Product) schema.ProductV1 {
	return schema.ProductV1{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Quantity:    int64(p.Quantity),
		Category:    p.Category,
		Location:    optional(p.Location),
		Description: optional(p.Description),
		ImageURL:    optional(p.ImageURL),
		SellerID:    p.SellerID,
		Status:      string(p.Status),
	}
}

func toDomain(v schema.ProductV1) (domain.Product, error) {
	price, err := decimal.NewFromString(v.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d price: %w", v.ID, err)
	}
	return domain.Product{
		ID:          v.ID,
		Name:        v.Name,
		Price:       price,
		Quantity:    int(v.Quantity),
		Category:    v.Category,
		Location:    deref(v.Location),
		Description: deref(v.Description),
		ImageURL:    deref(v.ImageURL),
		SellerID:    v.SellerID,
		Status:      domain.ProductStatus(v.Status),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
