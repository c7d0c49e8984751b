package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
	"github.com/zibot/farmconnect/pkg/formdata"
)

// SubmittedMessage is reported after a product was accepted for review.
const SubmittedMessage = "Product submitted (pending approval)."

const imageField = "image"

// ProductInput is the add product form as typed by the seller.
type ProductInput struct {
	Name        string
	Price       string
	Quantity    string
	Category    string
	Location    string
	Description string
	Image       *domain.ImageAsset
}

func (in ProductInput) complete() bool {
	for _, v := range []string{in.Name, in.Price, in.Quantity, in.Category} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Submission sends new products on behalf of one seller.
type Submission struct {
	creator port.ProductCreator
	seller  domain.User
}

func NewSubmission(creator port.ProductCreator, seller domain.User) Submission {
	return Submission{creator: creator, seller: seller}
}

// Submit validates in and posts it as a multipart form. Validation errors
// are returned before any request is made.
func (s Submission) Submit(
	ctx context.Context, in ProductInput,
) (domain.Product, error) {
	const op = "Submission.Submit"
	log := slog.With("op", op)

	f, err := s.Form(in)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.creator.CreateProduct(ctx, f)
	if err != nil {
		log.Warn("failed to submit product", "err", err)
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("product submitted", "productID", p.ID)
	return p, nil
}

// Form assembles the create form: name, price, quantity, category and
// seller_id, then location, description and image when present.
func (s Submission) Form(in ProductInput) (*formdata.Form, error) {
	if !in.complete() {
		return nil, domain.ErrRequiredFields
	}
	if s.seller.ID == 0 {
		return nil, domain.ErrNoSellerContext
	}

	f := formdata.New().
		Add("name", in.Name).
		Add("price", in.Price).
		Add("quantity", in.Quantity).
		Add("category", in.Category).
		Add("seller_id", strconv.FormatInt(s.seller.ID, 10)).
		AddOptional("location", in.Location).
		AddOptional("description", in.Description)

	if err := attachImage(f, in.Image); err != nil {
		return nil, err
	}
	return f, nil
}

func attachImage(f *formdata.Form, img *domain.ImageAsset) error {
	if img == nil {
		return nil
	}
	return f.Attach(formdata.Attachment{
		Field:       imageField,
		FileName:    img.Name(),
		ContentType: img.ContentType(),
		Content:     img.Content,
	})
}
