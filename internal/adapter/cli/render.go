package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/zibot/farmconnect/internal/adapter/apiclient"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/service"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderProducts(w io.Writer, title string, ps []domain.Product) {
	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Qty", "Category", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for _, p := range ps {
		t.AppendRow(table.Row{p.ID, p.Name, "$" + p.Price.String(), p.Quantity, p.Category, p.Status})
	}
	if len(ps) == 0 {
		t.AppendFooter(table.Row{"", "No products found."})
	}
	t.Render()
}

// renderModeration marks selected rows with "*".
func renderModeration(w io.Writer, m *service.Moderation) {
	metrics := m.Metrics()
	t := newTable(w)
	t.SetTitle(fmt.Sprintf(
		"Total %d  Approved %d  Pending %d  Blocked %d  Selected %d",
		metrics.Total, metrics.Approved, metrics.Pending, metrics.Blocked,
		len(m.Selected()),
	))
	t.AppendHeader(table.Row{"", "ID", "Name", "Price", "Seller", "Status"})
	for _, p := range m.Products() {
		mark := ""
		if m.IsSelected(p.ID) {
			mark = "*"
		}
		t.AppendRow(table.Row{mark, p.ID, p.Name, "$" + p.Price.String(), p.SellerID, p.Status})
	}
	t.Render()
}

func renderMetrics(w io.Writer, m domain.Metrics) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Total", "Approved", "Pending", "Blocked"})
	t.AppendRow(table.Row{m.Total, m.Approved, m.Pending, m.Blocked})
	t.Render()
}

func renderCategories(w io.Writer, categories []string, current string) {
	for _, c := range categories {
		mark := " "
		if c == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\n", mark, c)
	}
}

func renderDraft(w io.Writer, d service.EditDraft) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Edit product %d", d.ProductID))
	t.AppendRows([]table.Row{
		{"name", d.Name},
		{"price", d.Price},
		{"quantity", d.Quantity},
		{"category", d.Category},
		{"description", d.Description},
		{"image", imageLabel(d.Image)},
	})
	t.Render()
}

func renderInput(w io.Writer, in service.ProductInput) {
	t := newTable(w)
	t.SetTitle("New product")
	t.AppendRows([]table.Row{
		{"name *", in.Name},
		{"price *", in.Price},
		{"quantity *", in.Quantity},
		{"category *", in.Category},
		{"location", in.Location},
		{"description", in.Description},
		{"image", imageLabel(in.Image)},
	})
	t.Render()
}

func imageLabel(img *domain.ImageAsset) string {
	if img == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", img.Name(), img.ContentType())
}

type productJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SellerID    int64  `json:"seller_id"`
	Status      string `json:"status"`
}

func writeProductsJSON(w io.Writer, ps []domain.Product) error {
	out := make([]productJSON, len(ps))
	for i, p := range ps {
		out[i] = productJSON{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price.String(),
			Quantity:    p.Quantity,
			Category:    p.Category,
			Location:    p.Location,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			SellerID:    p.SellerID,
			Status:      string(p.Status),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var localErrors = []error{
	domain.ErrRequiredFields,
	domain.ErrNoSellerContext,
	domain.ErrImagePermission,
	domain.ErrNotAnImage,
	domain.ErrInvalidStatus,
	domain.ErrUnknownRole,
	domain.ErrProductNotFound,
	domain.ErrActionInProgress,
	domain.ErrNoDraft,
}

// errorText is what a screen shows for err: the server's response text,
// a local validation message or the error itself.
func errorText(err error) string {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	if errors.Is(err, errUsage) || errors.Is(err, errUnterminatedQuote) {
		return err.Error()
	}
	for _, e := range localErrors {
		if errors.Is(err, e) {
			return capitalize(e.Error()) + "."
		}
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
