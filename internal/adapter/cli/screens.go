package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/service"
)

func (s *Shell) authCommands() []command {
	return []command{
		{
			name: "login",
			args: "<email> <password> [as=buyer|seller|admin]",
			help: "sign in; the account type is used when the server returns no role",
			run:  s.login,
		},
		{
			name: "signup",
			args: "<name> <email> <password> <buyer|seller|admin>",
			help: "create an account and sign in",
			run:  s.signup,
		},
	}
}

func (s *Shell) login(ctx context.Context, args []string) error {
	const usage = "login <email> <password> [as=buyer|seller|admin]"

	accountType := domain.RoleBuyer
	var pos []string
	for _, a := range args {
		if k, v, ok := splitOption(a); ok && k == "as" {
			r, err := domain.ParseRole(v)
			if err != nil {
				return err
			}
			accountType = r
			continue
		}
		pos = append(pos, a)
	}
	if len(pos) != 2 {
		return usageError(usage)
	}

	dst, err := s.svc.Session().Login(ctx, pos[0], pos[1], accountType)
	if err != nil {
		return err
	}
	s.Enter(ctx, dst)
	return nil
}

func (s *Shell) signup(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return usageError("signup <name> <email> <password> <buyer|seller|admin>")
	}
	role, err := domain.ParseRole(strings.ToLower(args[3]))
	if err != nil {
		return err
	}
	dst, err := s.svc.Session().Signup(ctx, args[0], args[1], args[2], role)
	if err != nil {
		return err
	}
	s.Enter(ctx, dst)
	return nil
}

func (s *Shell) buyerCommands() []command {
	return []command{
		{
			name: "list",
			help: "show products matching the current search and category",
			run: func(context.Context, []string) error {
				s.showCatalog()
				return nil
			},
		},
		{
			name: "search",
			args: "[text]",
			help: "filter by name or description; no text clears the search",
			run: func(_ context.Context, args []string) error {
				s.catalog.SetSearch(strings.Join(args, " "))
				s.showCatalog()
				return nil
			},
		},
		{
			name: "category",
			args: "<name>",
			help: "filter by category; All shows every category",
			run: func(_ context.Context, args []string) error {
				s.catalog.SetCategory(strings.Join(args, " "))
				s.showCatalog()
				return nil
			},
		},
		{
			name: "categories",
			help: "list category facets",
			run: func(context.Context, []string) error {
				renderCategories(s.out, s.catalog.Categories(), s.catalog.Category())
				return nil
			},
		},
		{
			name:  "refresh",
			help:  "reload products from the server",
			alias: []string{"r"},
			run: func(ctx context.Context, _ []string) error {
				_ = s.catalog.Refresh(ctx)
				s.showCatalog()
				return nil
			},
		},
	}
}

func (s *Shell) showCatalog() {
	title := "Category: " + s.catalog.Category()
	if q := strings.TrimSpace(s.catalog.Search()); q != "" {
		title += fmt.Sprintf("  Search: %q", q)
	}
	renderProducts(s.out, title, s.catalog.Filtered())
}

func (s *Shell) sellerCommands() []command {
	return []command{
		{
			name: "list",
			help: "show your listings",
			run: func(context.Context, []string) error {
				renderProducts(s.out, "Hi "+displayName(s.user), s.listings.Products())
				return nil
			},
		},
		{
			name:  "refresh",
			help:  "reload your listings",
			alias: []string{"r"},
			run: func(ctx context.Context, _ []string) error {
				s.openSellerDashboard(ctx)
				return nil
			},
		},
		{
			name: "edit",
			args: "<id>",
			help: "open the edit form of a listing",
			run: func(_ context.Context, args []string) error {
				id, err := parseID(args)
				if err != nil {
					return err
				}
				d, err := s.listings.OpenEdit(id)
				if err != nil {
					return err
				}
				renderDraft(s.out, d)
				return nil
			},
		},
		{
			name: "set",
			args: "<name|price|quantity|category|description> <value>",
			help: "change a field of the open edit form",
			run: func(_ context.Context, args []string) error {
				if len(args) < 1 {
					return usageError("set <field> <value>")
				}
				field, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")
				var unknown bool
				err := s.listings.UpdateDraft(func(d *service.EditDraft) {
					switch field {
					case "name":
						d.Name = value
					case "price":
						d.Price = value
					case "quantity":
						d.Quantity = value
					case "category":
						d.Category = value
					case "description":
						d.Description = value
					default:
						unknown = true
					}
				})
				if err != nil {
					return err
				}
				if unknown {
					return fmt.Errorf("unknown field %q", field)
				}
				return nil
			},
		},
		{
			name: "image",
			args: "<path>",
			help: "attach a new image to the open edit form",
			run: func(ctx context.Context, args []string) error {
				if _, ok := s.listings.Draft(); !ok {
					return domain.ErrNoDraft
				}
				img, err := s.pickImage(ctx, args)
				if err != nil {
					return err
				}
				return s.listings.AttachImage(img)
			},
		},
		{
			name: "show",
			help: "show the open edit form",
			run: func(context.Context, []string) error {
				d, ok := s.listings.Draft()
				if !ok {
					return domain.ErrNoDraft
				}
				renderDraft(s.out, d)
				return nil
			},
		},
		{
			name: "save",
			help: "send the edit form",
			run: func(ctx context.Context, _ []string) error {
				if _, err := s.listings.SaveEdit(ctx); err != nil {
					return err
				}
				fmt.Fprintln(s.out, "Saved.")
				renderProducts(s.out, "Hi "+displayName(s.user), s.listings.Products())
				return nil
			},
		},
		{
			name: "cancel",
			help: "close the edit form without saving",
			run: func(context.Context, []string) error {
				s.listings.CancelEdit()
				return nil
			},
		},
		{
			name: "add",
			help: "open the add product form",
			run: func(context.Context, []string) error {
				s.workspace = domain.WorkspaceAdd
				s.submission = s.svc.Submission(s.user)
				s.input = service.ProductInput{}
				renderInput(s.out, s.input)
				return nil
			},
		},
	}
}

func (s *Shell) addProductCommands() []command {
	return []command{
		{
			name: "set",
			args: "<name|price|quantity|category|location|description> <value>",
			help: "fill a field; name, price, quantity and category are required",
			run: func(_ context.Context, args []string) error {
				if len(args) < 1 {
					return usageError("set <field> <value>")
				}
				return s.setInput(strings.ToLower(args[0]), strings.Join(args[1:], " "))
			},
		},
		{
			name: "image",
			args: "<path>",
			help: "attach an image",
			run: func(ctx context.Context, args []string) error {
				img, err := s.pickImage(ctx, args)
				if err != nil {
					return err
				}
				s.input.Image = &img
				return nil
			},
		},
		{
			name: "show",
			help: "show the form",
			run: func(context.Context, []string) error {
				renderInput(s.out, s.input)
				return nil
			},
		},
		{
			name: "submit",
			help: "send the product for approval",
			run: func(ctx context.Context, _ []string) error {
				if _, err := s.submission.Submit(ctx, s.input); err != nil {
					return err
				}
				s.input = service.ProductInput{}
				fmt.Fprintln(s.out, service.SubmittedMessage)
				return nil
			},
		},
		{
			name: "back",
			help: "return to your listings",
			run: func(ctx context.Context, _ []string) error {
				s.input = service.ProductInput{}
				s.openSellerDashboard(ctx)
				return nil
			},
		},
	}
}

func (s *Shell) setInput(field, value string) error {
	switch field {
	case "name":
		s.input.Name = value
	case "price":
		s.input.Price = value
	case "quantity":
		s.input.Quantity = value
	case "category":
		s.input.Category = value
	case "location":
		s.input.Location = value
	case "description":
		s.input.Description = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func (s *Shell) pickImage(ctx context.Context, args []string) (domain.ImageAsset, error) {
	if len(args) != 1 {
		return domain.ImageAsset{}, usageError("image <path>")
	}
	return s.svc.ImagePicker().PickImage(ctx, args[0])
}

func (s *Shell) adminCommands() []command {
	return []command{
		{
			name: "list",
			help: "show all products; * marks the selection",
			run: func(context.Context, []string) error {
				renderModeration(s.out, s.moderation)
				return nil
			},
		},
		{
			name:  "refresh",
			help:  "reload products from the server",
			alias: []string{"r"},
			run: func(ctx context.Context, _ []string) error {
				_ = s.moderation.Refresh(ctx)
				renderModeration(s.out, s.moderation)
				return nil
			},
		},
		{
			name: "select",
			args: "<id>...",
			help: "toggle products in the selection",
			run: func(_ context.Context, args []string) error {
				ids, err := parseIDs(args)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					return usageError("select <id>...")
				}
				for _, id := range ids {
					if err := s.moderation.ToggleSelect(id); err != nil {
						return err
					}
				}
				fmt.Fprintf(s.out, "Selected: %v\n", s.moderation.Selected())
				return nil
			},
		},
		{
			name: "all",
			help: "select every product, or clear when all are selected",
			run: func(context.Context, []string) error {
				s.moderation.ToggleSelectAll()
				fmt.Fprintf(s.out, "Selected: %v\n", s.moderation.Selected())
				return nil
			},
		},
		{
			name: "clear",
			help: "clear the selection",
			run: func(context.Context, []string) error {
				s.moderation.ClearSelection()
				return nil
			},
		},
		s.statusCommand("approve", domain.StatusApproved),
		s.statusCommand("block", domain.StatusBlocked),
		s.statusCommand("pending", domain.StatusPending),
		{
			name: "delete",
			args: "[id...]",
			help: "delete the given products or the selection",
			run: func(ctx context.Context, args []string) error {
				ids, err := s.targetIDs(args)
				if err != nil {
					return err
				}
				if err := s.moderation.DeleteProducts(ctx, ids); err != nil {
					if err := rejected(err); err != nil {
						return err
					}
				}
				renderModeration(s.out, s.moderation)
				return nil
			},
		},
		{
			name: "metrics",
			help: "show status counts",
			run: func(context.Context, []string) error {
				renderMetrics(s.out, s.moderation.Metrics())
				return nil
			},
		},
	}
}

func (s *Shell) statusCommand(name string, status domain.ProductStatus) command {
	return command{
		name: name,
		args: "[id...]",
		help: fmt.Sprintf("set status %s on the given products or the selection", status),
		run: func(ctx context.Context, args []string) error {
			ids, err := s.targetIDs(args)
			if err != nil {
				return err
			}
			if err := s.moderation.UpdateStatus(ctx, ids, status); err != nil {
				if err := rejected(err); err != nil {
					return err
				}
			}
			renderModeration(s.out, s.moderation)
			return nil
		},
	}
}

// rejected returns err when the action was refused before any request.
// Failed requests are already logged by Moderation and keep the selection.
func rejected(err error) error {
	if errors.Is(err, domain.ErrActionInProgress) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return err
	}
	return nil
}

func (s *Shell) targetIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return s.moderation.Selected(), nil
	}
	return parseIDs(args)
}
