// Package cli is the terminal front end: a cobra command tree with an
// interactive readline shell as its default command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zibot/farmconnect/config"
	"github.com/zibot/farmconnect/internal/adapter/snapshot"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
	"github.com/zibot/farmconnect/internal/core/service"
)

// Services builds the controllers behind the screens.
type Services interface {
	Session() service.Session
	Catalog() *service.Catalog
	Moderation() *service.Moderation
	Listings(seller domain.User) *service.Listings
	Submission(seller domain.User) service.Submission
	ImagePicker() port.ImagePicker
	Exporter() snapshot.Exporter
}

// Builder turns the loaded configuration into Services.
type Builder func(config.Config) (Services, error)

type runtime struct {
	cfg config.Config
	svc Services
}

func NewRootCmd(build Builder) *cobra.Command {
	rt := new(runtime)

	root := &cobra.Command{
		Use:           "farmconnect",
		Short:         "FarmConnect marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			svc, err := build(cfg)
			if err != nil {
				return err
			}
			rt.cfg, rt.svc = cfg, svc
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.shell(cmd, nil)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		rt.shellCmd(),
		rt.loginCmd(),
		rt.signupCmd(),
		rt.productsCmd(),
		rt.configCmd(),
	)
	return root
}

// Execute runs the command tree and prints a failure the way the shell does.
func Execute(ctx context.Context, root *cobra.Command) int {
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", errorText(err))
		return 1
	}
	return 0
}

func (rt *runtime) shell(cmd *cobra.Command, dst *domain.Destination) error {
	ctx := cmd.Context()
	s := NewShell(rt.svc, cmd.OutOrStdout())
	if dst != nil {
		s.Enter(ctx, *dst)
	}
	return s.Run(ctx, rt.cfg.Shell.HistoryFile)
}

func (rt *runtime) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell at the sign in screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.shell(cmd, nil)
		},
	}
}

func (rt *runtime) loginCmd() *cobra.Command {
	var accountType string
	cmd := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and open your workspace in the shell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(accountType)
			if err != nil {
				return err
			}
			dst, err := rt.svc.Session().Login(cmd.Context(), args[0], args[1], role)
			if err != nil {
				return err
			}
			return rt.shell(cmd, &dst)
		},
	}
	cmd.Flags().StringVar(&accountType, "as", string(domain.RoleBuyer), "account type used when the server returns no role")
	return cmd
}

func (rt *runtime) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <name> <email> <password> <buyer|seller|admin>",
		Short: "Create an account and open its workspace in the shell",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(args[3])
			if err != nil {
				return err
			}
			dst, err := rt.svc.Session().Signup(cmd.Context(), args[0], args[1], args[2], role)
			if err != nil {
				return err
			}
			return rt.shell(cmd, &dst)
		},
	}
}

func (rt *runtime) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and moderate products without the shell",
	}
	cmd.AddCommand(
		rt.productsListCmd(),
		rt.productsCategoriesCmd(),
		rt.productsExportCmd(),
		rt.productsStatusCmd(),
		rt.productsDeleteCmd(),
	)
	return cmd
}

func (rt *runtime) productsListCmd() *cobra.Command {
	var (
		search   string
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products matching a search and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := rt.svc.Catalog()
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}
			c.SetSearch(search)
			c.SetCategory(category)

			if asJSON {
				return writeProductsJSON(cmd.OutOrStdout(), c.Filtered())
			}
			renderProducts(cmd.OutOrStdout(), "Category: "+c.Category(), c.Filtered())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive text in name or description")
	cmd.Flags().StringVarP(&category, "category", "c", service.AllCategories, "category to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (rt *runtime) productsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List category facets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := rt.svc.Catalog()
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}
			for _, name := range c.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (rt *runtime) productsExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to an Avro object container file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, f.Close())
			}()

			n, err := rt.svc.Exporter().Export(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s.\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "catalog.avro", "output file")
	return cmd
}

func (rt *runtime) productsStatusCmd() *cobra.Command {
	var (
		ids    []int64
		status string
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Set the status of products in one bulk request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := rt.svc.Moderation()
			if err := m.UpdateStatus(cmd.Context(), ids, domain.ProductStatus(status)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s on %d products.\n", status, len(ids))
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "product ids, comma separated")
	cmd.Flags().StringVar(&status, "status", "", "pending, approved or blocked")
	_ = cmd.MarkFlagRequired("ids")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (rt *runtime) productsDeleteCmd() *cobra.Command {
	var ids []int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := rt.svc.Moderation()
			if err := m.DeleteProducts(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d products.\n", len(ids))
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "product ids, comma separated")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func (rt *runtime) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the loaded configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt.cfg.Print(cmd.OutOrStdout())
			return nil
		},
	}
}
