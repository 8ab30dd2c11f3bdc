package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/foodsheet/internal/catalog"
	"github.com/roach88/foodsheet/internal/menu"
	"github.com/roach88/foodsheet/internal/model"
)

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Maintain the product catalog",
	}
	cmd.AddCommand(newProductListCommand(rootOpts))
	cmd.AddCommand(newProductAddCommand(rootOpts))
	cmd.AddCommand(newProductUpdateCommand(rootOpts))
	cmd.AddCommand(newProductRemoveCommand(rootOpts))
	cmd.AddCommand(newProductImportCommand(rootOpts))
	cmd.AddCommand(newProductExportCommand(rootOpts))
	return cmd
}

// withCatalog opens the store and runs fn with a catalog service over it.
func withCatalog(opts *RootOptions, cmd *cobra.Command, fn func(*adminEnv, *catalog.Service) error) error {
	env, err := openAdmin(opts, cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env, catalog.NewService(env.store, env.logger))
}

func newProductListCommand(rootOpts *RootOptions) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List catalog entries in store order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(env *adminEnv, svc *catalog.Service) error {
				list := svc.List
				if activeOnly {
					list = svc.ListActive
				}
				products, err := list(cmd.Context())
				if err != nil {
					return env.out.Fail("failed to list products", err)
				}
				return env.out.Success(products, func(w io.Writer) error {
					return writeProductTable(w, products)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only list products customers can order")
	return cmd
}

func writeProductTable(w io.Writer, products []model.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY\tSTATUS\tBRAND\tVERSION")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ID, p.Name, p.Price.Display(), p.Category.Label(), p.Status, p.Brand, p.Version)
	}
	return tw.Flush()
}

// productFlags holds the editable product fields as raw flag text.
type productFlags struct {
	name     string
	price    string
	category string
	status   string
	imageURL string
	brand    string
}

func (f *productFlags) register(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "", "unit price in baht, e.g. 60 or 25.50")
	cmd.Flags().StringVar(&f.category, "category", "", "category key or Thai label")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "image reference")
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand")
	if withStatus {
		cmd.Flags().StringVar(&f.status, "status", "", "active or inactive")
	}
}

func usageError(field string, err error) error {
	return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", field), err)
}

// failUsage reports a bad flag value.
func failUsage(out *OutputFormatter, err error) error {
	_ = out.Error(ErrCodeUsage, err.Error(), nil)
	return reported(err)
}

func newProductAddCommand(rootOpts *RootOptions) *cobra.Command {
	var id string
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new active product",
		Long: `Add a new product to the catalog. New products are always active.

Example:
  foodsheet product add --id P001 --name "ผัดไทย" --price 60 \
    --category main-dish --image-url https://img.example/padthai.jpg --brand Kitchen`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(env *adminEnv, svc *catalog.Service) error {
				p := model.Product{
					ID:       id,
					Name:     flags.name,
					ImageURL: flags.imageURL,
					Brand:    flags.brand,
				}
				if flags.price != "" {
					price, err := model.ParseAmount(flags.price)
					if err != nil {
						return failUsage(env.out, usageError("price", err))
					}
					p.Price = price
				}
				if flags.category != "" {
					category, err := model.ParseCategory(flags.category)
					if err != nil {
						return env.out.Fail("failed to add product", err)
					}
					p.Category = category
				}

				added, err := svc.Add(cmd.Context(), p)
				if err != nil {
					return env.out.Fail("failed to add product", err)
				}
				return env.out.Success(added, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Added %s (%s, %s)\n", added.ID, added.Name, added.Price.Display())
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "product id")
	flags.register(cmd, false)
	return cmd
}

func newProductUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var version int64
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Change fields of an existing product",
		Long: `Change the given fields of a product. Fields whose flags are not set keep
their stored values; an empty --image-url keeps the current image.

With --version the update only applies if the stored version matches.

Example:
  foodsheet product update P001 --price 65 --version 3
  foodsheet product update P001 --status inactive`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(env *adminEnv, svc *catalog.Service) error {
				if version < 0 {
					return failUsage(env.out, usageError("version", fmt.Errorf("must not be negative, got %d", version)))
				}
				changes, err := flags.changes(cmd)
				if err != nil {
					return env.out.Fail("failed to update product", err)
				}

				updated, err := svc.Update(cmd.Context(), args[0], version, changes)
				if err != nil {
					return env.out.Fail("failed to update product", err)
				}
				return env.out.Success(updated, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Updated %s (version %d)\n", updated.ID, updated.Version)
					return err
				})
			})
		},
	}

	cmd.Flags().Int64Var(&version, "version", 0, "expected stored version (0 skips the check)")
	flags.register(cmd, true)
	return cmd
}

// changes builds catalog.Changes from the flags that were set.
func (f *productFlags) changes(cmd *cobra.Command) (catalog.Changes, error) {
	var c catalog.Changes
	set := cmd.Flags().Changed

	if set("name") {
		c.Name = &f.name
	}
	if set("price") {
		price, err := model.ParseAmount(f.price)
		if err != nil {
			return catalog.Changes{}, model.NewValidationError(model.ErrCodeInvalidPrice, "price", err.Error())
		}
		c.Price = &price
	}
	if set("category") {
		category, err := model.ParseCategory(f.category)
		if err != nil {
			return catalog.Changes{}, err
		}
		c.Category = &category
	}
	if set("status") {
		status, err := model.ParseProductStatus(f.status)
		if err != nil {
			return catalog.Changes{}, err
		}
		c.Status = &status
	}
	if set("image-url") {
		c.ImageURL = &f.imageURL
	}
	if set("brand") {
		c.Brand = &f.brand
	}
	return c, nil
}

func newProductRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var version int64

	cmd := &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Delete a product from the catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(env *adminEnv, svc *catalog.Service) error {
				if version < 0 {
					return failUsage(env.out, usageError("version", fmt.Errorf("must not be negative, got %d", version)))
				}
				if err := svc.Remove(cmd.Context(), args[0], version); err != nil {
					return env.out.Fail("failed to remove product", err)
				}
				return env.out.Success(map[string]string{"removed": args[0]}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Removed %s\n", args[0])
					return err
				})
			})
		},
	}

	cmd.Flags().Int64Var(&version, "version", 0, "expected stored version (0 skips the check)")
	return cmd
}

func newProductImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <menu-dir>",
		Short: "Upsert every product declared in a CUE menu directory",
		Long: `Load a CUE menu directory and write its products to the catalog. Unknown
ids are added, known ids are overwritten. Nothing is written if the menu
has errors.

Example:
  foodsheet product import ./menu --db foodsheet.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)

			m, errs := menu.Load(args[0], menu.LoadModeCollectAll)
			if m == nil {
				return outputMenuLoadFailure(out, errs)
			}
			if len(errs) > 0 {
				return outputMenuIssues(out, m, errs)
			}
			out.VerboseLog("Loaded %d product(s) from %d file(s)", len(m.Products), m.FileCount)

			return withCatalog(rootOpts, cmd, func(env *adminEnv, svc *catalog.Service) error {
				result, err := svc.Import(cmd.Context(), m.Products)
				if err != nil {
					return env.out.Fail("import stopped", err)
				}
				env.logger.Info("menu imported", "dir", args[0],
					"added", len(result.Added), "updated", len(result.Updated))
				return env.out.Success(result, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Imported %d product(s): %d added, %d updated\n",
						len(result.Added)+len(result.Updated), len(result.Added), len(result.Updated))
					return err
				})
			})
		},
	}
}
