package cli

import (
	"encoding/csv"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/foodsheet/internal/catalog"
	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/order"
)

// Header rows of the CSV exports, in sheet column order.
var (
	productCSVHeader = []string{"id", "name", "price", "category", "status", "image_url", "brand"}
	orderCSVHeader   = []string{"timestamp", "customer_name", "items_json", "total", "special_instructions", "status"}
)

func newProductExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as CSV rows",
		Long: `Write every product as a CSV row in the column order the shop's sheet
uses: id, name, price, category, status, image_url, brand.

Example:
  foodsheet product export > products.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(env *adminEnv, svc *catalog.Service) error {
				products, err := svc.List(cmd.Context())
				if err != nil {
					return env.out.Fail("failed to list products", err)
				}
				rows := make([][]string, len(products))
				for i, p := range products {
					rows[i] = model.ProductRow(p)
				}
				return writeCSV(cmd.OutOrStdout(), productCSVHeader, rows)
			})
		},
	}
}

func newOrderExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write all orders as CSV rows",
		Long: `Write every order as a CSV row: timestamp, customer_name, items_json,
total, special_instructions, status. items_json is the canonical encoding
stored with the order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrders(rootOpts, cmd, func(env *adminEnv, svc *order.Service) error {
				orders, err := svc.List(cmd.Context())
				if err != nil {
					return env.out.Fail("failed to list orders", err)
				}
				rows := make([][]string, len(orders))
				for i, o := range orders {
					row, err := model.OrderRow(o)
					if err != nil {
						return env.out.Fail("failed to encode order "+o.ID, err)
					}
					rows[i] = row
				}
				return writeCSV(cmd.OutOrStdout(), orderCSVHeader, rows)
			})
		},
	}
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return WrapExitError(ExitFailure, "failed to write CSV", err)
	}
	return nil
}
