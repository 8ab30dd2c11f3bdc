package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/order"
)

// OrderEntry is one row of the order listing.
type OrderEntry struct {
	Number  int         `json:"number"`
	Summary string      `json:"summary"`
	Order   model.Order `json:"order"`
}

// NewOrderCommand creates the order command group.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and manage submitted orders",
	}
	cmd.AddCommand(newOrderListCommand(rootOpts))
	cmd.AddCommand(newOrderStatusCommand(rootOpts))
	cmd.AddCommand(newOrderExportCommand(rootOpts))
	return cmd
}

func withOrders(opts *RootOptions, cmd *cobra.Command, fn func(*adminEnv, *order.Service) error) error {
	env, err := openAdmin(opts, cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env, order.NewService(env.store, env.logger))
}

func newOrderListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List orders in submission order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrders(rootOpts, cmd, func(env *adminEnv, svc *order.Service) error {
				orders, err := svc.List(cmd.Context())
				if err != nil {
					return env.out.Fail("failed to list orders", err)
				}

				entries := make([]OrderEntry, len(orders))
				for i, o := range orders {
					entries[i] = OrderEntry{Number: i + 1, Summary: order.Summary(i+1, o), Order: o}
				}
				return env.out.Success(entries, func(w io.Writer) error {
					return writeOrderTable(w, entries, rootOpts.Verbose)
				})
			})
		},
	}
}

func writeOrderTable(w io.Writer, entries []OrderEntry, withItems bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No orders.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SUMMARY\tSTATUS\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Summary, e.Order.Status, e.Order.ID)
		if !withItems {
			continue
		}
		for _, it := range e.Order.Items {
			fmt.Fprintf(tw, "  %d x %s\t%s\t\n", it.Quantity, it.Name, it.Subtotal.Display())
		}
		if note := strings.TrimSpace(e.Order.SpecialInstructions); note != "" {
			fmt.Fprintf(tw, "  note: %s\t\t\n", note)
		}
	}
	return tw.Flush()
}

func newOrderStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set an order's status",
		Long: `Set an order to pending, completed or cancelled. Any status may follow
any other.

Example:
  foodsheet order status 0190a1b2-... completed`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrders(rootOpts, cmd, func(env *adminEnv, svc *order.Service) error {
				o, err := svc.SetStatus(cmd.Context(), args[0], args[1])
				if err != nil {
					return env.out.Fail("failed to set order status", err)
				}
				return env.out.Success(o, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Order %s is now %s\n", o.ID, o.Status)
					return err
				})
			})
		},
	}
}
