package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"library-circulation/pkg/api"
	"library-circulation/pkg/caldate"
	"library-circulation/pkg/client"
)

type recordFunc func(c *client.Client, ctx context.Context, recordID string) (*api.Record, error)

type decisionFunc func(c *client.Client, ctx context.Context, recordID, note string) (*api.Record, error)

func parseDateFlag(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := caldate.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}

// borrowCmd is self-service: the copy is held until staff confirm pickup.
func (c *cli) borrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Reserve a copy for yourself",
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			rec, err := c.api.SelfBorrow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(rec)
			}
			fmt.Fprintf(c.out, "reserved %s: pick it up at the desk, due %s\n", rec.RecordID, rec.DueDate)
			return nil
		}),
	}
}

func (c *cli) loansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List borrow records",
		Args:  cobra.NoArgs,
		RunE: c.authed(func(cmd *cobra.Command, _ []string) error {
			rs, err := c.api.Borrows(cmd.Context())
			if err != nil {
				return err
			}
			return c.printRecords(rs)
		}),
	}
	cmd.AddCommand(
		c.recordCmd("show", "Show one borrow record", (*client.Client).Borrow),
		c.recordCmd("pickup", "Confirm the borrower collected the copy (staff)", (*client.Client).ConfirmPickup),
		c.recordCmd("reject-return", "Send a return request back to borrowed (staff)", (*client.Client).RejectReturn),
		c.returnCmd(),
		c.lendCmd(),
		c.finalizeCmd(),
		c.dueDateCmd(),
		c.extendCmd(),
		c.decideCmd("approve", "Approve the pending extension (staff)", (*client.Client).ApproveExtension),
		c.decideCmd("disapprove", "Disapprove the pending extension (staff)", (*client.Client).DisapproveExtension),
	)
	return cmd
}

func (c *cli) recordCmd(name, short string, fn recordFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <record-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			rec, err := fn(c.api, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printRecord(rec)
		}),
	}
}

// returnCmd loads the record first so the client can explain locally why a
// return cannot be requested.
func (c *cli) returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <record-id>",
		Short: "Ask staff to take the book back",
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			rec, err := c.api.Borrow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rec, err = c.api.RequestReturn(cmd.Context(), rec)
			if err != nil {
				return err
			}
			return c.printRecord(rec)
		}),
	}
}

func (c *cli) lendCmd() *cobra.Command {
	var borrowDate, dueDate string
	cmd := &cobra.Command{
		Use:   "lend <user-id> <book-id>",
		Short: "Lend a copy over the desk (staff)",
		Args:  cobra.ExactArgs(2),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			in := client.CreateBorrowRequest{UserID: args[0], BookID: args[1]}
			var err error
			if in.BorrowDate, err = parseDateFlag("borrowed", borrowDate); err != nil {
				return err
			}
			if in.DueDate, err = parseDateFlag("due", dueDate); err != nil {
				return err
			}
			rec, err := c.api.CreateBorrow(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.printRecord(rec)
		}),
	}
	cmd.Flags().StringVar(&borrowDate, "borrowed", "", "borrow date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&dueDate, "due", "", "due date YYYY-MM-DD (default from the book's loan length)")
	return cmd
}

func (c *cli) finalizeCmd() *cobra.Command {
	var returnDate, fine string
	cmd := &cobra.Command{
		Use:   "finalize <record-id>",
		Short: "Close a loan when the copy is handed in (staff)",
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			var (
				in  client.FinalizeReturnRequest
				err error
			)
			if in.ReturnDate, err = parseDateFlag("returned", returnDate); err != nil {
				return err
			}
			if fine != "" {
				d, err := decimal.NewFromString(fine)
				if err != nil {
					return fmt.Errorf("--fine: %w", err)
				}
				in.Fine = &d
			}
			rec, err := c.api.FinalizeReturn(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return c.printRecord(rec)
		}),
	}
	cmd.Flags().StringVar(&returnDate, "returned", "", "return date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&fine, "fine", "", "final fine (default the accrued overdue fine)")
	return cmd
}

func (c *cli) dueDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due-date <record-id> <YYYY-MM-DD>",
		Short: "Move the due date of an active loan (staff)",
		Args:  cobra.ExactArgs(2),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			due, err := caldate.Parse(args[1])
			if err != nil {
				return err
			}
			rec, err := c.api.UpdateDueDate(cmd.Context(), args[0], due)
			if err != nil {
				return err
			}
			return c.printRecord(rec)
		}),
	}
}

func (c *cli) extendCmd() *cobra.Command {
	var days float64
	var reason string
	cmd := &cobra.Command{
		Use:   "extend <record-id>",
		Short: "Extend a loan; patrons file a request for staff to decide",
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			res, err := c.api.RequestExtension(cmd.Context(), args[0], days, reason)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(res)
			}
			if res.Policy == "immediate" {
				fmt.Fprintf(c.out, "extended %s: now due %s\n", res.Record.RecordID, res.Record.DueDate)
				return nil
			}
			fmt.Fprintf(c.out, "requested %d more days for %s; waiting for staff\n",
				res.Record.ExtensionRequestedDays, res.Record.RecordID)
			return nil
		}),
	}
	cmd.Flags().Float64Var(&days, "days", 7, "days to add; fractions are dropped")
	cmd.Flags().StringVar(&reason, "reason", "", "why the extension is needed")
	return cmd
}

func (c *cli) decideCmd(name, short string, fn decisionFunc) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   name + " <record-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			rec, err := fn(c.api, cmd.Context(), args[0], note)
			if err != nil {
				return err
			}
			return c.printRecord(rec)
		}),
	}
	cmd.Flags().StringVar(&note, "note", "", "note for the borrower")
	return cmd
}
