package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"library-circulation/pkg/client"
)

func (c *cli) finesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fines",
		Short: "List fines",
		Args:  cobra.NoArgs,
		RunE: c.authed(func(cmd *cobra.Command, _ []string) error {
			fs, err := c.api.Fines(cmd.Context())
			if err != nil {
				return err
			}
			return c.printFines(fs)
		}),
	}
	cmd.AddCommand(c.fineCreateCmd(), c.fineStatusCmd(), c.fineProofsCmd(), c.finePayCmd())
	return cmd
}

func (c *cli) fineCreateCmd() *cobra.Command {
	var in client.CreateFineRequest
	var reason string
	cmd := &cobra.Command{
		Use:   "create <user-id> <amount>",
		Short: "Charge a manual fine (staff)",
		Args:  cobra.ExactArgs(2),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			in.UserID, in.Amount, in.Reason = args[0], amount, reason
			f, err := c.api.CreateFine(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.printFine(f)
		}),
	}
	cmd.Flags().StringVar(&reason, "reason", "damage", "overdue, damage or other")
	cmd.Flags().StringVar(&in.RecordID, "record", "", "related borrow record")
	cmd.Flags().StringVar(&in.Note, "note", "", "note shown to the user")
	return cmd
}

func (c *cli) fineStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <fine-id> <status>",
		Short: "Set a fine's status: paid, cancelled, active or pending_verification",
		Args:  cobra.ExactArgs(2),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			f, err := c.api.UpdateFineStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return c.printFine(f)
		}),
	}
}

func (c *cli) fineProofsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proofs <fine-id>",
		Short: "List payment proofs attached to a fine",
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			ps, err := c.api.FineProofs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(ps)
			}
			rows := make([][]string, 0, len(ps))
			for _, p := range ps {
				rows = append(rows, []string{p.ProofID, p.URL, p.ContentType, fmt.Sprint(p.SizeBytes)})
			}
			return c.table("PROOF ID\tURL\tTYPE\tBYTES", rows)
		}),
	}
}

// finePayCmd uploads a receipt, which submits the fine for verification.
func (c *cli) finePayCmd() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "pay <fine-id> <receipt-file>",
		Short: "Upload a payment receipt (image or PDF)",
		Args:  cobra.ExactArgs(2),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			ct := contentType
			if ct == "" {
				ct = mime.TypeByExtension(filepath.Ext(args[1]))
			}
			if ct == "" {
				ct = "application/octet-stream"
			}
			res, err := c.api.SubmitFineProof(cmd.Context(), args[0], filepath.Base(args[1]), ct, f)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(res)
			}
			fmt.Fprintf(c.out, "uploaded %s; fine %s is %s\n", res.Proof.URL, res.Fine.FineID, res.Fine.Status)
			return nil
		}),
	}
	cmd.Flags().StringVar(&contentType, "type", "", "content type (default from the file extension)")
	return cmd
}
