package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-circulation/pkg/client"
)

func (c *cli) booksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalogue",
		Args:  cobra.NoArgs,
		RunE: c.authed(func(cmd *cobra.Command, _ []string) error {
			bs, err := c.api.Books(cmd.Context())
			if err != nil {
				return err
			}
			return c.printBooks(bs)
		}),
	}

	var in client.CreateBookRequest
	add := &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a title to the catalogue (staff)",
		Args:  cobra.ExactArgs(2),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			in.Title, in.Author = args[0], args[1]
			b, err := c.api.CreateBook(cmd.Context(), in)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(b)
			}
			fmt.Fprintf(c.out, "added %s %q with %d copies\n", b.BookID, b.Title, b.TotalCopies)
			return nil
		}),
	}
	add.Flags().StringVar(&in.ISBN, "isbn", "", "ISBN")
	add.Flags().IntVar(&in.LoanDays, "loan-days", 0, "loan length in days (0 uses the server default)")
	add.Flags().IntVar(&in.Copies, "copies", 1, "number of copies")
	cmd.AddCommand(add)
	return cmd
}
