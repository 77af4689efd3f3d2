package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"library-circulation/pkg/api"
)

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) table(header string, rows [][]string) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func (c *cli) printBooks(bs []api.Book) error {
	if c.jsonOut {
		return c.printJSON(bs)
	}
	rows := make([][]string, 0, len(bs))
	for _, b := range bs {
		rows = append(rows, []string{b.BookID, b.Title, b.Author,
			fmt.Sprintf("%d/%d", b.AvailableCopies, b.TotalCopies), fmt.Sprint(b.LoanDays)})
	}
	return c.table("BOOK ID\tTITLE\tAUTHOR\tAVAILABLE\tLOAN DAYS", rows)
}

func (c *cli) printRecords(rs []api.Record) error {
	if c.jsonOut {
		return c.printJSON(rs)
	}
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, []string{r.RecordID, r.BookID, r.Status, r.BorrowDate, r.DueDate, r.Fine, extensionState(&r)})
	}
	return c.table("RECORD ID\tBOOK ID\tSTATUS\tBORROWED\tDUE\tFINE\tEXTENSION", rows)
}

func (c *cli) printRecord(r *api.Record) error {
	if c.jsonOut {
		return c.printJSON(r)
	}
	ret := "-"
	if r.ReturnDate != nil {
		ret = *r.ReturnDate
	}
	return c.table("FIELD\tVALUE", [][]string{
		{"record", r.RecordID},
		{"user", r.UserID},
		{"book", r.BookID},
		{"status", r.Status},
		{"borrowed", r.BorrowDate},
		{"due", r.DueDate},
		{"returned", ret},
		{"fine", r.Fine},
		{"extensions", fmt.Sprintf("%d (%d days)", r.ExtensionCount, r.ExtensionTotalDays)},
		{"extension request", extensionState(r)},
	})
}

func extensionState(r *api.Record) string {
	switch r.ExtensionRequestStatus {
	case "", "none":
		return "-"
	case "pending":
		return fmt.Sprintf("pending +%dd", r.ExtensionRequestedDays)
	}
	return r.ExtensionRequestStatus
}

func (c *cli) printFines(fs []api.Fine) error {
	if c.jsonOut {
		return c.printJSON(fs)
	}
	rows := make([][]string, 0, len(fs))
	for _, f := range fs {
		rec := "-"
		if f.RecordID != nil {
			rec = *f.RecordID
		}
		rows = append(rows, []string{f.FineID, f.Amount, f.Reason, f.Status, rec})
	}
	return c.table("FINE ID\tAMOUNT\tREASON\tSTATUS\tRECORD", rows)
}

func (c *cli) printFine(f *api.Fine) error {
	if c.jsonOut {
		return c.printJSON(f)
	}
	return c.printFines([]api.Fine{*f})
}
