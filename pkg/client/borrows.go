package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/apperr"
	domain "library-circulation/internal/domain/borrow"
	"library-circulation/pkg/api"
	"library-circulation/pkg/caldate"
)

// CreateBorrowRequest leaves dates nil to take the server's defaults.
type CreateBorrowRequest struct {
	UserID     string
	BookID     string
	BorrowDate *time.Time
	DueDate    *time.Time
}

type FinalizeReturnRequest struct {
	ReturnDate *time.Time
	Fine       *decimal.Decimal
}

func recordPath(recordID string, suffix string) string {
	return "/borrows/" + url.PathEscape(recordID) + suffix
}

func dateField(t *time.Time) string {
	if t == nil {
		return ""
	}
	return caldate.Format(*t)
}

func (c *Client) Borrows(ctx context.Context) ([]api.Record, error) {
	var out []api.Record
	if err := c.call(ctx, "list borrows", http.MethodGet, "/borrows", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Borrow(ctx context.Context, recordID string) (*api.Record, error) {
	return c.recordCall(ctx, "get borrow", http.MethodGet, recordPath(recordID, ""), nil)
}

// CreateBorrow is the staff desk loan.
func (c *Client) CreateBorrow(ctx context.Context, in CreateBorrowRequest) (*api.Record, error) {
	body := map[string]string{
		"user_id":     in.UserID,
		"book_id":     in.BookID,
		"borrow_date": dateField(in.BorrowDate),
		"due_date":    dateField(in.DueDate),
	}
	out, err := c.recordCall(ctx, "create borrow", http.MethodPost, "/borrows", body)
	if err != nil {
		return nil, err
	}
	c.markBorrowed(in.BookID)
	return out, nil
}

// SelfBorrow reserves a copy for the logged-in user. The cached
// availability is lowered before the call and restored if it fails.
func (c *Client) SelfBorrow(ctx context.Context, bookID string) (*api.Record, error) {
	restore := c.markBorrowed(bookID)
	out, err := c.recordCall(ctx, "self borrow", http.MethodPost, "/borrows/self", map[string]string{"book_id": bookID})
	if err != nil {
		restore()
		return nil, err
	}
	return out, nil
}

func (c *Client) ConfirmPickup(ctx context.Context, recordID string) (*api.Record, error) {
	return c.recordCall(ctx, "confirm pickup", http.MethodPost, recordPath(recordID, "/pickup"), nil)
}

// RequestReturn explains locally, without a request, why a record that is
// not borrowed cannot be returned.
func (c *Client) RequestReturn(ctx context.Context, rec *api.Record) (*api.Record, error) {
	st, err := domain.ParseStatus(rec.Status)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if msg, blocked := domain.ReturnRequestBlocked(st); blocked {
		return nil, apperr.Conflict(msg)
	}
	return c.recordCall(ctx, "request return", http.MethodPost, recordPath(rec.RecordID, "/return-request"), nil)
}

func (c *Client) RejectReturn(ctx context.Context, recordID string) (*api.Record, error) {
	return c.recordCall(ctx, "reject return", http.MethodPost, recordPath(recordID, "/return-reject"), nil)
}

func (c *Client) FinalizeReturn(ctx context.Context, recordID string, in FinalizeReturnRequest) (*api.Record, error) {
	body := map[string]string{"return_date": dateField(in.ReturnDate)}
	if in.Fine != nil {
		if in.Fine.IsNegative() {
			return nil, domain.ErrNegativeFine
		}
		body["fine"] = in.Fine.StringFixed(2)
	}
	return c.recordCall(ctx, "finalize return", http.MethodPost, recordPath(recordID, "/return"), body)
}

func (c *Client) UpdateDueDate(ctx context.Context, recordID string, due time.Time) (*api.Record, error) {
	return c.recordCall(ctx, "update due date", http.MethodPut, recordPath(recordID, "/due-date"),
		map[string]string{"due_date": caldate.Format(due)})
}

// RequestExtension truncates days toward zero and rejects anything under a
// day before touching the network.
func (c *Client) RequestExtension(ctx context.Context, recordID string, days float64, reason string) (*api.ExtensionResult, error) {
	n, err := domain.TruncateDays(days)
	if err != nil {
		return nil, err
	}
	var out api.ExtensionResult
	body := map[string]any{"days": n, "reason": reason}
	if err := c.call(ctx, "request extension", http.MethodPost, recordPath(recordID, "/extensions"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveExtension(ctx context.Context, recordID, note string) (*api.Record, error) {
	return c.recordCall(ctx, "approve extension", http.MethodPost, recordPath(recordID, "/extensions/approve"),
		map[string]string{"note": note})
}

func (c *Client) DisapproveExtension(ctx context.Context, recordID, note string) (*api.Record, error) {
	return c.recordCall(ctx, "disapprove extension", http.MethodPost, recordPath(recordID, "/extensions/disapprove"),
		map[string]string{"note": note})
}

func (c *Client) recordCall(ctx context.Context, op, method, path string, in any) (*api.Record, error) {
	var out api.Record
	if err := c.call(ctx, op, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
