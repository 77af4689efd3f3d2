package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"

	"github.com/shopspring/decimal"

	"library-circulation/pkg/api"
)

type CreateFineRequest struct {
	UserID   string
	RecordID string // optional
	Amount   decimal.Decimal
	Reason   string
	Note     string
}

type multipartBody struct {
	data        []byte
	contentType string
}

func finePath(fineID, suffix string) string { return "/fines/" + url.PathEscape(fineID) + suffix }

func (c *Client) Fines(ctx context.Context) ([]api.Fine, error) {
	var out []api.Fine
	if err := c.call(ctx, "list fines", http.MethodGet, "/fines", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFine(ctx context.Context, in CreateFineRequest) (*api.Fine, error) {
	body := map[string]any{
		"user_id": in.UserID,
		"amount":  in.Amount.StringFixed(2),
		"reason":  in.Reason,
		"note":    in.Note,
	}
	if in.RecordID != "" {
		body["record_id"] = in.RecordID
	}
	var out api.Fine
	if err := c.call(ctx, "create fine", http.MethodPost, "/fines", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFineStatus(ctx context.Context, fineID, status string) (*api.Fine, error) {
	var out api.Fine
	if err := c.call(ctx, "update fine status", http.MethodPut, finePath(fineID, "/status"),
		map[string]string{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FineProofs(ctx context.Context, fineID string) ([]api.Proof, error) {
	var out []api.Proof
	if err := c.call(ctx, "list fine proofs", http.MethodGet, finePath(fineID, "/proofs"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitFineProof uploads a receipt as multipart field "file".
func (c *Client) SubmitFineProof(ctx context.Context, fineID, filename, contentType string, r io.Reader) (*api.SubmitProofResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read proof: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out api.SubmitProofResult
	in := &multipartBody{data: buf.Bytes(), contentType: mw.FormDataContentType()}
	if err := c.call(ctx, "submit fine proof", http.MethodPost, finePath(fineID, "/proofs"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
