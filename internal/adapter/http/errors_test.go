package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/domain/borrow"
)

func TestStatusFor(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:    http.StatusUnprocessableEntity,
		apperr.KindStateConflict: http.StatusConflict,
		apperr.KindNotFound:      http.StatusNotFound,
		apperr.KindAuthorization: http.StatusForbidden,
		apperr.KindTransport:     http.StatusBadGateway,
		apperr.Kind("mystery"):   http.StatusInternalServerError,
	}
	for k, want := range cases {
		if got := statusFor(k); got != want {
			t.Fatalf("statusFor(%q) = %d, want %d", k, got, want)
		}
	}
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"sentinel", borrow.ErrExtensionPending, http.StatusConflict, borrow.ErrExtensionPending.Message},
		{"wrapped", fmt.Errorf("tx: %w", borrow.ErrNotFound), http.StatusNotFound, "borrow record not found"},
		{"unclassified is hidden", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			if err := writeError(c, zap.NewNop(), "op", tc.err); err != nil {
				t.Fatalf("writeError: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tc.wantMsg {
				t.Fatalf("error = %q, want %q", body.Error, tc.wantMsg)
			}
		})
	}
}
