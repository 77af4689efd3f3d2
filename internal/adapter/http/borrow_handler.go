package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/usecase/borrow"
	"library-circulation/pkg/caldate"
)

type BorrowHandler struct {
	uc  *borrow.Usecase
	log *zap.Logger
}

func NewBorrowHandler(uc *borrow.Usecase, log *zap.Logger) *BorrowHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BorrowHandler{uc: uc, log: log}
}

// Dates use the canonical `YYYY-MM-DD` form (schema DATE).
type createBorrowReq struct {
	UserID     string `json:"user_id"     validate:"required,hex32"`
	BookID     string `json:"book_id"     validate:"required,hex32"`
	BorrowDate string `json:"borrow_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate    string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
}

type selfBorrowReq struct {
	BookID string `json:"book_id" validate:"required,hex32"`
}

type finalizeReturnReq struct {
	ReturnDate string `json:"return_date" validate:"omitempty,datetime=2006-01-02"`
	Fine       string `json:"fine"        validate:"omitempty,money"`
}

type updateDueDateReq struct {
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// Days is a number; fractions are truncated toward zero by the usecase.
type extensionReq struct {
	Days   float64 `json:"days"   validate:"gt=0,lt=366"`
	Reason string  `json:"reason" validate:"max=500"`
}

type decisionReq struct {
	Note string `json:"note" validate:"max=500"`
}

func (h *BorrowHandler) List(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	out, err := h.uc.List(c.Request().Context(), who)
	if err != nil {
		return writeError(c, h.log, "list borrows", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BorrowHandler) Get(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	dto, err := h.uc.Get(c.Request().Context(), who, c.Param("record_id"))
	if err != nil {
		return writeError(c, h.log, "get borrow", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) Create(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req createBorrowReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := borrow.CreateBorrowInput{UserID: req.UserID, BookID: req.BookID}
	in.BorrowDate = optionalDate(req.BorrowDate)
	in.DueDate = optionalDate(req.DueDate)

	dto, err := h.uc.CreateBorrow(c.Request().Context(), who, in)
	if err != nil {
		return writeError(c, h.log, "create borrow", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BorrowHandler) CreateSelf(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req selfBorrowReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateSelfBorrow(c.Request().Context(), who, req.BookID)
	if err != nil {
		return writeError(c, h.log, "self borrow", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BorrowHandler) ConfirmPickup(c echo.Context) error {
	return h.simple(c, "confirm pickup", h.uc.ConfirmPickup)
}

func (h *BorrowHandler) RequestReturn(c echo.Context) error {
	return h.simple(c, "request return", h.uc.RequestReturn)
}

func (h *BorrowHandler) RejectReturn(c echo.Context) error {
	return h.simple(c, "reject return", h.uc.RejectReturn)
}

func (h *BorrowHandler) FinalizeReturn(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req finalizeReturnReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := borrow.FinalizeReturnInput{ReturnDate: optionalDate(req.ReturnDate)}
	if req.Fine != "" {
		// already checked by the money validator
		f := decimal.RequireFromString(req.Fine)
		in.Fine = &f
	}
	dto, err := h.uc.FinalizeReturn(c.Request().Context(), who, c.Param("record_id"), in)
	if err != nil {
		return writeError(c, h.log, "finalize return", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) UpdateDueDate(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req updateDueDateReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	due, _ := caldate.Parse(req.DueDate)
	dto, err := h.uc.UpdateDueDate(c.Request().Context(), who, c.Param("record_id"), due)
	if err != nil {
		return writeError(c, h.log, "update due date", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) RequestExtension(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req extensionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.RequestExtension(c.Request().Context(), who, c.Param("record_id"),
		borrow.ExtensionInput{Days: req.Days, Reason: req.Reason})
	if err != nil {
		return writeError(c, h.log, "request extension", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BorrowHandler) ApproveExtension(c echo.Context) error {
	return h.decide(c, "approve extension", h.uc.ApproveExtension)
}

func (h *BorrowHandler) DisapproveExtension(c echo.Context) error {
	return h.decide(c, "disapprove extension", h.uc.DisapproveExtension)
}

// simple runs a body-less transition on the record named in the path.
func (h *BorrowHandler) simple(c echo.Context, op string, fn func(context.Context, actor.Actor, string) (*borrow.RecordDTO, error)) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	dto, err := fn(c.Request().Context(), who, c.Param("record_id"))
	if err != nil {
		return writeError(c, h.log, op, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) decide(c echo.Context, op string, fn func(ctx context.Context, a actor.Actor, recordID, note string) (*borrow.RecordDTO, error)) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req decisionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := fn(c.Request().Context(), who, c.Param("record_id"), req.Note)
	if err != nil {
		return writeError(c, h.log, op, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := caldate.Parse(s)
	if err != nil {
		return nil
	}
	return &t
}
