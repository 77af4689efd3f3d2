package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"library-circulation/internal/usecase/fine"
)

type FineHandler struct {
	uc  *fine.Usecase
	log *zap.Logger
}

func NewFineHandler(uc *fine.Usecase, log *zap.Logger) *FineHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FineHandler{uc: uc, log: log}
}

type createFineReq struct {
	UserID   string  `json:"user_id"   validate:"required,hex32"`
	RecordID *string `json:"record_id" validate:"omitempty,hex32"`
	Amount   string  `json:"amount"    validate:"required,money"`
	Reason   string  `json:"reason"    validate:"required,oneof=overdue damage other"`
	Note     string  `json:"note"      validate:"max=500"`
}

type updateFineStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active pending_verification paid cancelled"`
}

func (h *FineHandler) List(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	out, err := h.uc.List(c.Request().Context(), who)
	if err != nil {
		return writeError(c, h.log, "list fines", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FineHandler) Create(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req createFineReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), who, fine.CreateFineInput{
		UserID:   req.UserID,
		RecordID: req.RecordID,
		Amount:   decimal.RequireFromString(req.Amount),
		Reason:   req.Reason,
		Note:     req.Note,
	})
	if err != nil {
		return writeError(c, h.log, "create fine", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *FineHandler) UpdateStatus(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req updateFineStatusReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateStatus(c.Request().Context(), who, c.Param("fine_id"), req.Status)
	if err != nil {
		return writeError(c, h.log, "update fine status", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FineHandler) ListProofs(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	out, err := h.uc.ListProofs(c.Request().Context(), who, c.Param("fine_id"))
	if err != nil {
		return writeError(c, h.log, "list proofs", err)
	}
	return c.JSON(http.StatusOK, out)
}

// SubmitProof takes a multipart form with the receipt in the "file" field.
func (h *FineHandler) SubmitProof(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing multipart file field \"file\""})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable upload"})
	}
	defer f.Close()

	ct := fh.Header.Get(echo.HeaderContentType)
	if strings.TrimSpace(ct) == "" {
		ct = "application/octet-stream"
	}
	res, err := h.uc.SubmitProof(c.Request().Context(), who, c.Param("fine_id"), fine.ProofUpload{
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return writeError(c, h.log, "submit proof", err)
	}
	return c.JSON(http.StatusCreated, res)
}
