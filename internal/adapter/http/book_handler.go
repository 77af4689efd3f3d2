package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"library-circulation/internal/usecase/book"
)

type BookHandler struct {
	uc  *book.Usecase
	log *zap.Logger
}

func NewBookHandler(uc *book.Usecase, log *zap.Logger) *BookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookHandler{uc: uc, log: log}
}

type createBookReq struct {
	Title    string `json:"title"     validate:"required,max=255"`
	Author   string `json:"author"    validate:"required,max=255"`
	ISBN     string `json:"isbn"      validate:"max=20"`
	LoanDays int    `json:"loan_days" validate:"gte=0,lte=365"`
	Copies   int    `json:"copies"    validate:"gte=1,lte=1000"`
}

func (h *BookHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, "list books", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("book_id"))
	if err != nil {
		return writeError(c, h.log, "get book", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BookHandler) Create(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req createBookReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), who, book.CreateBookInput(req))
	if err != nil {
		return writeError(c, h.log, "create book", err)
	}
	return c.JSON(http.StatusCreated, dto)
}
