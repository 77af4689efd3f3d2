package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"library-circulation/internal/adapter/middleware"
	"library-circulation/internal/usecase/auth"
)

type AuthHandler struct {
	uc           *auth.Usecase
	log          *zap.Logger
	secureCookie bool
}

func NewAuthHandler(uc *auth.Usecase, secureCookie bool, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{uc: uc, log: log, secureCookie: secureCookie}
}

type registerReq struct {
	Username        string `json:"username"         validate:"required,min=3,max=64"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name"        validate:"max=255"`
	Role            string `json:"role"             validate:"omitempty,role"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), auth.RegisterInput(req))
	if err != nil {
		return writeError(c, h.log, "register", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// CreateUser is the admin path for staff accounts.
func (h *AuthHandler) CreateUser(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateUser(c.Request().Context(), who, auth.RegisterInput(req))
	if err != nil {
		return writeError(c, h.log, "create user", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	sess, err := h.uc.Login(c.Request().Context(), auth.LoginInput(req))
	if err != nil {
		return writeError(c, h.log, "login", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.uc.Logout(c.Request().Context(), middleware.ClaimsFrom(c)); err != nil {
		return writeError(c, h.log, "logout", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	who, ok := whoami(c)
	if !ok {
		return unauthenticated(c)
	}
	dto, err := h.uc.Me(c.Request().Context(), who)
	if err != nil {
		return writeError(c, h.log, "me", err)
	}
	return c.JSON(http.StatusOK, dto)
}
