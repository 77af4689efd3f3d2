package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"library-circulation/internal/adapter/middleware"
)

type Handlers struct {
	Health  *Handler
	Auth    *AuthHandler
	Books   *BookHandler
	Borrows *BorrowHandler
	Fines   *FineHandler
}

type RouterDeps struct {
	Authenticator middleware.Authenticator
	Redis         *redis.Client
	IdempTTL      time.Duration
	Log           *zap.Logger
}

// Register mounts every route. Mutating routes behind auth are idempotent
// on X-Request-Id.
func Register(e *echo.Echo, h Handlers, d RouterDeps) {
	e.Validator = NewValidator()

	e.GET("/health", h.Health.Health)
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	authed := e.Group("", middleware.Auth(d.Authenticator, d.Log))
	if d.Redis != nil {
		authed.Use(middleware.Idempotency(d.Redis, d.IdempTTL, d.Log))
	}

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/users", h.Auth.CreateUser)

	authed.GET("/books", h.Books.List)
	authed.GET("/books/:book_id", h.Books.Get)
	authed.POST("/books", h.Books.Create)

	authed.GET("/borrows", h.Borrows.List)
	authed.POST("/borrows", h.Borrows.Create)
	authed.POST("/borrows/self", h.Borrows.CreateSelf)
	authed.GET("/borrows/:record_id", h.Borrows.Get)
	authed.POST("/borrows/:record_id/pickup", h.Borrows.ConfirmPickup)
	authed.POST("/borrows/:record_id/return-request", h.Borrows.RequestReturn)
	authed.POST("/borrows/:record_id/return-reject", h.Borrows.RejectReturn)
	authed.POST("/borrows/:record_id/return", h.Borrows.FinalizeReturn)
	authed.PUT("/borrows/:record_id/due-date", h.Borrows.UpdateDueDate)
	authed.POST("/borrows/:record_id/extensions", h.Borrows.RequestExtension)
	authed.POST("/borrows/:record_id/extensions/approve", h.Borrows.ApproveExtension)
	authed.POST("/borrows/:record_id/extensions/disapprove", h.Borrows.DisapproveExtension)

	authed.GET("/fines", h.Fines.List)
	authed.POST("/fines", h.Fines.Create)
	authed.PUT("/fines/:fine_id/status", h.Fines.UpdateStatus)
	authed.GET("/fines/:fine_id/proofs", h.Fines.ListProofs)
	authed.POST("/fines/:fine_id/proofs", h.Fines.SubmitProof)
}
