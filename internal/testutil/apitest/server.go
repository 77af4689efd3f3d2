// Package apitest runs the whole HTTP API in-process on sqlite and
// miniredis, for end-to-end tests.
package apitest

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	httpadp "library-circulation/internal/adapter/http"
	repo "library-circulation/internal/adapter/repository/mysql"
	"library-circulation/internal/adapter/storage"
	"library-circulation/internal/app"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/infrastructure/cache"
	"library-circulation/internal/infrastructure/db"
	authuc "library-circulation/internal/usecase/auth"
	bookuc "library-circulation/internal/usecase/book"
	borrowuc "library-circulation/internal/usecase/borrow"
	fineuc "library-circulation/internal/usecase/fine"
)

const (
	AdminUsername = "admin"
	AdminPassword = "admin-password"
	FinePerDay    = "1.00"
	LoanDays      = 14
)

// Clock is a settable time source shared by every usecase.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to 09:00 UTC on the given YYYY-MM-DD date.
func (c *Clock) Set(date string) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	c.mu.Lock()
	c.now = t.Add(9 * time.Hour)
	c.mu.Unlock()
}

type Server struct {
	URL      string
	Clock    *Clock
	DB       *gorm.DB
	Redis    *miniredis.Miniredis
	Borrows  *borrowuc.Usecase
	ProofDir string
}

// New starts the API with a bootstrap admin account; the clock starts on
// 2024-01-01.
func New(t *testing.T) *Server {
	t.Helper()

	gdb, err := db.OpenSQLite("file::memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := app.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	proofs, err := storage.NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("proof store: %v", err)
	}

	clock := &Clock{}
	clock.Set("2024-01-01")

	users := repo.NewUserRepository(gdb)
	books := repo.NewBookRepository(gdb)
	borrows := repo.NewBorrowRepository(gdb)
	fines := repo.NewFineRepository(gdb)
	tx := repo.NewGormUoW(gdb)

	authUC := authuc.NewUsecase(users, cache.NewSessionStore(rdb), "test-secret-test-secret-test-secret", 90*24*time.Hour, nil).
		WithClock(clock.Now).
		WithHashCost(bcrypt.MinCost)
	bookUC := bookuc.NewUsecase(books, LoanDays, nil)
	borrowUC := borrowuc.NewUsecase(borrows, tx, fine.NewCalculator(decimal.RequireFromString(FinePerDay)), LoanDays, nil).
		WithClock(clock.Now)
	fineUC := fineuc.NewUsecase(fines, users, borrows, tx, proofs, 1<<20, nil).
		WithClock(clock.Now)

	if err := authUC.EnsureAdmin(context.Background(), AdminUsername, AdminPassword); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Static(storage.URLPath, proofs.Dir())
	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"db":    httpadp.PingFunc(sqlDB.PingContext),
			"redis": httpadp.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
		Auth:    httpadp.NewAuthHandler(authUC, false, nil),
		Books:   httpadp.NewBookHandler(bookUC, nil),
		Borrows: httpadp.NewBorrowHandler(borrowUC, nil),
		Fines:   httpadp.NewFineHandler(fineUC, nil),
	}, httpadp.RouterDeps{
		Authenticator: authUC,
		Redis:         rdb,
		IdempTTL:      time.Minute,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &Server{
		URL:      srv.URL,
		Clock:    clock,
		DB:       gdb,
		Redis:    mr,
		Borrows:  borrowUC,
		ProofDir: proofs.Dir(),
	}
}
