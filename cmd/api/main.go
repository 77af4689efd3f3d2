package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "library-circulation/internal/adapter/http"
	repo "library-circulation/internal/adapter/repository/mysql"
	"library-circulation/internal/adapter/storage"
	"library-circulation/internal/app"
	"library-circulation/internal/config"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/infrastructure/cache"
	"library-circulation/internal/infrastructure/db"
	authuc "library-circulation/internal/usecase/auth"
	bookuc "library-circulation/internal/usecase/book"
	borrowuc "library-circulation/internal/usecase/borrow"
	fineuc "library-circulation/internal/usecase/fine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := app.NewLogger(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := openDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(ctx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	proofs, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	// repositories + unit of work
	users := repo.NewUserRepository(gdb)
	books := repo.NewBookRepository(gdb)
	borrows := repo.NewBorrowRepository(gdb)
	fines := repo.NewFineRepository(gdb)
	tx := repo.NewGormUoW(gdb)

	authUC := authuc.NewUsecase(users, cache.NewSessionStore(rdb), cfg.JWTSecret, cfg.SessionTTL(), logger)
	bookUC := bookuc.NewUsecase(books, cfg.DefaultLoanDays, logger)
	borrowUC := borrowuc.NewUsecase(borrows, tx, fine.NewCalculator(cfg.FinePerDay), cfg.DefaultLoanDays, logger)
	fineUC := fineuc.NewUsecase(fines, users, borrows, tx, proofs, cfg.MaxProofBytes, logger)

	if err := authUC.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID(), middleware.Recover(), requestLogger(logger))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.MaxProofBytes/1024+64)))
	e.Static(storage.URLPath, proofs.Dir())

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"db":    httpadp.PingFunc(sqlDB.PingContext),
			"redis": httpadp.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
		Auth:    httpadp.NewAuthHandler(authUC, cfg.IsProduction(), logger),
		Books:   httpadp.NewBookHandler(bookUC, logger),
		Borrows: httpadp.NewBorrowHandler(borrowUC, logger),
		Fines:   httpadp.NewFineHandler(fineUC, logger),
	}, httpadp.RouterDeps{
		Authenticator: authUC,
		Redis:         rdb,
		IdempTTL:      cfg.IdempTTL(),
		Log:           logger,
	})

	sweeper := app.NewFineSweeper(borrowUC, cfg.FineSweepInterval(), logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	level := db.LogLevel(cfg.GormLogLevel)
	if cfg.DBDriver == "sqlite" {
		gdb, err := db.OpenSQLite(cfg.SQLitePath, level)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := app.AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		logger.Info("database ready", zap.String("driver", "sqlite"), zap.String("path", cfg.SQLitePath))
		return gdb, nil
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), level)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	m, err := app.NewMigrator(sqlDB, logger)
	if err != nil {
		return nil, err
	}
	if err := m.Run(ctx); err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", "mysql"))
	return gdb, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
