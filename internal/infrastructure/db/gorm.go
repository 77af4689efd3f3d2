package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool holds database/sql connection pool limits.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

var (
	MySQLPool = Pool{MaxOpen: 30, MaxIdle: 10, MaxLifetime: 30 * time.Minute, MaxIdleTime: 10 * time.Minute}

	// An in-memory database lives only as long as its connection, so sqlite
	// gets exactly one that never expires.
	SQLitePool = Pool{MaxOpen: 1, MaxIdle: 1}
)

func (p Pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
}

// LogLevel maps "silent", "error", "warn" and "info" to gorm's levels;
// anything else is warn.
func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func OpenGorm(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), level, MySQLPool)
}

// OpenSQLite opens a sqlite database with foreign keys enforced, for local
// runs. path may be a file name or "file::memory:".
func OpenSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), level, SQLitePool)
}

// OpenGormWithDialector opens d, applies pool and pings. Driver errors are
// translated to gorm's sentinel errors.
func OpenGormWithDialector(d gorm.Dialector, level logger.LogLevel, pool Pool) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pool.apply(sqlDB)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
