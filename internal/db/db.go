package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/viktorvidual/invoices/internal/config"
	"github.com/viktorvidual/invoices/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects to the configured database, retrying while it starts up.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logger.NewGormLogger(log, gormlogger.Warn, cfg.SlowThreshold),
	}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(dialector(cfg), gcfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying",
			zap.Int("attempt", i), zap.Int("max_attempts", connectAttempts), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}

	// Basic connectivity test
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info("connected to database",
		zap.String("driver", cfg.Driver), zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return conn, nil
}

func dialector(cfg config.DatabaseConfig) gorm.Dialector {
	if cfg.Driver == "sqlite" {
		return sqlite.Open(SQLiteDSN(cfg.DSN()))
	}
	return postgres.Open(cfg.DSN())
}

// SQLiteDSN enables foreign key enforcement so the customer reference is
// checked by the store, as it is on postgres.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1"
}
