package database

import (
	"fmt"
	"time"

	"pharmaproc/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM and migrates the
// procurement schema.
func NewConnection(dsn string, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(GormLogLevel(logLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate auto-migrates every procurement model. Order matters: referenced
// tables come first.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.QCReport{},
		&model.QCReportItem{},
		&model.Receipt{},
		&model.NumberSequence{},
	)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

// GormLogLevel follows the application log level; debug logs every statement.
func GormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
