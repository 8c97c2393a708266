package repository

import (
	"errors"
	"fmt"

	"github.com/feed-system/socialconnect/internal/config"
	"github.com/feed-system/socialconnect/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDuplicate is returned when an insert or update violates a unique index
// (username, email, like pair, follow pair).
var ErrDuplicate = errors.New("duplicate record")

type Database struct {
	*gorm.DB
}

func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	dsn := cfg.DSN()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	return &Database{db}, nil
}

func (db *Database) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// decrement never lets a stored counter go below zero.
func decrement(column string) interface{} {
	return gorm.Expr(fmt.Sprintf("GREATEST(%s - 1, 0)", column))
}

func increment(column string) interface{} {
	return gorm.Expr(fmt.Sprintf("%s + 1", column))
}
