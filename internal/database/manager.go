package database

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kdudkov/valentine/internal/model"
)

type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	m := &DatabaseManager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}

	return m
}

func (mm *DatabaseManager) Create(ctx context.Context, s any) error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	err := mm.db.WithContext(ctx).Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) InvitationQuery() *InvitationQuery {
	return NewInvitationQuery(mm.db)
}

func (mm *DatabaseManager) Ping(ctx context.Context) error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	sqlDB, err := mm.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (mm *DatabaseManager) Close() error {
	if mm == nil || mm.db == nil {
		return nil
	}

	sqlDB, err := mm.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	return mm.db.AutoMigrate(&model.Invitation{})
}
