package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type authorizedAccountModel struct {
	AccountID string    `gorm:"column:account_id;primaryKey;size:128"`
	GrantedAt time.Time `gorm:"column:granted_at;not null"`
}

func (authorizedAccountModel) TableName() string {
	return "authorized_accounts"
}

// Repository persists authorization grants in PostgreSQL.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&authorizedAccountModel{})
}

func (r *Repository) AddMember(ctx context.Context, accountID string, grantedAt time.Time) error {
	row := authorizedAccountModel{
		AccountID: accountID,
		GrantedAt: grantedAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *Repository) RemoveMember(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&authorizedAccountModel{}).Error
}

func (r *Repository) IsMember(ctx context.Context, accountID string) (bool, error) {
	var row authorizedAccountModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
