// Package mysql 基于 GORM/MySQL 的组合仓储，整份文档以 JSON 存储，user_id 唯一
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PortfolioModel 组合表行
type PortfolioModel struct {
	ID        string    `gorm:"column:id;type:char(24);primaryKey"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);uniqueIndex:uniq_user_id;not null"`
	Document  string    `gorm:"column:document;type:longtext;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (PortfolioModel) TableName() string { return "portfolios" }

func toModel(p *domain.Portfolio) (*PortfolioModel, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode portfolio: %w", err)
	}
	return &PortfolioModel{
		ID:        p.ID.Hex(),
		UserID:    p.UserID,
		Document:  string(doc),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func toDomain(m *PortfolioModel) (*domain.Portfolio, error) {
	var p domain.Portfolio
	if err := json.Unmarshal([]byte(m.Document), &p); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	id, err := primitive.ObjectIDFromHex(m.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid portfolio id %q: %w", m.ID, err)
	}
	p.ID = id
	p.UserID = m.UserID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return &p, nil
}

// PortfolioRepository MySQL 实现
type PortfolioRepository struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPortfolioRepository 创建仓储；m 可为 nil
func NewPortfolioRepository(db *gorm.DB, m *metrics.Metrics) *PortfolioRepository {
	return &PortfolioRepository{db: db, metrics: m, now: time.Now}
}

// AutoMigrate 建表及唯一索引
func (r *PortfolioRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&PortfolioModel{})
}

func (r *PortfolioRepository) FindByUser(ctx context.Context, userID string) (*domain.Portfolio, error) {
	defer r.metrics.ObserveStoreOp("portfolios", "find")()

	var m PortfolioModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find portfolio: %w", err)
	}
	return toDomain(&m)
}

// CreateIfAbsent INSERT ... ON CONFLICT DO NOTHING，未插入时回读
func (r *PortfolioRepository) CreateIfAbsent(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, bool, error) {
	defer r.metrics.ObserveStoreOp("portfolios", "create_if_absent")()
	defer logger.LogDuration(ctx, "Insert portfolio", "table", "portfolios", "user_id", p.UserID)()

	doc := p.Clone()
	doc.PrepareInsert(r.now())
	m, err := toModel(doc)
	if err != nil {
		return nil, false, err
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to insert portfolio: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindByUser(ctx, doc.UserID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return doc, true, nil
}

func (r *PortfolioRepository) Replace(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	defer r.metrics.ObserveStoreOp("portfolios", "replace")()

	var out *domain.Portfolio
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m PortfolioModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", p.UserID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPortfolioNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock portfolio: %w", err)
		}

		current, err := toDomain(&m)
		if err != nil {
			return err
		}
		next := current.ReplaceWith(p, r.now())
		nm, err := toModel(next)
		if err != nil {
			return err
		}
		if err := tx.Model(&PortfolioModel{}).Where("id = ?", nm.ID).Updates(map[string]interface{}{
			"document":   nm.Document,
			"updated_at": nm.UpdatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to replace portfolio: %w", err)
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
