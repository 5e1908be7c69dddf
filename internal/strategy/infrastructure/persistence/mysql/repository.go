// Package mysql 基于 GORM/MySQL 的策略仓储，整份文档以 JSON 存储，name 唯一
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StrategyModel 策略表行
type StrategyModel struct {
	ID        string    `gorm:"column:id;type:char(24);primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(191);uniqueIndex:uniq_name;not null"`
	Document  string    `gorm:"column:document;type:longtext;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (StrategyModel) TableName() string { return "strategies" }

func toModel(s *domain.Strategy) (*StrategyModel, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode strategy: %w", err)
	}
	return &StrategyModel{
		ID:        s.ID.Hex(),
		Name:      s.Name,
		Document:  string(doc),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

func toDomain(m *StrategyModel) (*domain.Strategy, error) {
	var s domain.Strategy
	if err := json.Unmarshal([]byte(m.Document), &s); err != nil {
		return nil, fmt.Errorf("failed to decode strategy: %w", err)
	}
	id, err := primitive.ObjectIDFromHex(m.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid strategy id %q: %w", m.ID, err)
	}
	s.ID = id
	s.Name = m.Name
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return &s, nil
}

func toDomainList(models []StrategyModel) ([]*domain.Strategy, error) {
	out := make([]*domain.Strategy, 0, len(models))
	for i := range models {
		s, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// StrategyRepository MySQL 实现
type StrategyRepository struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStrategyRepository 创建仓储；m 可为 nil
func NewStrategyRepository(db *gorm.DB, m *metrics.Metrics) *StrategyRepository {
	return &StrategyRepository{db: db, metrics: m, now: time.Now}
}

// AutoMigrate 建表及唯一索引
func (r *StrategyRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&StrategyModel{})
}

func (r *StrategyRepository) List(ctx context.Context) ([]*domain.Strategy, error) {
	defer r.metrics.ObserveStoreOp("strategies", "list")()

	var models []StrategyModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return toDomainList(models)
}

func (r *StrategyRepository) FindByID(ctx context.Context, id string) (*domain.Strategy, error) {
	defer r.metrics.ObserveStoreOp("strategies", "find")()

	if _, ok := domain.ParseID(id); !ok {
		return nil, domain.ErrStrategyNotFound
	}
	var m StrategyModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStrategyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find strategy: %w", err)
	}
	return toDomain(&m)
}

func (r *StrategyRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Strategy, error) {
	defer r.metrics.ObserveStoreOp("strategies", "find_many")()

	oids := domain.ParseIDs(ids)
	if len(oids) == 0 {
		return []*domain.Strategy{}, nil
	}
	hexes := make([]string, len(oids))
	for i, oid := range oids {
		hexes[i] = oid.Hex()
	}

	var models []StrategyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", hexes).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to compare strategies: %w", err)
	}
	return toDomainList(models)
}

// CreateIfAbsent INSERT ... ON CONFLICT DO NOTHING，未插入时按 name 回读
func (r *StrategyRepository) CreateIfAbsent(ctx context.Context, s *domain.Strategy) (*domain.Strategy, bool, error) {
	defer r.metrics.ObserveStoreOp("strategies", "create_if_absent")()
	defer logger.LogDuration(ctx, "Insert strategy", "table", "strategies", "name", s.Name)()

	doc := s.Clone()
	doc.PrepareInsert(r.now())
	m, err := toModel(doc)
	if err != nil {
		return nil, false, err
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to insert strategy: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return doc, true, nil
	}

	var existing StrategyModel
	if err := r.db.WithContext(ctx).Where("name = ?", doc.Name).First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to reread strategy: %w", err)
	}
	out, err := toDomain(&existing)
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}
