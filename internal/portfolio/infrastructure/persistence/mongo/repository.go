// Package mongo 基于 MongoDB 的组合仓储，portfolios.userId 唯一
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName 组合集合名
const CollectionName = "portfolios"

// PortfolioRepository MongoDB 实现
type PortfolioRepository struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPortfolioRepository 创建仓储；m 可为 nil
func NewPortfolioRepository(db *mongo.Database, m *metrics.Metrics) *PortfolioRepository {
	return &PortfolioRepository{
		coll:    db.Collection(CollectionName),
		metrics: m,
		now:     time.Now,
	}
}

// EnsureIndexes 创建 userId 唯一索引，种子写入依赖它避免重复
func (r *PortfolioRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create portfolios index: %w", err)
	}
	return nil
}

func (r *PortfolioRepository) FindByUser(ctx context.Context, userID string) (*domain.Portfolio, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "find")()

	var p domain.Portfolio
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find portfolio: %w", err)
	}
	return &p, nil
}

// CreateIfAbsent $setOnInsert 原子 upsert；并发 upsert 触发唯一键冲突时回读已存在文档
func (r *PortfolioRepository) CreateIfAbsent(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, bool, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "create_if_absent")()
	defer logger.LogDuration(ctx, "Upsert portfolio", "collection", CollectionName, "user_id", p.UserID)()

	doc := p.Clone()
	doc.PrepareInsert(r.now())

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.Portfolio
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"userId": doc.UserID},
		bson.M{"$setOnInsert": doc},
		opts,
	).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		existing, findErr := r.FindByUser(ctx, doc.UserID)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert portfolio: %w", err)
	}
	return &stored, stored.ID == doc.ID, nil
}

func (r *PortfolioRepository) Replace(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "replace")()

	current, err := r.FindByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	next := current.ReplaceWith(p, r.now())

	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var stored domain.Portfolio
	err = r.coll.FindOneAndReplace(ctx, bson.M{"_id": current.ID}, next, opts).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to replace portfolio: %w", err)
	}
	return &stored, nil
}
