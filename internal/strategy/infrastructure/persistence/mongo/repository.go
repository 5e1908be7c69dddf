// Package mongo 基于 MongoDB 的策略仓储，strategies.name 唯一
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName 策略集合名
const CollectionName = "strategies"

// StrategyRepository MongoDB 实现
type StrategyRepository struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStrategyRepository 创建仓储；m 可为 nil
func NewStrategyRepository(db *mongo.Database, m *metrics.Metrics) *StrategyRepository {
	return &StrategyRepository{
		coll:    db.Collection(CollectionName),
		metrics: m,
		now:     time.Now,
	}
}

// EnsureIndexes 创建 name 唯一索引
func (r *StrategyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_name"),
	})
	if err != nil {
		return fmt.Errorf("failed to create strategies index: %w", err)
	}
	return nil
}

func (r *StrategyRepository) List(ctx context.Context) ([]*domain.Strategy, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "list")()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return decodeAll(ctx, cur)
}

func (r *StrategyRepository) FindByID(ctx context.Context, id string) (*domain.Strategy, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "find")()

	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.ErrStrategyNotFound
	}

	var s domain.Strategy
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrStrategyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find strategy: %w", err)
	}
	return &s, nil
}

func (r *StrategyRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Strategy, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "find_many")()

	oids := domain.ParseIDs(ids)
	if len(oids) == 0 {
		return []*domain.Strategy{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to compare strategies: %w", err)
	}
	return decodeAll(ctx, cur)
}

// CreateIfAbsent $setOnInsert 原子 upsert，唯一键冲突时回读
func (r *StrategyRepository) CreateIfAbsent(ctx context.Context, s *domain.Strategy) (*domain.Strategy, bool, error) {
	defer r.metrics.ObserveStoreOp(CollectionName, "create_if_absent")()
	defer logger.LogDuration(ctx, "Upsert strategy", "collection", CollectionName, "name", s.Name)()

	doc := s.Clone()
	doc.PrepareInsert(r.now())

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.Strategy
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"name": doc.Name},
		bson.M{"$setOnInsert": doc},
		opts,
	).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		var existing domain.Strategy
		if err := r.coll.FindOne(ctx, bson.M{"name": doc.Name}).Decode(&existing); err != nil {
			return nil, false, fmt.Errorf("failed to reread strategy: %w", err)
		}
		return &existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert strategy: %w", err)
	}
	return &stored, stored.ID == doc.ID, nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*domain.Strategy, error) {
	out := make([]*domain.Strategy, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode strategies: %w", err)
	}
	return out, nil
}
