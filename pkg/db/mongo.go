package db

import (
	"context"
	"fmt"
	"time"

	pkgLogger "github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig 文档库配置
type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// Mongo 文档库连接包装
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// OpenMongo 建立连接并 ping 主节点
func OpenMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout+time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	pkgLogger.Info(ctx, "Database connected successfully", "driver", "mongo", "database", cfg.Database)
	return &Mongo{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Ping 健康检查
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close 断开连接
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
