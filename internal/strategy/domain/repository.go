package domain

import "context"

// StrategyRepository 策略仓储接口
type StrategyRepository interface {
	// List 返回全部策略，顺序不保证
	List(ctx context.Context) ([]*Strategy, error)
	// FindByID 不存在或 ID 非法时返回 ErrStrategyNotFound
	FindByID(ctx context.Context, id string) (*Strategy, error)
	// FindByIDs 返回存在的匹配项，非法或未知 ID 直接忽略
	FindByIDs(ctx context.Context, ids []string) ([]*Strategy, error)
	// CreateIfAbsent 按 name 原子写入；返回最终存储的文档及是否由本次创建
	CreateIfAbsent(ctx context.Context, s *Strategy) (*Strategy, bool, error)
}
