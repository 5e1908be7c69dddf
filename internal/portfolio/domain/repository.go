package domain

import "context"

// PortfolioRepository 组合仓储接口
type PortfolioRepository interface {
	// FindByUser 按用户读取，不存在返回 ErrPortfolioNotFound
	FindByUser(ctx context.Context, userID string) (*Portfolio, error)
	// CreateIfAbsent 原子地仅在用户无组合时写入；返回最终存储的文档及是否由本次创建
	CreateIfAbsent(ctx context.Context, p *Portfolio) (*Portfolio, bool, error)
	// Replace 整体替换已有组合，不存在返回 ErrPortfolioNotFound
	Replace(ctx context.Context, p *Portfolio) (*Portfolio, error)
}
