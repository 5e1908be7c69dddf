// Package domain 投资组合领域模型：持仓、收益序列、绩效指标与种子数据生成
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReturnPoint 收益序列中的一个日收盘点
type ReturnPoint struct {
	Date      string  `json:"date" bson:"date"`
	Value     float64 `json:"value" bson:"value"`
	Benchmark float64 `json:"benchmark" bson:"benchmark"`
}

// Performance 组合绩效，创建时写入，读取时不重新计算
type Performance struct {
	DailyPnL    float64       `json:"dailyPnL" bson:"dailyPnL"`
	TotalPnL    float64       `json:"totalPnL" bson:"totalPnL"`
	ROI         float64       `json:"roi" bson:"roi"`
	CAGR        float64       `json:"cagr" bson:"cagr"`
	MaxDrawdown float64       `json:"maxDrawdown" bson:"maxDrawdown"`
	Returns     []ReturnPoint `json:"returns" bson:"returns"`
}

// Portfolio 投资组合聚合根，每个用户一条
type Portfolio struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	TotalValue  float64            `json:"totalValue" bson:"totalValue"`
	CashBalance float64            `json:"cashBalance" bson:"cashBalance"`
	Positions   []Position         `json:"positions" bson:"positions"`
	Performance Performance        `json:"performance" bson:"performance"`
	LastUpdated time.Time          `json:"lastUpdated" bson:"lastUpdated"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Clone 深拷贝，内存存储返回副本
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Positions = append([]Position(nil), p.Positions...)
	cp.Performance.Returns = append([]ReturnPoint(nil), p.Performance.Returns...)
	return &cp
}

// PrepareInsert 分配 ID 并写入时间戳
func (p *Portfolio) PrepareInsert(now time.Time) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.LastUpdated.IsZero() {
		p.LastUpdated = now
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}

// ReplaceWith 用新内容整体替换，保留身份与创建时间
func (p *Portfolio) ReplaceWith(next *Portfolio, now time.Time) *Portfolio {
	out := next.Clone()
	out.ID = p.ID
	out.UserID = p.UserID
	out.CreatedAt = p.CreatedAt
	out.UpdatedAt = now
	if out.LastUpdated.IsZero() {
		out.LastUpdated = now
	}
	return out
}

// PositionsValue 持仓总市值
func (p *Portfolio) PositionsValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// UnrealizedPnL 持仓浮动盈亏合计
func (p *Portfolio) UnrealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		total = total.Add(pos.UnrealizedPnL())
	}
	return total
}

// Validate 校验持仓字段；重复 symbol 不视为错误
func (p *Portfolio) Validate() error {
	for i, pos := range p.Positions {
		if pos.Symbol == "" {
			return fmt.Errorf("%w: position %d has no symbol", ErrInvalidPortfolio, i)
		}
		if pos.Quantity < 0 || pos.AveragePrice < 0 || pos.CurrentPrice < 0 {
			return fmt.Errorf("%w: position %s has negative fields", ErrInvalidPortfolio, pos.Symbol)
		}
	}
	return nil
}

var (
	// ErrPortfolioNotFound 组合不存在
	ErrPortfolioNotFound = errors.New("portfolio not found")
	// ErrInvalidPortfolio 组合内容非法
	ErrInvalidPortfolio = errors.New("invalid portfolio")
)
