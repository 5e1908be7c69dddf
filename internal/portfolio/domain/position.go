package domain

import "github.com/shopspring/decimal"

// Position 组合中的单个持仓；同一 symbol 重复出现不做拒绝
type Position struct {
	Symbol       string  `json:"symbol" bson:"symbol"`
	Quantity     float64 `json:"quantity" bson:"quantity"`
	AveragePrice float64 `json:"averagePrice" bson:"averagePrice"`
	CurrentPrice float64 `json:"currentPrice" bson:"currentPrice"`
}

// MarketValue 当前市值
func (p Position) MarketValue() decimal.Decimal {
	return decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.CurrentPrice))
}

// UnrealizedPnL 浮动盈亏
func (p Position) UnrealizedPnL() decimal.Decimal {
	return decimal.NewFromFloat(p.CurrentPrice).
		Sub(decimal.NewFromFloat(p.AveragePrice)).
		Mul(decimal.NewFromFloat(p.Quantity))
}
