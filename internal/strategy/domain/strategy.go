// Package domain 策略领域模型：收益、统计、配置、交易记录与风险指标
package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Risk 风险等级，Low < Medium < High
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Severity 风险等级序数，非法值返回 -1
func (r Risk) Severity() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// Valid 是否为合法等级
func (r Risk) Valid() bool { return r.Severity() >= 0 }

// TradeType 交易方向
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Valid 是否为合法方向
func (t TradeType) Valid() bool { return t == TradeBuy || t == TradeSell }

// ReturnPoint 策略收益点
type ReturnPoint struct {
	Date      time.Time `json:"date" bson:"date"`
	Value     float64   `json:"value" bson:"value"`
	Benchmark float64   `json:"benchmark" bson:"benchmark"`
}

// Statistics 策略统计
type Statistics struct {
	ROI         float64 `json:"roi" bson:"roi"`
	CAGR        float64 `json:"cagr" bson:"cagr"`
	SharpeRatio float64 `json:"sharpeRatio" bson:"sharpeRatio"`
	MaxDrawdown float64 `json:"maxDrawdown" bson:"maxDrawdown"`
	WinRate     float64 `json:"winRate" bson:"winRate"`
	Volatility  float64 `json:"volatility" bson:"volatility"`
	Alpha       float64 `json:"alpha" bson:"alpha"`
	Beta        float64 `json:"beta" bson:"beta"`
}

// Allocation 配置项；百分比之和不强制为 100
type Allocation struct {
	Symbol     string  `json:"symbol" bson:"symbol"`
	Percentage float64 `json:"percentage" bson:"percentage"`
	Sector     string  `json:"sector" bson:"sector"`
}

// Performance 策略绩效
type Performance struct {
	Returns    []ReturnPoint `json:"returns" bson:"returns"`
	Statistics Statistics    `json:"statistics" bson:"statistics"`
	Allocation []Allocation  `json:"allocation" bson:"allocation"`
}

// Trade 交易记录，pnl 可缺省
type Trade struct {
	Date     time.Time `json:"date" bson:"date"`
	Type     TradeType `json:"type" bson:"type"`
	Symbol   string    `json:"symbol" bson:"symbol"`
	Quantity float64   `json:"quantity" bson:"quantity"`
	Price    float64   `json:"price" bson:"price"`
	PnL      *float64  `json:"pnl,omitempty" bson:"pnl,omitempty"`
	Fees     float64   `json:"fees" bson:"fees"`
	Sector   string    `json:"sector" bson:"sector"`
}

// Metrics 资金与分周期盈亏
type Metrics struct {
	TotalValue float64 `json:"totalValue" bson:"totalValue"`
	Invested   float64 `json:"invested" bson:"invested"`
	Available  float64 `json:"available" bson:"available"`
	DailyPnL   float64 `json:"dailyPnL" bson:"dailyPnL"`
	WeeklyPnL  float64 `json:"weeklyPnL" bson:"weeklyPnL"`
	MonthlyPnL float64 `json:"monthlyPnL" bson:"monthlyPnL"`
	YearlyPnL  float64 `json:"yearlyPnL" bson:"yearlyPnL"`
}

// StressTestResults 压力测试结果
type StressTestResults struct {
	MarketCrash    float64 `json:"marketCrash" bson:"marketCrash"`
	HighVolatility float64 `json:"highVolatility" bson:"highVolatility"`
	Recession      float64 `json:"recession" bson:"recession"`
}

// RiskMetrics 风险指标
type RiskMetrics struct {
	VaR               float64           `json:"var" bson:"var"`
	ExpectedShortfall float64           `json:"expectedShortfall" bson:"expectedShortfall"`
	StressTestResults StressTestResults `json:"stressTestResults" bson:"stressTestResults"`
}

// Strategy 策略聚合根，name 唯一
type Strategy struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Type        string             `json:"type" bson:"type"`
	Risk        Risk               `json:"risk" bson:"risk"`
	Performance Performance        `json:"performance" bson:"performance"`
	Trades      []Trade            `json:"trades" bson:"trades"`
	Metrics     Metrics            `json:"metrics" bson:"metrics"`
	RiskMetrics RiskMetrics        `json:"riskMetrics" bson:"riskMetrics"`
	LastUpdated time.Time          `json:"lastUpdated" bson:"lastUpdated"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Clone 深拷贝
func (s *Strategy) Clone() *Strategy {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Performance.Returns = append([]ReturnPoint(nil), s.Performance.Returns...)
	cp.Performance.Allocation = append([]Allocation(nil), s.Performance.Allocation...)
	cp.Trades = make([]Trade, len(s.Trades))
	for i, t := range s.Trades {
		if t.PnL != nil {
			v := *t.PnL
			t.PnL = &v
		}
		cp.Trades[i] = t
	}
	return &cp
}

// PrepareInsert 分配 ID 并写入时间戳
func (s *Strategy) PrepareInsert(now time.Time) {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.LastUpdated.IsZero() {
		s.LastUpdated = now
	}
	s.CreatedAt = now
	s.UpdatedAt = now
}

// Validate 校验枚举字段
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStrategy)
	}
	if !s.Risk.Valid() {
		return fmt.Errorf("%w: unknown risk %q", ErrInvalidStrategy, s.Risk)
	}
	for _, t := range s.Trades {
		if !t.Type.Valid() {
			return fmt.Errorf("%w: unknown trade type %q", ErrInvalidStrategy, t.Type)
		}
	}
	return nil
}

// ParseID 解析策略 ID；格式非法时 ok 为 false
func ParseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// ParseIDs 解析一组 ID，丢弃非法与重复项
func ParseIDs(ids []string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, ok := ParseID(id)
		if !ok {
			continue
		}
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		out = append(out, oid)
	}
	return out
}

var (
	// ErrStrategyNotFound 策略不存在
	ErrStrategyNotFound = errors.New("strategy not found")
	// ErrInvalidStrategy 策略内容非法
	ErrInvalidStrategy = errors.New("invalid strategy")
)
