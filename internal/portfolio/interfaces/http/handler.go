package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/application"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/response"
)

// HTTP 处理器
// 负责组合读取、整体替换与绩效查询
type PortfolioHandler struct {
	service *application.PortfolioService
}

// 创建 HTTP 处理器
func NewPortfolioHandler(service *application.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// 注册路由
func (h *PortfolioHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/portfolio")
	{
		api.GET("", h.GetPortfolio)
		api.PUT("", h.ReplacePortfolio)
		api.GET("/performance", h.GetPerformance)
	}
}

// GetPortfolio 获取组合，不存在时生成种子数据
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	p, err := h.service.GetPortfolio(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get portfolio", "error", err)
		response.InternalError(c, "Error fetching portfolio data")
		return
	}
	response.Success(c, p)
}

// PositionRequest 持仓
type PositionRequest struct {
	Symbol       string   `json:"symbol" binding:"required"`
	Quantity     *float64 `json:"quantity" binding:"required"`
	AveragePrice *float64 `json:"averagePrice" binding:"required"`
	CurrentPrice *float64 `json:"currentPrice" binding:"required"`
}

// ReturnPointRequest 收益点
type ReturnPointRequest struct {
	Date      string   `json:"date" binding:"required"`
	Value     *float64 `json:"value" binding:"required"`
	Benchmark *float64 `json:"benchmark" binding:"required"`
}

// PerformanceRequest 绩效
type PerformanceRequest struct {
	DailyPnL    *float64             `json:"dailyPnL" binding:"required"`
	TotalPnL    *float64             `json:"totalPnL" binding:"required"`
	ROI         *float64             `json:"roi" binding:"required"`
	CAGR        *float64             `json:"cagr" binding:"required"`
	MaxDrawdown *float64             `json:"maxDrawdown" binding:"required"`
	Returns     []ReturnPointRequest `json:"returns" binding:"dive"`
}

// ReplacePortfolioRequest 整体替换请求
type ReplacePortfolioRequest struct {
	TotalValue  *float64            `json:"totalValue" binding:"required"`
	CashBalance *float64            `json:"cashBalance" binding:"required"`
	Positions   []PositionRequest   `json:"positions" binding:"dive"`
	Performance *PerformanceRequest `json:"performance" binding:"required"`
	LastUpdated *time.Time          `json:"lastUpdated"`
}

func (r *ReplacePortfolioRequest) toDomain() *domain.Portfolio {
	p := &domain.Portfolio{
		TotalValue:  *r.TotalValue,
		CashBalance: *r.CashBalance,
		Positions:   make([]domain.Position, 0, len(r.Positions)),
		Performance: domain.Performance{
			DailyPnL:    *r.Performance.DailyPnL,
			TotalPnL:    *r.Performance.TotalPnL,
			ROI:         *r.Performance.ROI,
			CAGR:        *r.Performance.CAGR,
			MaxDrawdown: *r.Performance.MaxDrawdown,
			Returns:     make([]domain.ReturnPoint, 0, len(r.Performance.Returns)),
		},
	}
	for _, pos := range r.Positions {
		p.Positions = append(p.Positions, domain.Position{
			Symbol:       pos.Symbol,
			Quantity:     *pos.Quantity,
			AveragePrice: *pos.AveragePrice,
			CurrentPrice: *pos.CurrentPrice,
		})
	}
	for _, rp := range r.Performance.Returns {
		p.Performance.Returns = append(p.Performance.Returns, domain.ReturnPoint{
			Date:      rp.Date,
			Value:     *rp.Value,
			Benchmark: *rp.Benchmark,
		})
	}
	if r.LastUpdated != nil {
		p.LastUpdated = *r.LastUpdated
	}
	return p
}

// ReplacePortfolio 用请求体整体替换组合；组合尚未创建时返回 404
func (h *PortfolioHandler) ReplacePortfolio(c *gin.Context) {
	var req ReplacePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(c.Request.Context(), "Invalid portfolio body", "error", err)
		response.InternalError(c, "Error updating portfolio")
		return
	}

	updated, err := h.service.ReplacePortfolio(c.Request.Context(), req.toDomain())
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		response.NotFound(c, "Portfolio not found")
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to update portfolio", "error", err)
		response.InternalError(c, "Error updating portfolio")
		return
	}
	response.Success(c, updated)
}

// GetPerformance 获取绩效
func (h *PortfolioHandler) GetPerformance(c *gin.Context) {
	perf, err := h.service.GetPerformance(c.Request.Context())
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		response.ErrorWithStatus(c, http.StatusNotFound, "Portfolio not found")
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get portfolio performance", "error", err)
		response.InternalError(c, "Error fetching portfolio performance")
		return
	}
	response.Success(c, perf)
}
