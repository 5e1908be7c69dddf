package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/portfolioanalytics/internal/strategy/application"
	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/response"
	"github.com/wyfcoding/portfolioanalytics/pkg/utils"
)

// HTTP 处理器
// 负责策略列表、详情与对比
type StrategyHandler struct {
	service *application.StrategyService
}

// 创建 HTTP 处理器
func NewStrategyHandler(service *application.StrategyService) *StrategyHandler {
	return &StrategyHandler{service: service}
}

// 注册路由
func (h *StrategyHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/strategy")
	{
		api.GET("", h.ListStrategies)
		api.GET("/:id", h.GetStrategy)
		api.GET("/compare/:ids", h.CompareByPath)
		api.POST("/compare", h.CompareByBody)
	}
}

// ListStrategies 获取全部策略，空集合时写入演示策略
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	list, err := h.service.ListStrategies(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list strategies", "error", err)
		response.InternalError(c, "Error fetching strategies")
		return
	}
	response.Success(c, list)
}

// GetStrategy 获取策略详情
func (h *StrategyHandler) GetStrategy(c *gin.Context) {
	id := c.Param("id")
	st, err := h.service.GetStrategy(c.Request.Context(), id)
	if errors.Is(err, domain.ErrStrategyNotFound) {
		response.NotFound(c, "Strategy not found")
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get strategy", "strategy_id", id, "error", err)
		response.InternalError(c, "Error fetching strategy")
		return
	}
	response.Success(c, st)
}

// CompareByPath GET /strategy/compare/{id1,id2,...}
func (h *StrategyHandler) CompareByPath(c *gin.Context) {
	h.compare(c, utils.SplitCSV(c.Param("ids")))
}

// CompareRequest 策略对比请求
type CompareRequest struct {
	StrategyIDs []string `json:"strategyIds" binding:"required"`
}

// CompareByBody POST /strategy/compare {"strategyIds": [...]}
func (h *StrategyHandler) CompareByBody(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(c.Request.Context(), "Invalid compare body", "error", err)
		response.InternalError(c, "Error comparing strategies")
		return
	}
	h.compare(c, req.StrategyIDs)
}

func (h *StrategyHandler) compare(c *gin.Context, ids []string) {
	list, err := h.service.CompareStrategies(c.Request.Context(), ids)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to compare strategies", "ids", ids, "error", err)
		response.InternalError(c, "Error comparing strategies")
		return
	}
	response.Success(c, list)
}
