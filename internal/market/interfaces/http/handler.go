package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/portfolioanalytics/internal/market/application"
	"github.com/wyfcoding/portfolioanalytics/pkg/response"
)

// MarketHandler 市场资讯 HTTP 处理器
type MarketHandler struct {
	service *application.MarketService
}

func NewMarketHandler(service *application.MarketService) *MarketHandler {
	return &MarketHandler{service: service}
}

func (h *MarketHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/market")
	{
		api.GET("/updates", h.GetUpdates)
	}
}

// GetUpdates 获取市场资讯
func (h *MarketHandler) GetUpdates(c *gin.Context) {
	response.Success(c, h.service.GetUpdates(c.Request.Context()))
}
