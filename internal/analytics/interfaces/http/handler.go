package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionanalytics/internal/analytics/application"
	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
	"github.com/wyfcoding/optionanalytics/pkg/logger"
	"github.com/wyfcoding/optionanalytics/pkg/response"
)

// AnalyticsHandler HTTP 处理器
// 负责期权定价、扫描与组合汇总的 HTTP 请求
type AnalyticsHandler struct {
	app *application.AnalyticsService
}

// NewAnalyticsHandler 创建 HTTP 处理器实例
func NewAnalyticsHandler(app *application.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *AnalyticsHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/analytics")
	{
		api.POST("/greeks", h.EvaluateGreeks)
		api.POST("/sweep", h.GenerateSweep)
		api.POST("/surface", h.GenerateSurface)
		api.POST("/portfolio/aggregate", h.AggregatePortfolio)
		api.GET("/history/:symbol", h.GetHistory)
	}
}

// OptionRequest 期权参数
type OptionRequest struct {
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type" binding:"required"`
	Spot         float64 `json:"spot" binding:"required"`
	Strike       float64 `json:"strike" binding:"required"`
	TimeToExpiry float64 `json:"time_to_expiry"`
	Rate         float64 `json:"rate"`
	Volatility   float64 `json:"volatility" binding:"required"`
}

// RangeRequest 扫描区间
type RangeRequest struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	StepCount int     `json:"step_count"`
}

// SweepRequest 一维扫描请求
type SweepRequest struct {
	Option    OptionRequest `json:"option" binding:"required"`
	Dimension string        `json:"dimension" binding:"required"`
	Range     *RangeRequest `json:"range"`
}

// SurfaceRequest 曲面网格请求
type SurfaceRequest struct {
	Option     OptionRequest `json:"option" binding:"required"`
	XDimension string        `json:"x_dimension" binding:"required"`
	YDimension string        `json:"y_dimension" binding:"required"`
	XRange     *RangeRequest `json:"x_range"`
	YRange     *RangeRequest `json:"y_range"`
}

// PortfolioLegRequest 组合持仓腿
type PortfolioLegRequest struct {
	Type         string  `json:"type" binding:"required"`
	Side         string  `json:"side" binding:"required"`
	Quantity     int     `json:"quantity"`
	Spot         float64 `json:"spot" binding:"required"`
	Strike       float64 `json:"strike" binding:"required"`
	TimeToExpiry float64 `json:"time_to_expiry"`
	Rate         float64 `json:"rate"`
	Volatility   float64 `json:"volatility" binding:"required"`
}

// AggregateRequest 组合汇总请求
type AggregateRequest struct {
	Legs      []PortfolioLegRequest `json:"legs" binding:"required,min=1"`
	Dimension string                `json:"dimension" binding:"required"`
	Range     *RangeRequest         `json:"range"`
}

// EvaluateGreeks 单腿定价
func (h *AnalyticsHandler) EvaluateGreeks(c *gin.Context) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.app.EvaluateGreeks(c.Request.Context(), toEvaluateCommand(req))
	if err != nil {
		h.fail(c, "Failed to evaluate greeks", err)
		return
	}

	response.Success(c, gin.H{
		"greeks":           result,
		"calculation_time": time.Now(),
	})
}

// GenerateSweep 一维参数扫描
func (h *AnalyticsHandler) GenerateSweep(c *gin.Context) {
	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.GenerateSweepCommand{
		EvaluateGreeksCommand: toEvaluateCommand(req.Option),
		Dimension:             req.Dimension,
		Range:                 toRangeDTO(req.Range),
	}

	samples, err := h.app.GenerateSweep(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "Failed to generate sweep", err)
		return
	}

	response.Success(c, gin.H{
		"dimension": req.Dimension,
		"samples":   samples,
	})
}

// GenerateSurface 曲面网格
func (h *AnalyticsHandler) GenerateSurface(c *gin.Context) {
	var req SurfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.GenerateSurfaceCommand{
		EvaluateGreeksCommand: toEvaluateCommand(req.Option),
		XDimension:            req.XDimension,
		YDimension:            req.YDimension,
		XRange:                toRangeDTO(req.XRange),
		YRange:                toRangeDTO(req.YRange),
	}

	points, err := h.app.GenerateSurface(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "Failed to generate surface", err)
		return
	}

	response.Success(c, gin.H{
		"x_dimension": req.XDimension,
		"y_dimension": req.YDimension,
		"points":      points,
	})
}

// AggregatePortfolio 组合加权汇总
func (h *AnalyticsHandler) AggregatePortfolio(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	legs := make([]application.PortfolioLegCommand, 0, len(req.Legs))
	for _, l := range req.Legs {
		legs = append(legs, application.PortfolioLegCommand{
			OptionType:   l.Type,
			Side:         l.Side,
			Quantity:     l.Quantity,
			Spot:         l.Spot,
			Strike:       l.Strike,
			TimeToExpiry: l.TimeToExpiry,
			Rate:         l.Rate,
			Volatility:   l.Volatility,
		})
	}

	cmd := application.AggregatePortfolioCommand{
		Legs:      legs,
		Dimension: req.Dimension,
		Range:     toRangeDTO(req.Range),
	}

	points, err := h.app.AggregatePortfolio(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "Failed to aggregate portfolio", err)
		return
	}

	response.Success(c, gin.H{
		"dimension": req.Dimension,
		"points":    points,
	})
}

// GetHistory 查询定价历史
func (h *AnalyticsHandler) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")

	records, err := h.app.GetHistory(c.Request.Context(), symbol, 50)
	if err != nil {
		h.fail(c, "Failed to load evaluation history", err)
		return
	}

	response.Success(c, gin.H{
		"symbol":  symbol,
		"records": records,
	})
}

// fail 按错误类别映射状态码：契约违反与配置错误归为 400，其余归为 500
func (h *AnalyticsHandler) fail(c *gin.Context, msg string, err error) {
	logger.Error(c.Request.Context(), msg, "error", err)

	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrInvalidLeg) ||
		errors.Is(err, domain.ErrUnknownDimension) ||
		errors.Is(err, domain.ErrInvalidRange) ||
		errors.Is(err, domain.ErrEmptyPortfolio) {
		status = http.StatusBadRequest
	}
	response.ErrorWithStatus(c, status, err.Error(), "")
}

func toEvaluateCommand(req OptionRequest) application.EvaluateGreeksCommand {
	return application.EvaluateGreeksCommand{
		Symbol:       req.Symbol,
		OptionType:   req.Type,
		Spot:         req.Spot,
		Strike:       req.Strike,
		TimeToExpiry: req.TimeToExpiry,
		Rate:         req.Rate,
		Volatility:   req.Volatility,
	}
}

func toRangeDTO(r *RangeRequest) *application.RangeDTO {
	if r == nil {
		return nil
	}
	return &application.RangeDTO{Min: r.Min, Max: r.Max, StepCount: r.StepCount}
}
