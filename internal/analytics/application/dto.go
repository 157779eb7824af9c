package application

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
)

// GreeksDTO 单次定价响应
// 引擎内部全程 float64 计算，出口处转为 decimal 以固定展示精度
type GreeksDTO struct {
	Symbol string          `json:"symbol,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Delta  decimal.Decimal `json:"delta"`
	Gamma  decimal.Decimal `json:"gamma"`
	Theta  decimal.Decimal `json:"theta"`
	Vega   decimal.Decimal `json:"vega"`
	Rho    decimal.Decimal `json:"rho"`
}

// SweepPointDTO 一维扫描采样点
type SweepPointDTO struct {
	ParameterValue float64   `json:"parameter_value"`
	Greeks         GreeksDTO `json:"greeks"`
}

// SurfacePointDTO 曲面网格点
type SurfacePointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AggregatedPointDTO 组合汇总采样点
type AggregatedPointDTO struct {
	ParameterValue float64 `json:"parameter_value"`
	Delta          float64 `json:"delta"`
	Gamma          float64 `json:"gamma"`
	Theta          float64 `json:"theta"`
	Vega           float64 `json:"vega"`
	Rho            float64 `json:"rho"`
	Value          float64 `json:"value"`
}

// RangeDTO 扫描区间参数
type RangeDTO struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	StepCount int     `json:"step_count"`
}

// EvaluateGreeksCommand 单次定价命令
type EvaluateGreeksCommand struct {
	Symbol       string
	OptionType   string
	Spot         float64
	Strike       float64
	TimeToExpiry float64
	Rate         float64
	Volatility   float64
}

// GenerateSweepCommand 一维扫描命令
type GenerateSweepCommand struct {
	EvaluateGreeksCommand
	Dimension string
	Range     *RangeDTO // 为空时使用该维度的默认区间
}

// GenerateSurfaceCommand 曲面网格命令
type GenerateSurfaceCommand struct {
	EvaluateGreeksCommand
	XDimension string
	YDimension string
	XRange     *RangeDTO
	YRange     *RangeDTO
}

// PortfolioLegCommand 组合中的一条腿
type PortfolioLegCommand struct {
	OptionType   string
	Side         string
	Quantity     int
	Spot         float64
	Strike       float64
	TimeToExpiry float64
	Rate         float64
	Volatility   float64
}

// AggregatePortfolioCommand 组合汇总命令
type AggregatePortfolioCommand struct {
	Legs      []PortfolioLegCommand
	Dimension string
	Range     *RangeDTO
}

func toGreeksDTO(symbol string, g domain.Greeks) GreeksDTO {
	return GreeksDTO{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(g.Price),
		Delta:  decimal.NewFromFloat(g.Delta),
		Gamma:  decimal.NewFromFloat(g.Gamma),
		Theta:  decimal.NewFromFloat(g.Theta),
		Vega:   decimal.NewFromFloat(g.Vega),
		Rho:    decimal.NewFromFloat(g.Rho),
	}
}
