package domain

import "time"

const (
	GreeksCalculatedEventType    = "GreeksCalculated"
	SweepCompletedEventType      = "SweepCompleted"
	SurfaceCompletedEventType    = "SurfaceCompleted"
	PortfolioAggregatedEventType = "PortfolioAggregated"
)

// GreeksCalculatedEvent 希腊字母计算完成事件
type GreeksCalculatedEvent struct {
	Symbol       string     `json:"symbol"`
	OptionType   OptionType `json:"option_type"`
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	TimeToExpiry float64    `json:"time_to_expiry"`
	Rate         float64    `json:"rate"`
	Volatility   float64    `json:"volatility"`
	Price        float64    `json:"price"`
	Delta        float64    `json:"delta"`
	Gamma        float64    `json:"gamma"`
	Theta        float64    `json:"theta"`
	Vega         float64    `json:"vega"`
	Rho          float64    `json:"rho"`
	CalculatedAt int64      `json:"calculated_at"`
	OccurredOn   time.Time  `json:"occurred_on"`
}

// SweepCompletedEvent 一维扫描完成事件
type SweepCompletedEvent struct {
	Symbol      string    `json:"symbol"`
	Dimension   Dimension `json:"dimension"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	SampleCount int       `json:"sample_count"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// SurfaceCompletedEvent 曲面网格计算完成事件
type SurfaceCompletedEvent struct {
	Symbol     string    `json:"symbol"`
	XDimension Dimension `json:"x_dimension"`
	YDimension Dimension `json:"y_dimension"`
	PointCount int       `json:"point_count"`
	OccurredOn time.Time `json:"occurred_on"`
}

// PortfolioAggregatedEvent 组合汇总完成事件
type PortfolioAggregatedEvent struct {
	Dimension  Dimension `json:"dimension"`
	LegCount   int       `json:"leg_count"`
	PointCount int       `json:"point_count"`
	OccurredOn time.Time `json:"occurred_on"`
}
