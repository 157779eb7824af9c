package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyPortfolio 组合中没有任何持仓腿
var ErrEmptyPortfolio = errors.New("portfolio has no legs")

// AggregatedPoint 单个扫描点上全组合的加权汇总
type AggregatedPoint struct {
	ParameterValue float64 `json:"parameter_value"`
	Delta          float64 `json:"delta"`
	Gamma          float64 `json:"gamma"`
	Theta          float64 `json:"theta"`
	Vega           float64 `json:"vega"`
	Rho            float64 `json:"rho"`
	Value          float64 `json:"value"`
}

// Aggregate 沿指定维度扫描整个组合
// 每个扫描点上按输入顺序逐腿求值，并以 sign * quantity 加权累加；
// 求和顺序固定，保证重复调用结果逐位可复现
func Aggregate(engine *Engine, legs []PortfolioLeg, dim Dimension, rng SweepRange) ([]AggregatedPoint, error) {
	if len(legs) == 0 {
		return nil, ErrEmptyPortfolio
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	for i, leg := range legs {
		if err := leg.OptionLeg.Validate(); err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
	}

	points := make([]AggregatedPoint, 0, rng.StepCount+1)
	for i := 0; i <= rng.StepCount; i++ {
		v := rng.value(i)
		point := AggregatedPoint{ParameterValue: v}

		for j, leg := range legs {
			derived, err := dim.apply(leg.OptionLeg, v)
			if err != nil {
				return nil, err
			}
			g, err := engine.Evaluate(derived)
			if err != nil {
				return nil, fmt.Errorf("leg %d at %s=%v: %w", j, dim, v, err)
			}

			w := leg.Weight()
			point.Delta += w * g.Delta
			point.Gamma += w * g.Gamma
			point.Theta += w * g.Theta
			point.Vega += w * g.Vega
			point.Rho += w * g.Rho
			point.Value += w * g.Price
		}

		points = append(points, point)
	}
	return points, nil
}

// DefaultAggregateRange 组合扫描的默认区间
// 与一维扫描默认值一致，但以首腿的当前参数为锚（price 维锚定首腿现价）
func DefaultAggregateRange(dim Dimension, legs []PortfolioLeg) (SweepRange, error) {
	if len(legs) == 0 {
		return SweepRange{}, ErrEmptyPortfolio
	}
	first := legs[0].OptionLeg
	if dim == DimensionPrice {
		return SweepRange{Min: 0.5 * first.Spot, Max: 1.5 * first.Spot, StepCount: 100}, nil
	}
	return DefaultRange1D(dim, first)
}
