package domain

import (
	"errors"
	"fmt"
)

// Dimension 扫描维度，封闭枚举
// 维度到字段覆盖的映射是全函数：不支持的维度在解析阶段即报错，不存在静默空转
type Dimension string

const (
	DimensionPrice      Dimension = "price"      // 标的价格
	DimensionStrike     Dimension = "strike"     // 行权价格
	DimensionTime       Dimension = "time"       // 到期时间
	DimensionVolatility Dimension = "volatility" // 波动率
	DimensionRate       Dimension = "rate"       // 无风险利率
	DimensionMoneyness  Dimension = "moneyness"  // 价值状态 S/K
)

// ErrUnknownDimension 不支持的扫描维度
var ErrUnknownDimension = errors.New("unknown sweep dimension")

// ErrInvalidRange 非法扫描区间（min > max 或 stepCount < 1）
var ErrInvalidRange = errors.New("invalid sweep range")

// ParseDimension 解析维度名
func ParseDimension(name string) (Dimension, error) {
	switch Dimension(name) {
	case DimensionPrice, DimensionStrike, DimensionTime,
		DimensionVolatility, DimensionRate, DimensionMoneyness:
		return Dimension(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

// apply 将扫描值覆盖到 base 的副本上
// moneyness 为特例：覆盖的是有效标的价 = strike * ratio，行权价保持不变，
// 即通过比率间接改变 S，而不是替换比率字段本身
func (d Dimension) apply(base OptionLeg, v float64) (OptionLeg, error) {
	leg := base
	switch d {
	case DimensionPrice:
		leg.Spot = v
	case DimensionStrike:
		leg.Strike = v
	case DimensionTime:
		leg.TimeToExpiry = v
	case DimensionVolatility:
		leg.Volatility = v
	case DimensionRate:
		leg.Rate = v
	case DimensionMoneyness:
		leg.Spot = base.Strike * v
	default:
		return leg, fmt.Errorf("%w: %q", ErrUnknownDimension, d)
	}
	return leg, nil
}

// SweepRange 单维度扫描区间，端点双闭
type SweepRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	StepCount int     `json:"step_count"`
}

// Validate 在任何计算开始前校验区间，避免部分/空结果掩盖配置错误
func (r SweepRange) Validate() error {
	if r.StepCount < 1 {
		return fmt.Errorf("%w: step count %d < 1", ErrInvalidRange, r.StepCount)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %v > max %v", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// value 返回第 i 个采样点的值，i ∈ [0, StepCount]
func (r SweepRange) value(i int) float64 {
	step := (r.Max - r.Min) / float64(r.StepCount)
	return r.Min + step*float64(i)
}

// DefaultRange1D 按维度返回一维扫描的默认区间，区间锚定在 base 腿的当前参数上
func DefaultRange1D(dim Dimension, base OptionLeg) (SweepRange, error) {
	switch dim {
	case DimensionPrice:
		return SweepRange{Min: 0.5 * base.Strike, Max: 1.5 * base.Strike, StepCount: 100}, nil
	case DimensionStrike:
		return SweepRange{Min: 0.5 * base.Spot, Max: 1.5 * base.Spot, StepCount: 100}, nil
	case DimensionTime:
		return SweepRange{Min: 0.01, Max: 2, StepCount: 100}, nil
	case DimensionVolatility:
		return SweepRange{Min: 0.05, Max: 1, StepCount: 95}, nil
	case DimensionRate:
		return SweepRange{Min: 0.01, Max: 0.1, StepCount: 90}, nil
	case DimensionMoneyness:
		return SweepRange{Min: 0.5, Max: 1.5, StepCount: 100}, nil
	}
	return SweepRange{}, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
}

// DefaultRange2D 按维度返回曲面网格的默认区间，固定 30 步
func DefaultRange2D(dim Dimension, base OptionLeg) (SweepRange, error) {
	switch dim {
	case DimensionPrice:
		return SweepRange{Min: 0.7 * base.Spot, Max: 1.3 * base.Spot, StepCount: 30}, nil
	case DimensionStrike:
		return SweepRange{Min: 0.7 * base.Strike, Max: 1.3 * base.Strike, StepCount: 30}, nil
	case DimensionTime:
		return SweepRange{Min: 0.1, Max: 2, StepCount: 30}, nil
	case DimensionVolatility:
		return SweepRange{Min: 0.05, Max: 0.6, StepCount: 30}, nil
	case DimensionRate:
		return SweepRange{Min: 0.01, Max: 0.1, StepCount: 30}, nil
	case DimensionMoneyness:
		return SweepRange{Min: 0.5, Max: 1.5, StepCount: 30}, nil
	}
	return SweepRange{}, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
}

// SweepSample 一维扫描采样点
type SweepSample struct {
	ParameterValue float64 `json:"parameter_value"`
	Greeks         Greeks  `json:"greeks"`
}

// SurfacePoint 曲面网格点，z 为期权价格
type SurfacePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sweep1D 沿单一维度扫描，返回 StepCount+1 个按序采样点（含两端）
// 纯函数：相同输入重复调用产生完全相同的序列
func Sweep1D(engine *Engine, base OptionLeg, dim Dimension, rng SweepRange) ([]SweepSample, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	samples := make([]SweepSample, 0, rng.StepCount+1)
	for i := 0; i <= rng.StepCount; i++ {
		v := rng.value(i)
		leg, err := dim.apply(base, v)
		if err != nil {
			return nil, err
		}
		g, err := engine.Evaluate(leg)
		if err != nil {
			return nil, fmt.Errorf("sweep %s at %v: %w", dim, v, err)
		}
		samples = append(samples, SweepSample{ParameterValue: v, Greeks: g})
	}
	return samples, nil
}

// Sweep2D 沿两个维度扫描，返回 (x+1)*(y+1) 个网格点，z 取价格
// y 维覆盖在 x 维之后应用：两个维度命中同一字段时以 y 值为准（后写覆盖）
func Sweep2D(engine *Engine, base OptionLeg, xDim Dimension, xRng SweepRange, yDim Dimension, yRng SweepRange) ([]SurfacePoint, error) {
	if err := xRng.Validate(); err != nil {
		return nil, fmt.Errorf("x range: %w", err)
	}
	if err := yRng.Validate(); err != nil {
		return nil, fmt.Errorf("y range: %w", err)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	points := make([]SurfacePoint, 0, (xRng.StepCount+1)*(yRng.StepCount+1))
	for i := 0; i <= xRng.StepCount; i++ {
		x := xRng.value(i)
		xLeg, err := xDim.apply(base, x)
		if err != nil {
			return nil, err
		}
		for j := 0; j <= yRng.StepCount; j++ {
			y := yRng.value(j)
			leg, err := yDim.apply(xLeg, y)
			if err != nil {
				return nil, err
			}
			g, err := engine.Evaluate(leg)
			if err != nil {
				return nil, fmt.Errorf("surface (%s=%v, %s=%v): %w", xDim, x, yDim, y, err)
			}
			points = append(points, SurfacePoint{X: x, Y: y, Z: g.Price})
		}
	}
	return points, nil
}
