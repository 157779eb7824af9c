package domain

import (
	"errors"
	"fmt"
	"math"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// Valid 判断期权类型是否合法
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// PositionSide 持仓方向
type PositionSide string

const (
	PositionLong  PositionSide = "LONG"  // 多头，权重符号 +1
	PositionShort PositionSide = "SHORT" // 空头，权重符号 -1
)

// Sign 返回方向对应的权重符号
func (p PositionSide) Sign() float64 {
	if p == PositionShort {
		return -1
	}
	return 1
}

// ErrInvalidLeg 非法的期权参数（违反调用方契约：S,K,sigma 必须为正，T 必须非负）
var ErrInvalidLeg = errors.New("invalid option leg")

// OptionLeg 单腿期权参数，不可变值对象
// 由调用方按次构造；所有字段必须为有限实数
type OptionLeg struct {
	Type         OptionType `json:"type"`
	Spot         float64    `json:"spot"`           // 标的资产当前价格 S
	Strike       float64    `json:"strike"`         // 行权价格 K
	TimeToExpiry float64    `json:"time_to_expiry"` // 到期时间 T（年）
	Rate         float64    `json:"rate"`           // 无风险利率 r
	Volatility   float64    `json:"volatility"`     // 年化波动率 sigma
}

// Validate 校验期权参数
// 违反契约时立即失败，绝不静默修正后继续计算
func (l OptionLeg) Validate() error {
	if !l.Type.Valid() {
		return fmt.Errorf("%w: unknown option type %q", ErrInvalidLeg, l.Type)
	}
	if !isFinite(l.Spot) || l.Spot <= 0 {
		return fmt.Errorf("%w: spot must be a positive finite number, got %v", ErrInvalidLeg, l.Spot)
	}
	if !isFinite(l.Strike) || l.Strike <= 0 {
		return fmt.Errorf("%w: strike must be a positive finite number, got %v", ErrInvalidLeg, l.Strike)
	}
	if !isFinite(l.TimeToExpiry) || l.TimeToExpiry < 0 {
		return fmt.Errorf("%w: time to expiry must be a non-negative finite number, got %v", ErrInvalidLeg, l.TimeToExpiry)
	}
	if !isFinite(l.Rate) {
		return fmt.Errorf("%w: rate must be a finite number, got %v", ErrInvalidLeg, l.Rate)
	}
	if !isFinite(l.Volatility) || l.Volatility <= 0 {
		return fmt.Errorf("%w: volatility must be a positive finite number, got %v", ErrInvalidLeg, l.Volatility)
	}
	return nil
}

// PortfolioLeg 组合中的一条持仓腿
type PortfolioLeg struct {
	OptionLeg
	Side     PositionSide `json:"side"`
	Quantity int          `json:"quantity"`
}

// Weight 返回该腿的加权系数 sign * quantity
// 数量缺省或非正时回退为 1（约定的兜底值，而非静默置零）
func (l PortfolioLeg) Weight() float64 {
	qty := l.Quantity
	if qty <= 0 {
		qty = 1
	}
	return l.Side.Sign() * float64(qty)
}

// Greeks 单次定价结果：价格与五个风险敏感度
// Theta 为日度衰减（年化值 / 365），Vega 与 Rho 按每 1% 变动计（/100）
type Greeks struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
