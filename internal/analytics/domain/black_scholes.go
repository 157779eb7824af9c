package domain

import "math"

// DefaultExpiryEpsilon 默认到期判定阈值（年）
// 历史上存在过 0 与 0.0001 两个不一致的阈值，这里统一为显式可配置项
const DefaultExpiryEpsilon = 1e-4

// Engine Black-Scholes 定价引擎
// 每次 Evaluate 返回独立的结果值，无共享输出缓冲，可安全并发调用
type Engine struct {
	// ExpiryEpsilon 到期判定阈值：T <= ExpiryEpsilon 时按内在价值短路，
	// 避免 d1/d2 中除以 sigma*sqrt(T) 产生的除零
	ExpiryEpsilon float64
}

// NewEngine 创建使用默认到期阈值的引擎
func NewEngine() *Engine {
	return &Engine{ExpiryEpsilon: DefaultExpiryEpsilon}
}

// NewEngineWithEpsilon 创建使用指定到期阈值的引擎
func NewEngineWithEpsilon(epsilon float64) *Engine {
	return &Engine{ExpiryEpsilon: epsilon}
}

// Evaluate 计算单腿欧式期权的价格与希腊字母
// 参数违反契约（非正的 S/K/sigma、负的 T、非有限值）时返回 ErrInvalidLeg，
// 绝不让 NaN 静默传播进整个扫描序列
func (e *Engine) Evaluate(leg OptionLeg) (Greeks, error) {
	if err := leg.Validate(); err != nil {
		return Greeks{}, err
	}

	if leg.TimeToExpiry <= e.ExpiryEpsilon {
		return e.evaluateAtExpiry(leg), nil
	}

	S, K, T, r, sigma := leg.Spot, leg.Strike, leg.TimeToExpiry, leg.Rate, leg.Volatility

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	discount := math.Exp(-r * T)
	pdfD1 := NormPDF(d1)

	var g Greeks
	if leg.Type == OptionTypeCall {
		nd1 := NormCDF(d1)
		nd2 := NormCDF(d2)
		g.Price = S*nd1 - K*discount*nd2
		g.Delta = nd1
		g.Theta = -S*sigma*pdfD1/(2*sqrtT) - r*K*discount*nd2
		g.Rho = K * T * discount * nd2 / 100
	} else {
		nNegD1 := NormCDF(-d1)
		nNegD2 := NormCDF(-d2)
		g.Price = K*discount*nNegD2 - S*nNegD1
		g.Delta = NormCDF(d1) - 1
		g.Theta = -S*sigma*pdfD1/(2*sqrtT) + r*K*discount*nNegD2
		g.Rho = -K * T * discount * nNegD2 / 100
	}

	// Gamma 与 Vega 对看涨、看跌相同
	g.Gamma = pdfD1 / (S * sigma * sqrtT)
	g.Vega = S * sqrtT * pdfD1 / 100

	// 年化 theta 转为日度衰减
	g.Theta /= 365

	return g, nil
}

// evaluateAtExpiry 到期短路：价格取内在价值，delta 取 0/±1，其余希腊字母归零
func (e *Engine) evaluateAtExpiry(leg OptionLeg) Greeks {
	var g Greeks
	if leg.Type == OptionTypeCall {
		g.Price = math.Max(0, leg.Spot-leg.Strike)
		if leg.Spot > leg.Strike {
			g.Delta = 1
		}
	} else {
		g.Price = math.Max(0, leg.Strike-leg.Spot)
		if leg.Spot < leg.Strike {
			g.Delta = -1
		}
	}
	return g
}
