package domain

import "math"

// Abramowitz-Stegun 有理逼近系数（公式 7.1.26），最大绝对误差约 1.5e-7
const (
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
	asP  = 0.3275911
)

// NormCDF 标准正态分布累积分布函数
// 采用 Abramowitz-Stegun 对 erf 的有理逼近，精度与参考实现保持一致
func NormCDF(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	z := math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + asP*z)
	erf := 1.0 - ((((asA5*t+asA4)*t+asA3)*t+asA2)*t+asA1)*t*math.Exp(-z*z)

	return 0.5 * (1.0 + sign*erf)
}

// NormPDF 标准正态分布概率密度函数
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
