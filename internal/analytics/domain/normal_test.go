package domain

import (
	"math"
	"testing"
)

// approxEqual 判断两个浮点数是否在给定容差内相等
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNormCDFKnownValues(t *testing.T) {
	// Abramowitz-Stegun 逼近的最大绝对误差约 1.5e-7
	const tol = 2e-7

	cases := []struct {
		x    float64
		want float64
	}{
		{0, 0.5},
		{1, 0.8413447460685429},
		{-1, 0.15865525393145707},
		{1.96, 0.9750021048517795},
		{-1.96, 0.024997895148220435},
		{2, 0.9772498680518208},
		{3, 0.9986501019683699},
		{-3, 0.0013498980316301035},
	}

	for _, c := range cases {
		got := NormCDF(c.x)
		if !approxEqual(got, c.want, tol) {
			t.Errorf("NormCDF(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestNormCDFSymmetry(t *testing.T) {
	// 符号对称构造保证 N(x) + N(-x) == 1 精确成立
	for _, x := range []float64{0.1, 0.5, 1, 1.5, 2.33, 4} {
		sum := NormCDF(x) + NormCDF(-x)
		if sum != 1 {
			t.Errorf("NormCDF(%v) + NormCDF(-%v) = %v, want exactly 1", x, x, sum)
		}
	}
}

func TestNormCDFBounds(t *testing.T) {
	for _, x := range []float64{-40, -8, -1, 0, 1, 8, 40} {
		p := NormCDF(x)
		if p < 0 || p > 1 {
			t.Errorf("NormCDF(%v) = %v, outside [0,1]", x, p)
		}
	}
}

func TestNormPDF(t *testing.T) {
	const tol = 1e-15

	if got := NormPDF(0); !approxEqual(got, 1/math.Sqrt(2*math.Pi), tol) {
		t.Errorf("NormPDF(0) = %v, want %v", got, 1/math.Sqrt(2*math.Pi))
	}
	if got, want := NormPDF(1), 0.24197072451914337; !approxEqual(got, want, tol) {
		t.Errorf("NormPDF(1) = %v, want %v", got, want)
	}
	// 密度函数为偶函数
	if NormPDF(1.7) != NormPDF(-1.7) {
		t.Errorf("NormPDF is not symmetric: %v != %v", NormPDF(1.7), NormPDF(-1.7))
	}
}
