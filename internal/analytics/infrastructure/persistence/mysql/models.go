package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
)

// EvaluationModel 定价历史表模型
type EvaluationModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time       `gorm:"index"`
	Symbol       string          `gorm:"column:symbol;type:varchar(32);index;not null"`
	OptionType   string          `gorm:"column:option_type;type:varchar(8);not null"`
	Spot         decimal.Decimal `gorm:"column:spot;type:decimal(20,8);not null"`
	Strike       decimal.Decimal `gorm:"column:strike;type:decimal(20,8);not null"`
	TimeToExpiry float64         `gorm:"column:time_to_expiry;not null"`
	Rate         float64         `gorm:"column:rate;not null"`
	Volatility   float64         `gorm:"column:volatility;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:decimal(20,8);not null"`
	Delta        decimal.Decimal `gorm:"column:delta;type:decimal(20,10);not null"`
	Gamma        decimal.Decimal `gorm:"column:gamma;type:decimal(20,10);not null"`
	Theta        decimal.Decimal `gorm:"column:theta;type:decimal(20,10);not null"`
	Vega         decimal.Decimal `gorm:"column:vega;type:decimal(20,10);not null"`
	Rho          decimal.Decimal `gorm:"column:rho;type:decimal(20,10);not null"`
	CalculatedAt int64           `gorm:"column:calculated_at;index;not null"`
}

// TableName 指定表名
func (EvaluationModel) TableName() string {
	return "analytics_evaluations"
}

func toModel(r *domain.EvaluationRecord) *EvaluationModel {
	if r == nil {
		return nil
	}
	return &EvaluationModel{
		ID:           r.ID,
		Symbol:       r.Symbol,
		OptionType:   string(r.OptionType),
		Spot:         r.Spot,
		Strike:       r.Strike,
		TimeToExpiry: r.TimeToExpiry,
		Rate:         r.Rate,
		Volatility:   r.Volatility,
		Price:        r.Price,
		Delta:        r.Delta,
		Gamma:        r.Gamma,
		Theta:        r.Theta,
		Vega:         r.Vega,
		Rho:          r.Rho,
		CalculatedAt: r.CalculatedAt,
	}
}

func toRecord(m *EvaluationModel) *domain.EvaluationRecord {
	if m == nil {
		return nil
	}
	return &domain.EvaluationRecord{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		Symbol:       m.Symbol,
		OptionType:   domain.OptionType(m.OptionType),
		Spot:         m.Spot,
		Strike:       m.Strike,
		TimeToExpiry: m.TimeToExpiry,
		Rate:         m.Rate,
		Volatility:   m.Volatility,
		Price:        m.Price,
		Delta:        m.Delta,
		Gamma:        m.Gamma,
		Theta:        m.Theta,
		Vega:         m.Vega,
		Rho:          m.Rho,
		CalculatedAt: m.CalculatedAt,
	}
}
