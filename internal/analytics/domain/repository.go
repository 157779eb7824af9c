package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EvaluationRecord 定价结果历史记录实体
type EvaluationRecord struct {
	ID           uint            `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Symbol       string          `json:"symbol"`
	OptionType   OptionType      `json:"option_type"`
	Spot         decimal.Decimal `json:"spot"`
	Strike       decimal.Decimal `json:"strike"`
	TimeToExpiry float64         `json:"time_to_expiry"`
	Rate         float64         `json:"rate"`
	Volatility   float64         `json:"volatility"`
	Price        decimal.Decimal `json:"price"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Theta        decimal.Decimal `json:"theta"`
	Vega         decimal.Decimal `json:"vega"`
	Rho          decimal.Decimal `json:"rho"`
	CalculatedAt int64           `json:"calculated_at"`
}

// EvaluationRepository 定价历史仓储接口
type EvaluationRepository interface {
	Save(ctx context.Context, record *EvaluationRecord) error
	GetLatest(ctx context.Context, symbol string) (*EvaluationRecord, error)
	GetHistory(ctx context.Context, symbol string, limit int) ([]*EvaluationRecord, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, event any) error
}
