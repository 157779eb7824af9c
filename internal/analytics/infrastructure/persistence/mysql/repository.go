package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
)

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository 创建并返回一个新的 evaluationRepository 实例。
func NewEvaluationRepository(db *gorm.DB) domain.EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Save 保存一条定价历史
func (r *evaluationRepository) Save(ctx context.Context, record *domain.EvaluationRecord) error {
	model := toModel(record)
	if model == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	return nil
}

// GetLatest 查询某合约最近一次定价结果
func (r *evaluationRepository) GetLatest(ctx context.Context, symbol string) (*domain.EvaluationRecord, error) {
	var model EvaluationModel
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRecord(&model), nil
}

// GetHistory 查询某合约最近 limit 条定价历史，按时间倒序
func (r *evaluationRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.EvaluationRecord, error) {
	var models []EvaluationModel
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]*domain.EvaluationRecord, 0, len(models))
	for i := range models {
		records = append(records, toRecord(&models[i]))
	}
	return records, nil
}
