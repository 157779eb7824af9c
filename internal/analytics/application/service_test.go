package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
)

// memoryRepository 内存仓储，供应用服务测试使用
type memoryRepository struct {
	mu      sync.Mutex
	records []*domain.EvaluationRecord
	saveErr error
}

func (r *memoryRepository) Save(_ context.Context, record *domain.EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRepository) GetLatest(_ context.Context, symbol string) (*domain.EvaluationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Symbol == symbol {
			return r.records[i], nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) GetHistory(_ context.Context, symbol string, limit int) ([]*domain.EvaluationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.EvaluationRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].Symbol == symbol {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

// recordingPublisher 记录已发布事件类型的发布器
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// memoryCache map 结构的 GreeksCache 实现
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = string(data)
	return nil
}

func newTestService(repo domain.EvaluationRepository, publisher domain.EventPublisher) *AnalyticsService {
	return NewAnalyticsService(domain.NewEngine(), repo, publisher, nil)
}

func callCommand() EvaluateGreeksCommand {
	return EvaluateGreeksCommand{
		Symbol:       "AAPL-C-100",
		OptionType:   "CALL",
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
	}
}

func TestEvaluateGreeks(t *testing.T) {
	repo := &memoryRepository{}
	publisher := &recordingPublisher{}
	svc := newTestService(repo, publisher)

	dto, err := svc.EvaluateGreeks(context.Background(), callCommand())
	require.NoError(t, err)
	require.NotNil(t, dto)

	assert.Equal(t, "AAPL-C-100", dto.Symbol)
	assert.InDelta(t, 10.4506, dto.Price.InexactFloat64(), 1e-3)
	assert.InDelta(t, 0.6368, dto.Delta.InexactFloat64(), 1e-3)

	// 成功定价后应落一条历史记录并发布事件
	require.Len(t, repo.records, 1)
	assert.Equal(t, "AAPL-C-100", repo.records[0].Symbol)
	assert.Equal(t, []string{domain.GreeksCalculatedEventType}, publisher.published())
}

func TestEvaluateGreeksRejectsInvalidLeg(t *testing.T) {
	repo := &memoryRepository{}
	svc := newTestService(repo, nil)

	cmd := callCommand()
	cmd.Volatility = -0.2

	dto, err := svc.EvaluateGreeks(context.Background(), cmd)
	require.ErrorIs(t, err, domain.ErrInvalidLeg)
	assert.Nil(t, dto)
	assert.Empty(t, repo.records)
}

func TestEvaluateGreeksSurvivesRepositoryFailure(t *testing.T) {
	repo := &memoryRepository{saveErr: errors.New("connection refused")}
	svc := newTestService(repo, nil)

	dto, err := svc.EvaluateGreeks(context.Background(), callCommand())
	require.NoError(t, err)
	require.NotNil(t, dto)
}

func TestEvaluateGreeksWithoutOptionalDependencies(t *testing.T) {
	svc := newTestService(nil, nil)

	dto, err := svc.EvaluateGreeks(context.Background(), callCommand())
	require.NoError(t, err)
	require.NotNil(t, dto)
}

func TestEvaluateGreeksServesRepeatFromCache(t *testing.T) {
	repo := &memoryRepository{}
	svc := newTestService(repo, nil).WithCache(newMemoryCache(), time.Minute)

	first, err := svc.EvaluateGreeks(context.Background(), callCommand())
	require.NoError(t, err)

	second, err := svc.EvaluateGreeks(context.Background(), callCommand())
	require.NoError(t, err)

	assert.True(t, first.Price.Equal(second.Price))
	assert.True(t, first.Delta.Equal(second.Delta))
	// 命中缓存的调用不再落库
	assert.Len(t, repo.records, 1)
}

func TestGenerateSweepDefaultRange(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(nil, publisher)

	points, err := svc.GenerateSweep(context.Background(), GenerateSweepCommand{
		EvaluateGreeksCommand: callCommand(),
		Dimension:             "price",
	})
	require.NoError(t, err)
	require.Len(t, points, 101)

	// price 维默认区间为 [0.5K, 1.5K]
	assert.InDelta(t, 50, points[0].ParameterValue, 1e-12)
	assert.InDelta(t, 150, points[100].ParameterValue, 1e-12)
	assert.Equal(t, []string{domain.SweepCompletedEventType}, publisher.published())
}

func TestGenerateSweepExplicitRange(t *testing.T) {
	svc := newTestService(nil, nil)

	points, err := svc.GenerateSweep(context.Background(), GenerateSweepCommand{
		EvaluateGreeksCommand: callCommand(),
		Dimension:             "volatility",
		Range:                 &RangeDTO{Min: 0.1, Max: 0.5, StepCount: 4},
	})
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.InDelta(t, 0.1, points[0].ParameterValue, 1e-12)
	assert.InDelta(t, 0.5, points[4].ParameterValue, 1e-12)
}

func TestGenerateSweepUnknownDimension(t *testing.T) {
	svc := newTestService(nil, nil)

	points, err := svc.GenerateSweep(context.Background(), GenerateSweepCommand{
		EvaluateGreeksCommand: callCommand(),
		Dimension:             "dividend",
	})
	require.ErrorIs(t, err, domain.ErrUnknownDimension)
	assert.Nil(t, points)
}

func TestGenerateSurfaceDefaultGrid(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(nil, publisher)

	points, err := svc.GenerateSurface(context.Background(), GenerateSurfaceCommand{
		EvaluateGreeksCommand: callCommand(),
		XDimension:            "price",
		YDimension:            "volatility",
	})
	require.NoError(t, err)
	// 默认二维网格为 31x31
	require.Len(t, points, 961)
	assert.Equal(t, []string{domain.SurfaceCompletedEventType}, publisher.published())
}

func TestGenerateSurfaceExplicitGrid(t *testing.T) {
	svc := newTestService(nil, nil)

	points, err := svc.GenerateSurface(context.Background(), GenerateSurfaceCommand{
		EvaluateGreeksCommand: callCommand(),
		XDimension:            "price",
		YDimension:            "time",
		XRange:                &RangeDTO{Min: 90, Max: 110, StepCount: 4},
		YRange:                &RangeDTO{Min: 0.25, Max: 1, StepCount: 3},
	})
	require.NoError(t, err)
	require.Len(t, points, 20)
	assert.InDelta(t, 90, points[0].X, 1e-12)
	assert.InDelta(t, 0.25, points[0].Y, 1e-12)
}

func TestAggregatePortfolio(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(nil, publisher)

	leg := PortfolioLegCommand{
		OptionType:   "CALL",
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
	}
	long := leg
	long.Side = "LONG"
	long.Quantity = 1
	short := leg
	short.Side = "SHORT"
	short.Quantity = 1

	points, err := svc.AggregatePortfolio(context.Background(), AggregatePortfolioCommand{
		Legs:      []PortfolioLegCommand{long, short},
		Dimension: "price",
		Range:     &RangeDTO{Min: 80, Max: 120, StepCount: 10},
	})
	require.NoError(t, err)
	require.Len(t, points, 11)

	// 一多一空同参数完全对冲
	for _, p := range points {
		assert.InDelta(t, 0, p.Delta, 1e-12)
		assert.InDelta(t, 0, p.Value, 1e-12)
	}
	assert.Equal(t, []string{domain.PortfolioAggregatedEventType}, publisher.published())
}

func TestAggregatePortfolioDefaultRange(t *testing.T) {
	svc := newTestService(nil, nil)

	points, err := svc.AggregatePortfolio(context.Background(), AggregatePortfolioCommand{
		Legs: []PortfolioLegCommand{{
			OptionType:   "PUT",
			Side:         "LONG",
			Quantity:     2,
			Spot:         100,
			Strike:       100,
			TimeToExpiry: 0.5,
			Rate:         0.05,
			Volatility:   0.3,
		}},
		Dimension: "price",
	})
	require.NoError(t, err)
	// 默认 price 区间锚定首腿现价 [0.5S, 1.5S]
	require.Len(t, points, 101)
	assert.InDelta(t, 50, points[0].ParameterValue, 1e-12)
	assert.InDelta(t, 150, points[100].ParameterValue, 1e-12)
}

func TestAggregatePortfolioEmptyLegs(t *testing.T) {
	svc := newTestService(nil, nil)

	points, err := svc.AggregatePortfolio(context.Background(), AggregatePortfolioCommand{
		Legs:      nil,
		Dimension: "price",
	})
	require.ErrorIs(t, err, domain.ErrEmptyPortfolio)
	assert.Nil(t, points)
}

func TestGetHistory(t *testing.T) {
	repo := &memoryRepository{}
	svc := newTestService(repo, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.EvaluateGreeks(context.Background(), callCommand())
		require.NoError(t, err)
	}

	records, err := svc.GetHistory(context.Background(), "AAPL-C-100", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// 没有仓储时历史查询退化为空结果
	bare := newTestService(nil, nil)
	records, err = bare.GetHistory(context.Background(), "AAPL-C-100", 10)
	require.NoError(t, err)
	assert.Nil(t, records)
}
