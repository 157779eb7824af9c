package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
	"github.com/wyfcoding/optionanalytics/pkg/logger"
	"github.com/wyfcoding/optionanalytics/pkg/metrics"
)

// GreeksCache 定价结果缓存
type GreeksCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AnalyticsService 期权分析应用服务
// 仓储、事件发布与缓存均为可选依赖：传 nil 时服务退化为纯计算
type AnalyticsService struct {
	engine    *domain.Engine
	repo      domain.EvaluationRepository
	publisher domain.EventPublisher
	cache     GreeksCache
	cacheTTL  time.Duration
	metrics   *metrics.Metrics
}

// NewAnalyticsService 创建期权分析应用服务
func NewAnalyticsService(engine *domain.Engine, repo domain.EvaluationRepository, publisher domain.EventPublisher, m *metrics.Metrics) *AnalyticsService {
	return &AnalyticsService{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
	}
}

// WithCache 启用定价结果缓存
func (s *AnalyticsService) WithCache(cache GreeksCache, ttl time.Duration) *AnalyticsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// EvaluateGreeks 单腿定价：计算价格与全部希腊字母
// 相同参数的近期结果优先走缓存
func (s *AnalyticsService) EvaluateGreeks(ctx context.Context, cmd EvaluateGreeksCommand) (*GreeksDTO, error) {
	leg := toLeg(cmd)

	cacheKey := greeksCacheKey(cmd)
	if s.cache != nil {
		var cached GreeksDTO
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn(ctx, "Greeks cache lookup failed", "key", cacheKey, "error", err)
		} else if hit {
			s.countCacheHit()
			return &cached, nil
		}
	}

	start := time.Now()
	g, err := s.engine.Evaluate(leg)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}
	s.observeEvaluation(time.Since(start))

	if s.repo != nil {
		record := &domain.EvaluationRecord{
			Symbol:       cmd.Symbol,
			OptionType:   leg.Type,
			Spot:         decimal.NewFromFloat(leg.Spot),
			Strike:       decimal.NewFromFloat(leg.Strike),
			TimeToExpiry: leg.TimeToExpiry,
			Rate:         leg.Rate,
			Volatility:   leg.Volatility,
			Price:        decimal.NewFromFloat(g.Price),
			Delta:        decimal.NewFromFloat(g.Delta),
			Gamma:        decimal.NewFromFloat(g.Gamma),
			Theta:        decimal.NewFromFloat(g.Theta),
			Vega:         decimal.NewFromFloat(g.Vega),
			Rho:          decimal.NewFromFloat(g.Rho),
			CalculatedAt: time.Now().Unix(),
		}
		if err := s.repo.Save(ctx, record); err != nil {
			// 历史记录失败不影响定价结果返回
			logger.Warn(ctx, "Failed to save evaluation record", "symbol", cmd.Symbol, "error", err)
		}
	}

	if s.publisher != nil {
		event := domain.GreeksCalculatedEvent{
			Symbol:       cmd.Symbol,
			OptionType:   leg.Type,
			Spot:         leg.Spot,
			Strike:       leg.Strike,
			TimeToExpiry: leg.TimeToExpiry,
			Rate:         leg.Rate,
			Volatility:   leg.Volatility,
			Price:        g.Price,
			Delta:        g.Delta,
			Gamma:        g.Gamma,
			Theta:        g.Theta,
			Vega:         g.Vega,
			Rho:          g.Rho,
			CalculatedAt: time.Now().Unix(),
			OccurredOn:   time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.GreeksCalculatedEventType, cmd.Symbol, event); err != nil {
			logger.Warn(ctx, "Failed to publish GreeksCalculated event", "symbol", cmd.Symbol, "error", err)
		}
	}

	dto := toGreeksDTO(cmd.Symbol, g)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, dto, s.cacheTTL); err != nil {
			logger.Warn(ctx, "Failed to cache greeks result", "key", cacheKey, "error", err)
		}
	}

	return &dto, nil
}

// GenerateSweep 沿单一维度扫描，区间缺省时按维度取默认区间
func (s *AnalyticsService) GenerateSweep(ctx context.Context, cmd GenerateSweepCommand) ([]SweepPointDTO, error) {
	leg := toLeg(cmd.EvaluateGreeksCommand)

	dim, err := domain.ParseDimension(cmd.Dimension)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}

	rng, err := s.resolveRange1D(dim, leg, cmd.Range)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}

	samples, err := domain.Sweep1D(s.engine, leg, dim, rng)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}
	s.countSweepPoints(len(samples))

	out := make([]SweepPointDTO, 0, len(samples))
	for _, sample := range samples {
		out = append(out, SweepPointDTO{
			ParameterValue: sample.ParameterValue,
			Greeks:         toGreeksDTO("", sample.Greeks),
		})
	}

	s.publishEvent(ctx, domain.SweepCompletedEventType, cmd.Symbol, domain.SweepCompletedEvent{
		Symbol:      cmd.Symbol,
		Dimension:   dim,
		Min:         rng.Min,
		Max:         rng.Max,
		SampleCount: len(samples),
		OccurredOn:  time.Now(),
	})

	return out, nil
}

// GenerateSurface 沿两个维度扫描，产出价格曲面网格
func (s *AnalyticsService) GenerateSurface(ctx context.Context, cmd GenerateSurfaceCommand) ([]SurfacePointDTO, error) {
	leg := toLeg(cmd.EvaluateGreeksCommand)

	xDim, err := domain.ParseDimension(cmd.XDimension)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}
	yDim, err := domain.ParseDimension(cmd.YDimension)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}

	xRng, err := s.resolveRange2D(xDim, leg, cmd.XRange)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}
	yRng, err := s.resolveRange2D(yDim, leg, cmd.YRange)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}

	points, err := domain.Sweep2D(s.engine, leg, xDim, xRng, yDim, yRng)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}
	s.countSurfacePoints(len(points))

	out := make([]SurfacePointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, SurfacePointDTO{X: p.X, Y: p.Y, Z: p.Z})
	}

	s.publishEvent(ctx, domain.SurfaceCompletedEventType, cmd.Symbol, domain.SurfaceCompletedEvent{
		Symbol:     cmd.Symbol,
		XDimension: xDim,
		YDimension: yDim,
		PointCount: len(points),
		OccurredOn: time.Now(),
	})

	return out, nil
}

// AggregatePortfolio 组合扫描：逐腿定价并按 sign*quantity 加权汇总
func (s *AnalyticsService) AggregatePortfolio(ctx context.Context, cmd AggregatePortfolioCommand) ([]AggregatedPointDTO, error) {
	dim, err := domain.ParseDimension(cmd.Dimension)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}

	legs := make([]domain.PortfolioLeg, 0, len(cmd.Legs))
	for _, lc := range cmd.Legs {
		legs = append(legs, domain.PortfolioLeg{
			OptionLeg: domain.OptionLeg{
				Type:         domain.OptionType(lc.OptionType),
				Spot:         lc.Spot,
				Strike:       lc.Strike,
				TimeToExpiry: lc.TimeToExpiry,
				Rate:         lc.Rate,
				Volatility:   lc.Volatility,
			},
			Side:     domain.PositionSide(lc.Side),
			Quantity: lc.Quantity,
		})
	}

	var rng domain.SweepRange
	if cmd.Range != nil {
		rng = domain.SweepRange{Min: cmd.Range.Min, Max: cmd.Range.Max, StepCount: cmd.Range.StepCount}
	} else {
		rng, err = domain.DefaultAggregateRange(dim, legs)
		if err != nil {
			s.countValidationFailure()
			return nil, err
		}
	}

	points, err := domain.Aggregate(s.engine, legs, dim, rng)
	if err != nil {
		s.countValidationFailure()
		return nil, err
	}
	s.countAggregation()

	out := make([]AggregatedPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, AggregatedPointDTO{
			ParameterValue: p.ParameterValue,
			Delta:          p.Delta,
			Gamma:          p.Gamma,
			Theta:          p.Theta,
			Vega:           p.Vega,
			Rho:            p.Rho,
			Value:          p.Value,
		})
	}

	s.publishEvent(ctx, domain.PortfolioAggregatedEventType, "", domain.PortfolioAggregatedEvent{
		Dimension:  dim,
		LegCount:   len(legs),
		PointCount: len(points),
		OccurredOn: time.Now(),
	})

	return out, nil
}

// GetHistory 查询某合约的定价历史
func (s *AnalyticsService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.EvaluationRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetHistory(ctx, symbol, limit)
}

func greeksCacheKey(cmd EvaluateGreeksCommand) string {
	return fmt.Sprintf("greeks:%s:%s:%g:%g:%g:%g:%g",
		cmd.Symbol, cmd.OptionType, cmd.Spot, cmd.Strike, cmd.TimeToExpiry, cmd.Rate, cmd.Volatility)
}

func toLeg(cmd EvaluateGreeksCommand) domain.OptionLeg {
	return domain.OptionLeg{
		Type:         domain.OptionType(cmd.OptionType),
		Spot:         cmd.Spot,
		Strike:       cmd.Strike,
		TimeToExpiry: cmd.TimeToExpiry,
		Rate:         cmd.Rate,
		Volatility:   cmd.Volatility,
	}
}

func (s *AnalyticsService) resolveRange1D(dim domain.Dimension, leg domain.OptionLeg, r *RangeDTO) (domain.SweepRange, error) {
	if r != nil {
		return domain.SweepRange{Min: r.Min, Max: r.Max, StepCount: r.StepCount}, nil
	}
	return domain.DefaultRange1D(dim, leg)
}

func (s *AnalyticsService) resolveRange2D(dim domain.Dimension, leg domain.OptionLeg, r *RangeDTO) (domain.SweepRange, error) {
	if r != nil {
		return domain.SweepRange{Min: r.Min, Max: r.Max, StepCount: r.StepCount}, nil
	}
	return domain.DefaultRange2D(dim, leg)
}

func (s *AnalyticsService) publishEvent(ctx context.Context, eventType, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish event", "event_type", eventType, "error", err)
	}
}

func (s *AnalyticsService) observeEvaluation(d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.EvaluationsTotal.Inc()
	s.metrics.EvaluationDuration.Observe(d.Seconds())
}

func (s *AnalyticsService) countSweepPoints(n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SweepPointsTotal.Add(float64(n))
}

func (s *AnalyticsService) countSurfacePoints(n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SurfacePointsTotal.Add(float64(n))
}

func (s *AnalyticsService) countAggregation() {
	if s.metrics == nil {
		return
	}
	s.metrics.AggregationsTotal.Inc()
}

func (s *AnalyticsService) countCacheHit() {
	if s.metrics == nil {
		return
	}
	s.metrics.CacheHitsTotal.Inc()
}

func (s *AnalyticsService) countValidationFailure() {
	if s.metrics == nil {
		return
	}
	s.metrics.ValidationFailuresTotal.Inc()
}
