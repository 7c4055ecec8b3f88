package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// cacheVersion prefixes every key so a deploy with changed report shapes
// invalidates old entries by bumping the version.
const cacheVersion = "reports:v1"

const cacheTTL = 5 * time.Minute

// RepositoryPort abstracts the aggregation queries.
type RepositoryPort interface {
	MaterialCost(ctx context.Context, rng Range, materialID int64) ([]MaterialCostRow, error)
	SkillBonus(ctx context.Context, rng Range, employeeID int64) ([]SkillBonusRow, error)
	AnnualTurnover(ctx context.Context, year int) (float64, error)
	AnnualExpenses(ctx context.Context, year int) (float64, error)
	Reorder(ctx context.Context) ([]ReorderRow, error)
}

// Service serves cost aggregation reports. Results are cached in Redis and
// builds are deduplicated with singleflight so a cold key is computed once
// under concurrent load. A nil Redis client disables caching.
type Service struct {
	repo  RepositoryPort
	redis *redis.Client
	group singleflight.Group
}

// NewService builds Service.
func NewService(repo RepositoryPort, redisClient *redis.Client) *Service {
	return &Service{repo: repo, redis: redisClient}
}

// MaterialCost aggregates received purchase lines per material. An empty
// range result is an empty list, never an error.
func (s *Service) MaterialCost(ctx context.Context, rng Range, materialID int64) ([]MaterialCostRow, error) {
	if !rng.Valid() {
		return nil, fmt.Errorf("%w: invalid date range", ErrValidation)
	}
	key := fmt.Sprintf("%s:material-cost:%s:%s:%d", cacheVersion, rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"), materialID)
	return cached(ctx, s, key, func(ctx context.Context) ([]MaterialCostRow, error) {
		return s.repo.MaterialCost(ctx, rng, materialID)
	})
}

// SkillBonus aggregates priced production log entries per employee.
func (s *Service) SkillBonus(ctx context.Context, rng Range, employeeID int64) ([]SkillBonusRow, error) {
	if !rng.Valid() {
		return nil, fmt.Errorf("%w: invalid date range", ErrValidation)
	}
	key := fmt.Sprintf("%s:skill-bonus:%s:%s:%d", cacheVersion, rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"), employeeID)
	return cached(ctx, s, key, func(ctx context.Context) ([]SkillBonusRow, error) {
		return s.repo.SkillBonus(ctx, rng, employeeID)
	})
}

// Annual compares turnover against expenses for one calendar year. Both sums
// default to zero when nothing matches.
func (s *Service) Annual(ctx context.Context, year int) (AnnualSummary, error) {
	if year < 2000 || year > 2200 {
		return AnnualSummary{}, fmt.Errorf("%w: year out of range", ErrValidation)
	}
	key := fmt.Sprintf("%s:annual:%d", cacheVersion, year)
	return cached(ctx, s, key, func(ctx context.Context) (AnnualSummary, error) {
		turnover, err := s.repo.AnnualTurnover(ctx, year)
		if err != nil {
			return AnnualSummary{}, err
		}
		expenses, err := s.repo.AnnualExpenses(ctx, year)
		if err != nil {
			return AnnualSummary{}, err
		}
		return AnnualSummary{Year: year, Turnover: turnover, Expenses: expenses, Net: turnover - expenses}, nil
	})
}

// Reorder lists materials strictly below their reorder level. Never cached;
// it is the freshness-sensitive report.
func (s *Service) Reorder(ctx context.Context) ([]ReorderRow, error) {
	return s.repo.Reorder(ctx)
}

// cached wraps a report build with the redis get/set and singleflight
// deduplication.
func cached[T any](ctx context.Context, s *Service, key string, build func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
		}
	}

	// The build runs once for every waiter on the key, so it must not die
	// with the first caller's context.
	buildCtx := context.WithoutCancel(ctx)
	resultChan := s.group.DoChan(key, func() (any, error) {
		out, err := build(buildCtx)
		if err != nil {
			return nil, err
		}
		if s.redis != nil {
			if raw, err := json.Marshal(out); err == nil {
				s.redis.Set(buildCtx, key, raw, cacheTTL)
			}
		}
		return out, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
