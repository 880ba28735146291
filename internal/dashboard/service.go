package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"irokart-be/internal/apperr"
	"irokart-be/internal/logger"
	"irokart-be/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

var ErrStatsUnavailable = apperr.New(apperr.Internal, "dashboard statistics unavailable")

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	RecentOrders(ctx context.Context) ([]*RecentOrder, error)
}

type service struct {
	repo        Repository
	loc         *time.Location
	concurrency int
	now         func() time.Time
}

func NewService(repo Repository, loc *time.Location, concurrency int) Service {
	if loc == nil {
		loc = time.UTC
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &service{repo: repo, loc: loc, concurrency: concurrency, now: time.Now}
}

// Bounds returns the start of the day and of the month containing now, in loc.
func Bounds(now time.Time, loc *time.Location) (dayStart, monthStart time.Time) {
	t := now.In(loc)
	dayStart = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	monthStart = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return dayStart, monthStart
}

type metric struct {
	name string
	run  func(ctx context.Context, st *Stats) error
}

func countInto(dst **int64, fn func(ctx context.Context) (int64, error)) func(context.Context, *Stats) error {
	return func(ctx context.Context, _ *Stats) error {
		n, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = &n
		return nil
	}
}

func sumInto(dst **decimal.Decimal, fn func(ctx context.Context) (decimal.Decimal, error)) func(context.Context, *Stats) error {
	return func(ctx context.Context, _ *Stats) error {
		d, err := fn(ctx)
		if err != nil {
			return err
		}
		d = d.Round(2)
		*dst = &d
		return nil
	}
}

// Stats runs every metric query concurrently. A failing query leaves its
// metric nil; the call only fails when no metric could be computed.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	timer := metrics.StartTimer()
	defer timer.ObserveInto(metrics.Default().Timing(metrics.DashboardStatsLatency))
	metrics.Default().Counter(metrics.DashboardStatsRuns).Inc()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Stats"),
	)

	now := s.now()
	dayStart, monthStart := Bounds(now, s.loc)
	st := &Stats{GeneratedAt: now.UTC()}

	all := []metric{
		{MetricTotalOrders, countInto(&st.TotalOrders, func(ctx context.Context) (int64, error) {
			return s.repo.CountOrders(ctx, time.Time{})
		})},
		{MetricOrdersToday, countInto(&st.OrdersToday, func(ctx context.Context) (int64, error) {
			return s.repo.CountOrders(ctx, dayStart)
		})},
		{MetricPendingOrders, countInto(&st.PendingOrders, func(ctx context.Context) (int64, error) {
			return s.repo.CountOrdersByStatus(ctx, "pending")
		})},
		{MetricTotalUsers, countInto(&st.TotalUsers, s.repo.CountProfiles)},
		{MetricTotalProducts, countInto(&st.TotalProducts, s.repo.CountActiveProducts)},
		{MetricLowStockProducts, countInto(&st.LowStockProducts, s.repo.CountLowStock)},
		{MetricTotalRevenue, sumInto(&st.TotalRevenue, func(ctx context.Context) (decimal.Decimal, error) {
			return s.repo.CapturedRevenue(ctx, time.Time{})
		})},
		{MetricRevenueThisMonth, sumInto(&st.RevenueThisMonth, func(ctx context.Context) (decimal.Decimal, error) {
			return s.repo.CapturedRevenue(ctx, monthStart)
		})},
	}

	var (
		mu     sync.Mutex
		failed []string
		g      errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, m := range all {
		g.Go(func() error {
			if err := m.run(ctx, st); err != nil {
				log.Warn("dashboard metric failed", zap.String("metric", m.name), zap.Error(err))
				mu.Lock()
				failed = append(failed, m.name)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		metrics.Default().Counter(metrics.DashboardMetricFailures).Add(uint64(len(failed)))
		sort.Strings(failed)
		st.FailedMetrics = failed
	}
	if len(failed) == len(all) {
		return nil, ErrStatsUnavailable
	}
	return st, nil
}

func (s *service) RecentOrders(ctx context.Context) ([]*RecentOrder, error) {
	return s.repo.RecentOrders(ctx, RecentOrdersLimit)
}
