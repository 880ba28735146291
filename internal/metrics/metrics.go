package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Timing accumulates call count and total duration of an operation.
type Timing struct {
	count   uint64
	totalNs int64
	maxNs   int64
}

func (t *Timing) Observe(d time.Duration) {
	atomic.AddUint64(&t.count, 1)
	atomic.AddInt64(&t.totalNs, int64(d))
	for {
		cur := atomic.LoadInt64(&t.maxNs)
		if int64(d) <= cur || atomic.CompareAndSwapInt64(&t.maxNs, cur, int64(d)) {
			return
		}
	}
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveInto records the elapsed time into tm.
func (t *Timer) ObserveInto(tm *Timing) {
	tm.Observe(t.Duration())
}

type TimingSnapshot struct {
	Count   uint64  `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
}

type Snapshot struct {
	Counters map[string]uint64         `json:"counters"`
	Timings  map[string]TimingSnapshot `json:"timings"`
}

// Registry hands out named counters and timings. Lookups create on first use.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	timings  map[string]*Timing
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
		timings:  make(map[string]*Timing),
	}
}

func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.counters[name]; !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

func (r *Registry) Timing(name string) *Timing {
	r.mu.RLock()
	tm, ok := r.timings[name]
	r.mu.RUnlock()
	if ok {
		return tm
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tm, ok = r.timings[name]; !ok {
		tm = &Timing{}
		r.timings[name] = tm
	}
	return tm
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Counters: make(map[string]uint64, len(r.counters)),
		Timings:  make(map[string]TimingSnapshot, len(r.timings)),
	}
	for name, c := range r.counters {
		snap.Counters[name] = c.Load()
	}
	for name, tm := range r.timings {
		count := atomic.LoadUint64(&tm.count)
		total := float64(atomic.LoadInt64(&tm.totalNs)) / float64(time.Millisecond)
		ts := TimingSnapshot{
			Count:   count,
			TotalMs: total,
			MaxMs:   float64(atomic.LoadInt64(&tm.maxNs)) / float64(time.Millisecond),
		}
		if count > 0 {
			ts.AvgMs = total / float64(count)
		}
		snap.Timings[name] = ts
	}
	return snap
}

// Names lists registered counter names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.counters))
	for name := range r.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default is the process-wide registry exposed at /api/metrics.
func Default() *Registry {
	return defaultRegistry
}

const (
	OrdersPlaced             = "orders_placed"
	OrdersFailed             = "orders_failed"
	OrderStatusUpdates       = "order_status_updates"
	OrderTransitionsRejected = "order_transitions_rejected"
	PaymentsVerified         = "payments_verified"
	PaymentSignatureFailures = "payment_signature_failures"
	GatewayOrdersCreated     = "gateway_orders_created"
	WebhooksReceived         = "webhooks_received"
	WebhooksDuplicate        = "webhooks_duplicate"
	WebhooksStale            = "webhooks_stale"
	DashboardStatsRuns       = "dashboard_stats_runs"
	DashboardMetricFailures  = "dashboard_metric_failures"
	RealtimeEventsPublished  = "realtime_events_published"
	RealtimeEventsDropped    = "realtime_events_dropped"

	OrderPlaceLatency     = "order_place"
	DashboardStatsLatency = "dashboard_stats"
)
