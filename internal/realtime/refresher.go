package realtime

import (
	"context"
	"sync/atomic"
	"time"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Generation uint64
	Value      T
	Err        error
}

// Refresher keeps one view fresh. It fetches once on start and once per
// burst of change events on the watched tables. Every fetch gets a new
// generation; starting a fetch cancels the one in flight, and a result
// whose generation is no longer the latest is dropped.
type Refresher[T any] struct {
	bus      Bus
	fetch    FetchFunc[T]
	tables   []string
	debounce time.Duration
	gen      atomic.Uint64
}

func NewRefresher[T any](bus Bus, fetch FetchFunc[T], debounce time.Duration, tables ...string) *Refresher[T] {
	return &Refresher[T]{bus: bus, fetch: fetch, tables: tables, debounce: debounce}
}

// Generation returns the generation of the most recently started fetch.
func (r *Refresher[T]) Generation() uint64 {
	return r.gen.Load()
}

// Run subscribes and starts the refresh loop. The returned channel closes
// when ctx is done or the bus goes away.
func (r *Refresher[T]) Run(ctx context.Context) (<-chan Result[T], error) {
	events, err := r.bus.Subscribe(ctx, r.tables...)
	if err != nil {
		return nil, err
	}

	out := make(chan Result[T], 1)
	go r.loop(ctx, events, out)
	return out, nil
}

func (r *Refresher[T]) loop(ctx context.Context, events <-chan Event, out chan<- Result[T]) {
	defer close(out)

	results := make(chan Result[T], 1)
	var cancelInflight context.CancelFunc
	defer func() {
		if cancelInflight != nil {
			cancelInflight()
		}
	}()

	trigger := func() {
		if cancelInflight != nil {
			cancelInflight()
		}
		gen := r.gen.Add(1)
		fctx, cancel := context.WithCancel(ctx)
		cancelInflight = cancel

		go func() {
			v, err := r.fetch(fctx)
			select {
			case results <- Result[T]{Generation: gen, Value: v, Err: err}:
			case <-ctx.Done():
			}
		}()
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	trigger()
	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-events:
			if !ok {
				return
			}
			if r.debounce <= 0 {
				trigger()
				continue
			}
			// the first event of a burst opens the window; later ones ride along
			if timer == nil {
				timer = time.NewTimer(r.debounce)
				timerC = timer.C
			}

		case <-timerC:
			timer, timerC = nil, nil
			trigger()

		case res := <-results:
			if res.Generation != r.gen.Load() {
				continue
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}
