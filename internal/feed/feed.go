package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/warehouse-core/internal/metrics"
)

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 5 * time.Second

// Logger defines the logging interface used by the feed package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Fetcher loads the full current set of records. Repository list methods
// such as warehouse.Repository.Sensors satisfy it directly.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Option configures a subscription or stream.
type Option func(*options)

type options struct {
	interval time.Duration
	logger   Logger
	name     string
}

// WithInterval sets the poll period. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithLogger sets the logger for poll failures.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName labels log lines and metrics, usually with the entity type.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func buildOptions(opts []Option) options {
	o := options{interval: DefaultInterval, logger: noopLogger{}, name: "feed"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// poller performs one fetch with logging and metrics.
type poller[T any] struct {
	fetch Fetcher[T]
	opts  options
}

// poll fetches once. A failure is logged and counted; it never yields a result.
func (p poller[T]) poll(ctx context.Context) ([]T, bool) {
	start := time.Now()
	records, err := p.fetch(ctx)
	metrics.FeedPollDuration.WithLabelValues(p.opts.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FeedPolls.WithLabelValues(p.opts.name, metrics.ResultError).Inc()
		p.opts.logger.Warn("feed poll failed, retrying next tick",
			"feed", p.opts.name,
			"error", err,
		)
		return nil, false
	}
	metrics.FeedPolls.WithLabelValues(p.opts.name, metrics.ResultOK).Inc()
	return records, true
}

// Subscribe delivers the current set to callback and then every change.
//
// The first fetch runs before Subscribe returns; when it succeeds, callback
// has already been invoked with its result. After that the set is refetched
// every interval and delivered only when it differs from the last delivered
// set under Equal. Polls for one subscription never overlap: the next one is
// scheduled after the current one completes. Failed polls leave the last
// delivered set untouched and are retried on the next tick without backoff.
//
// The returned function unsubscribes. It sets a cancellation flag: a poll
// already in flight completes but its result is discarded, and no further
// polls are scheduled. Cancelling ctx has the same effect. Each subscription
// owns its own state; subscriptions to the same type share nothing.
func Subscribe[T Keyed](ctx context.Context, fetch Fetcher[T], callback func([]T), opts ...Option) (unsubscribe func()) {
	p := poller[T]{fetch: fetch, opts: buildOptions(opts)}
	dedup := &Dedup[T]{}

	var cancelled atomic.Bool
	stop := make(chan struct{})
	var once sync.Once
	unsubscribe = func() {
		once.Do(func() {
			cancelled.Store(true)
			close(stop)
		})
	}

	deliver := func(records []T) {
		if cancelled.Load() || ctx.Err() != nil {
			return
		}
		if dedup.Offer(records) {
			metrics.FeedDeliveries.WithLabelValues(p.opts.name).Inc()
			callback(records)
		}
	}

	if records, ok := p.poll(ctx); ok {
		deliver(records)
	}

	go func() {
		timer := time.NewTimer(p.opts.interval)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-timer.C:
			}
			if cancelled.Load() {
				return
			}
			if records, ok := p.poll(ctx); ok {
				deliver(records)
			}
			timer.Reset(p.opts.interval)
		}
	}()

	return unsubscribe
}

// Stream polls fetch immediately and then every interval, sending each
// successful result. Failed polls send nothing. The channel is closed when
// ctx is cancelled. A slow consumer delays the next poll rather than
// causing overlapping fetches.
func Stream[T any](ctx context.Context, fetch Fetcher[T], opts ...Option) <-chan []T {
	p := poller[T]{fetch: fetch, opts: buildOptions(opts)}
	out := make(chan []T)

	go func() {
		defer close(out)
		timer := time.NewTimer(0)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if records, ok := p.poll(ctx); ok {
				if ctx.Err() != nil {
					return
				}
				select {
				case out <- records:
				case <-ctx.Done():
					return
				}
			}
			timer.Reset(p.opts.interval)
		}
	}()

	return out
}

// Distinct forwards only sets that differ from the last forwarded one.
// The first set is always forwarded. The output closes when in closes or
// ctx is cancelled; a set still pending when ctx is cancelled is dropped.
func Distinct[T Keyed](ctx context.Context, in <-chan []T) <-chan []T {
	out := make(chan []T)
	go func() {
		defer close(out)
		var dedup Dedup[T]
		for {
			var records []T
			select {
			case <-ctx.Done():
				return
			case next, ok := <-in:
				if !ok {
					return
				}
				records = next
			}
			if !dedup.Offer(records) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- records:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Watch is Distinct(Stream(...)): a change-only stream that closes when ctx
// is cancelled. Unlike Subscribe it hands every change to a single consumer
// loop, which suits readers that keep their own state across deliveries.
func Watch[T Keyed](ctx context.Context, fetch Fetcher[T], opts ...Option) <-chan []T {
	return Distinct(ctx, Stream(ctx, fetch, opts...))
}
