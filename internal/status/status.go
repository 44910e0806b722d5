package status

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/metrics"
)

// Prober answers whether a URL is reachable. orion.Client satisfies it.
type Prober interface {
	Probe(ctx context.Context, target string) bool
}

// Component is the result of probing one component.
type Component struct {
	Name        string    `json:"name"`
	Endpoint    string    `json:"endpoint"`
	Description string    `json:"description,omitempty"`
	Healthy     bool      `json:"healthy"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// Checker probes a fixed list of components.
//
// Thread Safety: safe for concurrent use; Last returns a copy.
type Checker struct {
	prober     Prober
	components []config.ComponentConfig
	now        func() time.Time

	mu   sync.RWMutex
	last []Component
}

// NewChecker creates a checker for components.
func NewChecker(prober Prober, components []config.ComponentConfig) *Checker {
	return &Checker{
		prober:     prober,
		components: components,
		now:        time.Now,
	}
}

// Check probes every component concurrently and returns the results in
// configuration order.
func (c *Checker) Check(ctx context.Context) []Component {
	results := make([]Component, len(c.components))

	var wg sync.WaitGroup
	for i, comp := range c.components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			healthy := c.prober.Probe(ctx, comp.URL)
			results[i] = Component{
				Name:        comp.Name,
				Endpoint:    comp.URL,
				Description: comp.Description,
				Healthy:     healthy,
				CheckedAt:   c.now(),
			}
			metrics.ComponentUp.WithLabelValues(comp.Name).Set(gauge(healthy))
		}()
	}
	wg.Wait()

	c.mu.Lock()
	c.last = results
	c.mu.Unlock()

	out := make([]Component, len(results))
	copy(out, results)
	return out
}

// Last returns the results of the most recent Check, or nil before the first.
func (c *Checker) Last() []Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return nil
	}
	out := make([]Component, len(c.last))
	copy(out, c.last)
	return out
}

// Run checks immediately and then every interval until ctx is cancelled.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	c.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

func gauge(healthy bool) float64 {
	if healthy {
		return 1
	}
	return 0
}
