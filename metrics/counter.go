package metrics

import "sync/atomic"

// Counter holds a monotonically increasing int64 value, in the style of
// go-ethereum's metrics.Counter but trimmed to what the node actually needs:
// no export path, just process-local bookkeeping for the values §4.7/§4.9
// name explicitly (active_count, delivery_failures, requests_completed,
// requests_timed_out).
type Counter struct {
	n int64
}

// NewCounter returns a new, zeroed Counter.
func NewCounter() *Counter { return &Counter{} }

// Inc adds delta to the counter.
func (c *Counter) Inc(delta int64) { atomic.AddInt64(&c.n, delta) }

// Dec subtracts delta from the counter.
func (c *Counter) Dec(delta int64) { atomic.AddInt64(&c.n, -delta) }

// Count returns the current value.
func (c *Counter) Count() int64 { return atomic.LoadInt64(&c.n) }

// Clear resets the counter to zero.
func (c *Counter) Clear() { atomic.StoreInt64(&c.n, 0) }

// Gauge holds a value that can move up or down, used for active_count and
// similar point-in-time readings.
type Gauge struct {
	n int64
}

// NewGauge returns a new, zeroed Gauge.
func NewGauge() *Gauge { return &Gauge{} }

// Update sets the gauge to v.
func (g *Gauge) Update(v int64) { atomic.StoreInt64(&g.n, v) }

// Inc adds delta to the gauge.
func (g *Gauge) Inc(delta int64) { atomic.AddInt64(&g.n, delta) }

// Dec subtracts delta from the gauge.
func (g *Gauge) Dec(delta int64) { atomic.AddInt64(&g.n, -delta) }

// Value returns the current reading.
func (g *Gauge) Value() int64 { return atomic.LoadInt64(&g.n) }
