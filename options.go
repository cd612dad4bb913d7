package stuffer

import (
	"log/slog"
)

// Metrics receives transfer and mapping events. Implementations must be safe
// for concurrent use if they are shared between buffers.
// See package github.com/dshulyak/stuffer/metrics for the prometheus backed one.
type Metrics interface {
	// ObserveTransfer is called after every completed read(2) or write(2).
	// op is "recv" or "send", requested is the length passed to the system call
	// after clamping.
	ObserveTransfer(op string, requested, transferred uint32)
	// ObserveRetry is called when a system call was interrupted and retried.
	ObserveRetry(op string)
	// ObserveMapping is called with mapped=true when a file was mapped and with
	// mapped=false when the mapping was released.
	ObserveMapping(bytes int64, mapped bool)
}

// Option ...
type Option func(c *config)

type config struct {
	growable bool
	logger   *slog.Logger
	metrics  Metrics
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithGrowable allows heap storage to grow when a write doesn't fit.
// Ignored by mapped buffers.
func WithGrowable() Option {
	return func(c *config) {
		c.growable = true
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics ...
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
