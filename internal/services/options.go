package services

import (
	"time"

	"footprint/internal/log"
	"footprint/internal/observability"
)

type options struct {
	now         func() time.Time
	loc         *time.Location
	logger      *log.Logger
	metrics     *observability.Metrics
	invalidator Invalidator
}

// Option customises a service at construction.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the calendar used for periods and days.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithInvalidator registers what must be told about writes.
func WithInvalidator(i Invalidator) Option {
	return func(o *options) { o.invalidator = i }
}

func buildOptions(component string, opts []Option) options {
	o := options{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loc == nil {
		o.loc = time.Local
	}
	if o.logger == nil {
		o.logger = log.Discard()
	}
	o.logger = o.logger.WithComponent(component)
	return o
}
