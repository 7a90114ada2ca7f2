// Package telemetry ships scorer events and counters to a statsd collector.
// Registration is best effort: a collector that cannot be reached yields a
// no-op client and a warning, never a startup failure.
package telemetry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/okian/housescore/pkg/logger"
)

// sink is the subset of the statsd client the collector uses.
type sink interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
	Event(e *statsd.Event) error
	Close() error
}

// Option configures Register.
type Option func(*options)

type options struct {
	namespace string
	tags      []string
	logger    logger.Logger
	sink      sink
}

// WithNamespace prefixes every metric name, e.g. "housescore.".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithDimensions adds global key:value tags to everything sent.
func WithDimensions(dims map[string]string) Option {
	return func(o *options) {
		o.tags = append(o.tags, dimensionTags(dims)...)
	}
}

// WithLogger sets the logger used for registration and send failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSink replaces the statsd client; addr is then ignored.
func WithSink(s sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// Client sends telemetry. The zero value and the result of Nop drop everything.
type Client struct {
	sd     sink
	tags   []string
	logger logger.Logger
}

// Nop returns a client that drops everything.
func Nop() *Client { return &Client{} }

// Register connects to the statsd collector at addr. An empty addr disables
// telemetry. A failed connection is logged as a warning and a no-op client
// is returned.
func Register(ctx context.Context, addr string, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{tags: o.tags, logger: o.logger}
	if o.sink != nil {
		c.sd = o.sink
		return c
	}
	if addr == "" {
		c.info(ctx, "telemetry disabled; no collector address configured")
		return c
	}

	sdOpts := []statsd.Option{statsd.WithTags(o.tags), statsd.WithoutTelemetry()}
	if o.namespace != "" {
		sdOpts = append(sdOpts, statsd.WithNamespace(o.namespace))
	}
	client, err := statsd.New(addr, sdOpts...)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn(ctx, "telemetry registration failed; continuing without telemetry",
				logger.String("telemetry_addr", addr), logger.Error(err))
		}
		return c
	}
	// Global tags are applied by the statsd client itself.
	c.sd = client
	c.tags = nil
	c.info(ctx, "telemetry registered", logger.String("telemetry_addr", addr))
	return c
}

// Enabled reports whether a collector is attached.
func (c *Client) Enabled() bool { return c != nil && c.sd != nil }

// With returns a client that adds dims to every send.
func (c *Client) With(dims map[string]string) *Client {
	if c == nil {
		return Nop()
	}
	tags := make([]string, 0, len(c.tags)+len(dims))
	tags = append(tags, c.tags...)
	tags = append(tags, dimensionTags(dims)...)
	return &Client{sd: c.sd, tags: tags, logger: c.logger}
}

// Event records an informational event.
func (c *Client) Event(ctx context.Context, title, text string, tags ...string) {
	if !c.Enabled() {
		return
	}
	ev := statsd.NewEvent(title, text)
	ev.AlertType = statsd.Info
	ev.Tags = c.merge(tags)
	c.check(ctx, "event", c.sd.Event(ev))
}

// Count adds value to the named counter.
func (c *Client) Count(ctx context.Context, name string, value int64, tags ...string) {
	if !c.Enabled() {
		return
	}
	c.check(ctx, "count", c.sd.Count(name, value, c.merge(tags), 1))
}

// Gauge sets the named gauge.
func (c *Client) Gauge(ctx context.Context, name string, value float64, tags ...string) {
	if !c.Enabled() {
		return
	}
	c.check(ctx, "gauge", c.sd.Gauge(name, value, c.merge(tags), 1))
}

// Timing records a duration.
func (c *Client) Timing(ctx context.Context, name string, d time.Duration, tags ...string) {
	if !c.Enabled() {
		return
	}
	c.check(ctx, "timing", c.sd.Timing(name, d, c.merge(tags), 1))
}

// Close flushes and releases the collector connection.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.sd.Close()
}

func (c *Client) merge(tags []string) []string {
	if len(tags) == 0 {
		return c.tags
	}
	out := make([]string, 0, len(c.tags)+len(tags))
	out = append(out, c.tags...)
	return append(out, tags...)
}

func (c *Client) check(ctx context.Context, op string, err error) {
	if err != nil && c.logger != nil {
		c.logger.Debug(ctx, "telemetry send failed", logger.String("op", op), logger.Error(err))
	}
}

func (c *Client) info(ctx context.Context, msg string, fields ...logger.Field) {
	if c.logger != nil {
		c.logger.Info(ctx, msg, fields...)
	}
}

// Tag formats a statsd key:value tag.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

func dimensionTags(dims map[string]string) []string {
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tags := make([]string, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, Tag(k, dims[k]))
	}
	return tags
}
