// Package notify implements operator notification dispatching to multiple
// sinks.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/regpulse-io/regpulse/internal/metrics"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// Sink is a notice destination.
type Sink interface {
	Send(ctx context.Context, notice types.Notice) error
	Name() string
}

// Dispatcher routes notices to configured sinks. Delivery is best-effort:
// sink failures are logged and never propagated to the caller.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher from notice configs.
func NewDispatcher(configs []types.NoticeConfig, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{logger: logger}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// Dispatch sends a notice to all configured sinks.
func (d *Dispatcher) Dispatch(ctx context.Context, notice types.Notice) {
	if notice.Timestamp.IsZero() {
		notice.Timestamp = time.Now()
	}
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, notice); err != nil {
			metrics.NoticesFailed.Add(1)
			d.logger.Error("notify: send failed", "sink", sink.Name(), "operation", notice.Operation, "error", err)
			continue
		}
		metrics.NoticesDispatched.Add(1)
	}
}

// Close releases any sinks holding resources, such as open file handles.
func (d *Dispatcher) Close() error {
	var firstErr error
	for _, sink := range d.sinks {
		c, ok := sink.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newSink(cfg types.NoticeConfig) (Sink, error) {
	switch cfg.Type {
	case types.NoticeConsole:
		return NewConsoleSink(), nil
	case types.NoticeWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case types.NoticeFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path required")
		}
		return NewFileSink(cfg.Path)
	case types.NoticeSNS:
		if cfg.TopicARN == "" {
			return nil, fmt.Errorf("SNS topic ARN required")
		}
		return NewSNSSink(cfg.TopicARN)
	default:
		return nil, fmt.Errorf("unknown notice type %q", cfg.Type)
	}
}
