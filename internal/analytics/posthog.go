package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const DefaultPostHogHost = "https://app.posthog.com"

// PostHogConfig configures the PostHog sender
type PostHogConfig struct {
	APIKey        string
	Host          string
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Timeout       time.Duration
	HTTPClient    *http.Client
}

func (c *PostHogConfig) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultPostHogHost
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 2 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// PostHog ships events to the PostHog batch API from a background worker.
// Events are dropped when the queue is full or the breaker is open.
type PostHog struct {
	cfg     PostHogConfig
	queue   chan Event
	done    chan struct{}
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup

	sent    atomic.Int64
	dropped atomic.Int64
}

// New returns a PostHog tracker, or Nop when no API key is configured
func New(cfg PostHogConfig, logger *zap.Logger) Tracker {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Info("analytics disabled: no PostHog API key")
		return Nop{}
	}
	return NewPostHog(cfg, logger)
}

// NewPostHog creates the sender and starts its worker
func NewPostHog(cfg PostHogConfig, logger *zap.Logger) *PostHog {
	cfg.applyDefaults()
	p := &PostHog{
		cfg:    cfg,
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger.Named("posthog"),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "posthog",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Capture enqueues an event without blocking
func (p *PostHog) Capture(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	select {
	case <-p.done:
		p.dropped.Add(1)
		return
	default:
	}
	select {
	case p.queue <- e:
	default:
		p.dropped.Add(1)
		p.logger.Debug("analytics queue full, dropping event", zap.String("event", e.Name))
	}
}

// Close flushes queued events and stops the worker
func (p *PostHog) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
	return nil
}

// Sent reports how many events reached PostHog
func (p *PostHog) Sent() int64 { return p.sent.Load() }

// Dropped reports how many events were discarded
func (p *PostHog) Dropped() int64 { return p.dropped.Load() }

func (p *PostHog) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, p.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		p.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-p.queue:
			batch = append(batch, e)
			if len(batch) >= p.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-p.done:
			for {
				select {
				case e := <-p.queue:
					batch = append(batch, e)
					if len(batch) >= p.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

type batchRequest struct {
	APIKey string         `json:"api_key"`
	Batch  []batchedEvent `json:"batch"`
}

type batchedEvent struct {
	Event      string    `json:"event"`
	Properties Props     `json:"properties"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p *PostHog) flush(batch []Event) {
	defer func() {
		if r := recover(); r != nil {
			p.dropped.Add(int64(len(batch)))
			p.logger.Error("analytics flush panicked", zap.Any("panic", r))
		}
	}()

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.send(batch)
	})
	if err != nil {
		p.dropped.Add(int64(len(batch)))
		p.logger.Warn("analytics batch not delivered", zap.Int("events", len(batch)), zap.Error(err))
		return
	}
	p.sent.Add(int64(len(batch)))
}

func (p *PostHog) send(batch []Event) error {
	req := batchRequest{APIKey: p.cfg.APIKey, Batch: make([]batchedEvent, len(batch))}
	for i, e := range batch {
		props := make(Props, len(e.Properties)+1)
		for k, v := range e.Properties {
			props[k] = v
		}
		props["distinct_id"] = e.DistinctID
		req.Batch[i] = batchedEvent{Event: e.Name, Properties: props, Timestamp: e.Timestamp}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.cfg.Host, "/")+"/batch/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("posthog returned status %d", resp.StatusCode)
	}
	return nil
}
