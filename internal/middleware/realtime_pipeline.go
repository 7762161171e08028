package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	domrepo "github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, r *models.MeterReading) error
}

// RealtimePipeline is a middleware between the grid feed and Kafka.
// It validates, throttles per indicator, optionally transforms, and buffers
// readings when downstream is unavailable.
type RealtimePipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.MeterReading
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[models.Indicator]time.Time // per-indicator last accepted time
	// simple format transform hook (optional)
	transform func(*models.MeterReading) *models.MeterReading
	// metrics
	bufDepthGauge func(int)
	throttleWarn  func(string)
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS sets the max readings per second per indicator.
func WithMaxRPS(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a transformation hook to modify the reading format.
func WithTransform(fn func(*models.MeterReading) *models.MeterReading) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,   // default throttle per indicator
		bufSize:  1000, // default buffer
		bufCh:    make(chan *models.MeterReading, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[models.Indicator]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.MeterReading, p.bufSize)
	}
	// metrics hooks using domain metrics if available
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	p.throttleWarn = func(ind string) { p.metrics.RecordError("pipeline_throttle_" + ind) }
	return p
}

// Start launches background flushing of buffered readings.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case r := <-p.bufCh:
				if r == nil {
					continue
				}
				if err := p.proc.Process(ctx, r); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- r:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the reading downstream,
// buffering on errors.
func (p *RealtimePipeline) Process(ctx context.Context, r *models.MeterReading) error {
	start := time.Now()
	if err := validateReading(r); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		r = p.transform(r)
		if err := validateReading(r); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.allow(r.Indicator, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		if p.throttleWarn != nil {
			p.throttleWarn(string(r.Indicator))
		}
		return nil
	}

	if err := p.proc.Process(ctx, r); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- r:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateReading(r *models.MeterReading) error {
	if r == nil {
		return fmt.Errorf("reading nil")
	}
	if !models.IsValidIndicator(r.Indicator) {
		return fmt.Errorf("unknown indicator %q", r.Indicator)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if r.Indicator == models.IndicatorDemand && r.Value < 0 {
		return fmt.Errorf("negative demand")
	}
	return nil
}

func (p *RealtimePipeline) allow(indicator models.Indicator, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	// simple throttle: at most maxRPS per second per indicator
	last := p.lastSeen[indicator]
	if last.IsZero() {
		p.lastSeen[indicator] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[indicator] = now
	return true
}
