package usecase

import (
	"context"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	drepo "github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"
	mid "github.com/sablalpz/GreenEnergy-Insights/internal/middleware"
)

// ReadingCollector collects readings from the grid feed and processes them.
type ReadingCollector struct {
	stream  drepo.ReadingStream
	proc    *ReadingProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewReadingCollector creates a new ReadingCollector instance.
func NewReadingCollector(stream drepo.ReadingStream, proc *ReadingProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *ReadingCollector {
	return &ReadingCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the grid feed is connected.
func (c *ReadingCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *ReadingCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	rdCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, rdCh, errCh)
	return nil
}

func (c *ReadingCollector) consume(ctx context.Context, rdCh <-chan *models.MeterReading, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case r := <-rdCh:
			if r == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, r)
			} else {
				_ = c.proc.Process(ctx, r)
			}
			c.metrics.RecordLastValue(string(r.Indicator), r.Value)
		}
	}
}

func (c *ReadingCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying ReadingProcessor for lifecycle management.
func (c *ReadingCollector) Processor() *ReadingProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *ReadingCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
