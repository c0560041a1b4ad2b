package usecase

import (
	"context"
	"time"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/metrics"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// pipelineUseCaseWithMetrics decorates PipelineUseCase with metrics
// instrumentation.
type pipelineUseCaseWithMetrics struct {
	next    PipelineUseCase
	metrics metrics.BusinessMetrics
}

// NewPipelineUseCaseWithMetrics wraps a PipelineUseCase with metrics recording.
func NewPipelineUseCaseWithMetrics(useCase PipelineUseCase, m metrics.BusinessMetrics) PipelineUseCase {
	return &pipelineUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ProcessMessage records metrics for pipeline runs.
func (p *pipelineUseCaseWithMetrics) ProcessMessage(
	ctx context.Context,
	msg domain.InboundMessage,
) (*domain.PipelineAccumulator, error) {
	start := time.Now()
	acc, err := p.next.ProcessMessage(ctx, msg)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pipeline", "process_message", status)
	p.metrics.RecordDuration(ctx, "pipeline", "process_message", time.Since(start), status)

	return acc, err
}

// resolutionUseCaseWithMetrics decorates ResolutionUseCase with metrics
// instrumentation.
type resolutionUseCaseWithMetrics struct {
	next    ResolutionUseCase
	metrics metrics.BusinessMetrics
}

// NewResolutionUseCaseWithMetrics wraps a ResolutionUseCase with metrics
// recording.
func NewResolutionUseCaseWithMetrics(useCase ResolutionUseCase, m metrics.BusinessMetrics) ResolutionUseCase {
	return &resolutionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RunCycle records metrics for resolution poller cycles.
func (r *resolutionUseCaseWithMetrics) RunCycle(ctx context.Context) error {
	start := time.Now()
	err := r.next.RunCycle(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "resolution", "run_cycle", status)
	r.metrics.RecordDuration(ctx, "resolution", "run_cycle", time.Since(start), status)

	return err
}
