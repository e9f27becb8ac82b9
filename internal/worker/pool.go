// Package worker contains the claim loops that drive clip jobs from
// queued to a terminal state.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"clipforge/internal/clip"
	"clipforge/internal/media"
	"clipforge/internal/retry"
	"clipforge/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Config holds configuration for the worker pool.
type Config struct {
	// Concurrency is the number of independent claim loops.
	Concurrency int

	// PollInterval is the base idle delay between empty claims.
	PollInterval time.Duration

	// IdleBackoffMax caps the doubling idle delay (default: 4x PollInterval).
	IdleBackoffMax time.Duration

	// WorkDir is where per-job working directories are created.
	WorkDir string

	// ProcessingDeadline is how long a job may sit in processing before
	// the reaper returns it to the queue. Zero disables the reaper.
	ProcessingDeadline time.Duration

	// ReapInterval is how often the reaper runs (default: 1m).
	ReapInterval time.Duration
}

// Fetcher materializes a remote source into a local file.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, destDir string) (string, error)
}

// Pool runs N concurrent claim loops over a shared store. The store's
// atomic claim is the sole mechanism preventing double-processing; the
// pool imposes no coordination of its own.
type Pool struct {
	queue    store.Queue
	fetcher  Fetcher
	pipeline clip.Pipeline
	policy   retry.Policy
	config   Config
	logger   *slog.Logger
	done     chan struct{}
}

// New creates a worker pool. The store is injected rather than resolved
// from any process-global handle; the pool owns nothing it didn't receive.
func New(q store.Queue, f Fetcher, p clip.Pipeline, policy retry.Policy, config Config, logger *slog.Logger) *Pool {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.IdleBackoffMax <= 0 {
		config.IdleBackoffMax = 4 * config.PollInterval
	}
	if config.ReapInterval <= 0 {
		config.ReapInterval = time.Minute
	}

	return &Pool{
		queue:    q,
		fetcher:  f,
		pipeline: p,
		policy:   policy,
		config:   config,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Run starts the claim loops and blocks until the context is cancelled
// and all in-flight jobs have drained.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("worker pool starting", "concurrency", p.config.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < p.config.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.runLoop(ctx, id)
		}(i)
	}

	if p.config.ProcessingDeadline > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runReaper(ctx)
		}()
	}

	wg.Wait()
	close(p.done)
	return ctx.Err()
}

// Done returns a channel that is closed when the pool has fully stopped.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// runLoop claims and processes jobs until the context is cancelled.
// The idle delay doubles on each consecutive empty claim up to
// IdleBackoffMax and snaps back to PollInterval the moment work appears.
func (p *Pool) runLoop(ctx context.Context, id int) {
	logger := p.logger.With("loop", id)
	idle := p.config.PollInterval

	for {
		job, err := p.queue.TakeNextQueuedJob(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Store errors are never masked as progress; back off and retry.
			logger.Error("claim failed", "error", err)
		} else if job != nil {
			idle = p.config.PollInterval
			if err := p.processJob(ctx, job); err != nil {
				logger.Error("job processing could not be recorded", "job_id", job.ID, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(idle):
		}

		idle *= 2
		if idle > p.config.IdleBackoffMax {
			idle = p.config.IdleBackoffMax
		}
	}
}

// processJob runs one claimed job end to end: source acquisition, clip
// generation, then finalize or requeue. Download and pipeline failures
// are retryable; store failures propagate to the loop.
func (p *Pool) processJob(ctx context.Context, job *store.Job) error {
	tracer := otel.Tracer("clipforge-worker")
	ctx, span := tracer.Start(ctx, "process_job",
		trace.WithAttributes(
			attribute.String("job.id", job.ID.String()),
			attribute.String("tenant.id", job.TenantID.String()),
			attribute.Int("job.attempts", job.Attempts),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	defer span.End()

	p.logger.Info("processing job", "job_id", job.ID, "attempt", job.Attempts)

	workDir := filepath.Join(p.config.WorkDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		span.RecordError(err)
		return p.handleFailure(ctx, job, fmt.Errorf("failed to create work dir: %w", err))
	}

	sourcePath, err := p.acquireSource(ctx, job, workDir)
	if err != nil {
		span.RecordError(err)
		return p.handleFailure(ctx, job, err)
	}

	result, err := p.pipeline.Process(ctx, clip.Request{
		SourcePath:         sourcePath,
		OutputDir:          workDir,
		MaxDurationSeconds: job.MaxDurationSeconds,
		WatermarkText:      job.WatermarkText,
		VariantCount:       job.VariantCount,
	})
	if err != nil {
		span.RecordError(err)
		return p.handleFailure(ctx, job, err)
	}

	output := outputMap(result)
	if _, err := p.queue.FinalizeJob(ctx, job.ID, store.FinalizePatch{
		Status: store.JobStatusCompleted,
		Output: output,
	}); err != nil {
		span.RecordError(err)
		return err
	}

	p.logger.Info("job completed", "job_id", job.ID, "clip", result.ClipPath)
	return nil
}

// acquireSource materializes the job's source as a readable local file.
func (p *Pool) acquireSource(ctx context.Context, job *store.Job, workDir string) (string, error) {
	if media.IsRemote(job.SourceURI) {
		return p.fetcher.Fetch(ctx, job.SourceURI, workDir)
	}
	return media.ResolveLocal(job.SourceURI)
}

// handleFailure classifies a retryable failure: requeue with backoff
// while attempts remain, finalize as failed once they are exhausted.
// Errors returned here are store errors and bubble up to the loop.
func (p *Pool) handleFailure(ctx context.Context, job *store.Job, cause error) error {
	msg := cause.Error()

	if p.policy.Exhausted(job.Attempts) {
		p.logger.Warn("job failed permanently", "job_id", job.ID, "attempts", job.Attempts, "error", msg)
		_, err := p.queue.FinalizeJob(ctx, job.ID, store.FinalizePatch{
			Status:       store.JobStatusFailed,
			ErrorMessage: &msg,
		})
		return err
	}

	delay := p.policy.Delay(job.Attempts)
	p.logger.Warn("job failed, requeueing", "job_id", job.ID, "attempts", job.Attempts, "delay", delay, "error", msg)
	_, err := p.queue.RequeueJob(ctx, job.ID, delay, msg)
	return err
}

// runReaper periodically returns jobs stuck in processing to the queue.
func (p *Pool) runReaper(ctx context.Context) {
	ticker := time.NewTicker(p.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaped, err := p.queue.ReapStuckJobs(ctx, p.config.ProcessingDeadline)
			if err != nil {
				p.logger.Error("reap failed", "error", err)
				continue
			}
			if reaped > 0 {
				p.logger.Warn("requeued stuck jobs", "count", reaped)
			}
		}
	}
}

// outputMap flattens the pipeline result into the job's artifact map.
func outputMap(result *clip.Result) map[string]string {
	output := map[string]string{
		"clip": result.ClipPath,
	}
	if result.CaptionsPath != "" {
		output["captions"] = result.CaptionsPath
	}
	if result.TimelinePath != "" {
		output["timeline"] = result.TimelinePath
	}
	for _, v := range result.Variants {
		output[fmt.Sprintf("variant_%d", v.Index)] = v.Path
	}
	return output
}
