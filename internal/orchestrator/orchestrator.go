// Package orchestrator drives submitted jobs through their resolution ladder.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"transcodeplane/internal/events"
	"transcodeplane/internal/ladder"
	"transcodeplane/internal/store"
	"transcodeplane/internal/transcode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "transcodeplane-orchestrator"

// Transcoder runs one (source, target) transcode. *transcode.Pipeline
// satisfies it.
type Transcoder interface {
	Transcode(ctx context.Context, source, output string, target ladder.Target) (transcode.Outcome, error)
}

// Config holds orchestrator settings.
type Config struct {
	// OutputDir receives every produced artifact.
	OutputDir string
	// Concurrency bounds how many jobs run pipelines at once. Zero means
	// no bound: every accepted job starts transcoding immediately.
	Concurrency int
}

// Request is a job submission.
type Request struct {
	JobID       string
	InputURL    string
	Resolutions []string
}

// Orchestrator owns the lifecycle of every job. Each accepted job runs on its
// own goroutine; its record is written once at submission and once when it
// reaches a terminal state.
type Orchestrator struct {
	store     store.JobStore
	pipeline  Transcoder
	publisher events.Publisher
	logger    *slog.Logger
	config    Config

	sem chan struct{}
	wg  sync.WaitGroup

	tracer        trace.Tracer
	jobsFinished  metric.Int64Counter
	tiersSkipped  metric.Int64Counter
	tierDurations metric.Float64Histogram
}

// New creates an orchestrator. A nil publisher disables events.
func New(st store.JobStore, p Transcoder, pub events.Publisher, logger *slog.Logger, config Config) (*Orchestrator, error) {
	if config.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", config.Concurrency)
	}
	if config.OutputDir == "" {
		config.OutputDir = os.TempDir()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	o := &Orchestrator{
		store:     st,
		pipeline:  p,
		publisher: pub,
		logger:    logger,
		config:    config,
		tracer:    otel.Tracer(instrumentationName),
	}
	if config.Concurrency > 0 {
		o.sem = make(chan struct{}, config.Concurrency)
	}

	meter := otel.Meter(instrumentationName)
	var err error
	o.jobsFinished, err = meter.Int64Counter("transcode.jobs.finished",
		metric.WithDescription("Jobs that reached a terminal state"))
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs counter: %w", err)
	}
	o.tiersSkipped, err = meter.Int64Counter("transcode.tiers.skipped",
		metric.WithDescription("Tiers skipped because they would upscale the source"))
	if err != nil {
		return nil, fmt.Errorf("failed to create skipped counter: %w", err)
	}
	o.tierDurations, err = meter.Float64Histogram("transcode.tier.duration",
		metric.WithDescription("Wall time of one tier transcode"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return o, nil
}

// Submit records the job as processing and starts it in the background. It
// returns once the record is stored; pipeline failures never surface here.
// The job keeps running after ctx is cancelled.
func (o *Orchestrator) Submit(ctx context.Context, req Request) error {
	if req.JobID == "" {
		return errors.New("job id is required")
	}

	job := &store.Job{
		ID:          req.JobID,
		InputURL:    req.InputURL,
		Resolutions: append([]string(nil), req.Resolutions...),
		Status:      store.JobStatusProcessing,
		Results:     []store.TierResult{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := o.store.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.process(context.WithoutCancel(ctx), job)
	}()
	return nil
}

// Wait blocks until every job started so far has committed its terminal
// state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) process(ctx context.Context, job *store.Job) {
	ctx, span := o.tracer.Start(ctx, "process_job",
		trace.WithAttributes(
			attribute.String("job.id", job.ID),
			attribute.String("job.input_url", job.InputURL),
			attribute.StringSlice("job.resolutions", job.Resolutions),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	defer span.End()

	if o.sem != nil {
		o.sem <- struct{}{}
		defer func() { <-o.sem }()
	}

	log := o.logger.With("job_id", job.ID)
	log.Info("processing job", "input_url", job.InputURL, "resolutions", job.Resolutions)

	// Results stay local until every tier has succeeded.
	results := make([]store.TierResult, 0, len(job.Resolutions))
	for _, label := range job.Resolutions {
		res, ok, err := o.runTier(ctx, job, label)
		if err != nil {
			span.RecordError(err)
			log.Error("tier failed, aborting job", "resolution", label, "error", err)
			o.commit(ctx, job, store.JobStatusFailed, nil, err.Error())
			return
		}
		if ok {
			results = append(results, res)
		}
	}

	o.commit(ctx, job, store.JobStatusCompleted, results, "")
}

// runTier transcodes one tier. ok is false when the tier produced no row.
func (o *Orchestrator) runTier(ctx context.Context, job *store.Job, label string) (store.TierResult, bool, error) {
	target := ladder.Resolve(label)
	ctx, span := o.tracer.Start(ctx, "transcode_tier",
		trace.WithAttributes(
			attribute.String("job.id", job.ID),
			attribute.String("tier", label),
			attribute.Int("width", target.Width),
			attribute.Int("height", target.Height),
		),
	)
	defer span.End()

	output := o.outputPath(job.ID, label)
	start := time.Now()
	out, err := o.pipeline.Transcode(ctx, job.InputURL, output, target)
	o.tierDurations.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("tier", label)))
	if err != nil {
		span.RecordError(err)
		return store.TierResult{}, false, err
	}

	span.SetAttributes(attribute.Bool("skipped", out.Skipped))
	if out.Skipped {
		o.tiersSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", label)))
		o.logger.Info("tier skipped, source is smaller than target",
			"job_id", job.ID, "resolution", label,
			"source_width", out.Source.Width, "source_height", out.Source.Height)
		return store.TierResult{}, false, nil
	}

	fi, err := os.Stat(output)
	if err != nil {
		o.logger.Warn("transcoded file missing, dropping result",
			"job_id", job.ID, "resolution", label, "path", output, "error", err)
		return store.TierResult{}, false, nil
	}

	return store.TierResult{
		Resolution:  label,
		DownloadURL: DownloadURL(job.ID, label),
		SizeBytes:   fi.Size(),
		Path:        output,
	}, true, nil
}

func (o *Orchestrator) commit(ctx context.Context, job *store.Job, status store.JobStatus, results []store.TierResult, errMsg string) {
	finished := time.Now().UTC()

	final := job.Clone()
	final.Status = status
	final.FinishedAt = &finished
	final.Results = results
	if final.Results == nil {
		final.Results = []store.TierResult{}
	}
	if errMsg != "" {
		final.Error = &errMsg
	}

	log := o.logger.With("job_id", job.ID)
	if err := o.store.Save(ctx, final); err != nil {
		log.Error("failed to commit job state", "status", status, "error", err)
		return
	}
	o.jobsFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	log.Info("job finished", "status", status, "results", len(final.Results))

	ev := events.Event{
		JobID:       job.ID,
		Status:      string(status),
		InputURL:    job.InputURL,
		Resolutions: job.Resolutions,
		Error:       errMsg,
		FinishedAt:  finished,
	}
	if err := o.publisher.Publish(ctx, ev); err != nil {
		log.Warn("failed to publish job event", "error", err)
	}
}

func (o *Orchestrator) outputPath(jobID, label string) string {
	name := fmt.Sprintf("%s_%s_%d.mp4", sanitize(jobID), sanitize(label), time.Now().UnixNano())
	return filepath.Join(o.config.OutputDir, name)
}

// DownloadURL is the locator under which a produced tier is served.
func DownloadURL(jobID, label string) string {
	return "/videos/" + url.PathEscape(jobID) + "/" + url.PathEscape(label)
}

// sanitize keeps caller-supplied ids from escaping the output directory.
func sanitize(s string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
	if clean == "" || strings.Trim(clean, ".") == "" {
		return "_"
	}
	return clean
}
