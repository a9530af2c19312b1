// Package workflows orchestrates pipeline runs: it selects a pipeline by
// requested mode, walks its stages in order with per-stage timing and
// fault handling, and assembles the processing report. Each run is
// synchronous and owns its buffers end to end; nothing outlives the call.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/heri-science/artifact-pipeline/internal/metrics"
	"github.com/heri-science/artifact-pipeline/internal/profiles"
	"github.com/heri-science/artifact-pipeline/internal/raster"
	"github.com/heri-science/artifact-pipeline/internal/stages"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// Config bounds what the Runner accepts and produces.
type Config struct {
	// MaxInputDim bounds both input dimensions; exceeding it is a
	// size-limit error at decode time. Non-positive disables the check.
	MaxInputDim int

	// MaxOutputDim bounds the upscaled output; a scale request exceeding
	// it is rejected, never clamped.
	MaxOutputDim int
}

// DefaultConfig mirrors the service defaults.
func DefaultConfig() Config {
	return Config{
		MaxInputDim:  8192,
		MaxOutputDim: 16384,
	}
}

// Runner executes enhancement pipelines. It is stateless per call and safe
// for concurrent use: every run allocates its own buffers and context.
type Runner struct {
	cfg       Config
	logger    *logrus.Logger
	pipelines map[pipeline.Mode]*Pipeline
}

// NewRunner builds a Runner with both pipelines registered.
func NewRunner(cfg Config, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		pipelines: map[pipeline.Mode]*Pipeline{
			pipeline.ModeSuperResolution: NewSuperResolution(cfg.MaxOutputDim),
			pipeline.ModeRestoration:     NewRestoration(),
		},
	}
}

// Process runs one image through the pipeline selected by req.Mode. On
// success it returns the encoded result and a complete report; on failure
// it returns a typed *pipeline.ProcessError and no partial output.
func (r *Runner) Process(ctx context.Context, req pipeline.ProcessRequest) (*pipeline.ProcessResult, error) {
	runID := uuid.New().String()
	log := r.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"mode":   req.Mode,
	})

	pl, ok := r.pipelines[req.Mode]
	if !ok {
		err := pipeline.NewProcessError(pipeline.KindUnknownMode, "",
			fmt.Errorf("no pipeline registered for mode %q", req.Mode))
		return nil, r.fail(log, req.Mode, StateIdle, err)
	}

	start := time.Now()

	log.WithField("state", StateDecoding).Debug("decoding input")
	buf, err := raster.Decode(req.ImageData, r.cfg.MaxInputDim)
	if err != nil {
		return nil, r.fail(log, req.Mode, StateDecoding, err)
	}

	prof := profiles.Select(req.ArtifactType, req.Confidence, req.ProfileHint, req.Intensity)
	log = log.WithField("profile", prof.Name)

	report := pipeline.ProcessingReport{
		RunID:       runID,
		Mode:        req.Mode,
		Profile:     prof.Name,
		InputWidth:  buf.Width(),
		InputHeight: buf.Height(),
		Stages:      make([]pipeline.StageResult, 0, len(pl.Stages)),
	}

	rc := &stages.RunContext{
		Profile:  prof,
		Original: buf,
	}

	current := buf
	for i, st := range pl.Stages {
		// Cancellation is observed at stage boundaries only; a canceled
		// run discards its partial buffers.
		if err := ctx.Err(); err != nil {
			metrics.RunsTotal.WithLabelValues(string(req.Mode), "canceled").Inc()
			log.WithField("stage", st.Name()).Info("run canceled")
			return nil, fmt.Errorf("run canceled before stage %q: %w", st.Name(), err)
		}

		log.WithFields(logrus.Fields{
			"state": StateRunning,
			"stage": st.Name(),
			"index": i,
		}).Debug("applying stage")

		stageStart := time.Now()
		out, err := st.Apply(rc, current)
		elapsed := time.Since(stageStart)
		metrics.StageDuration.WithLabelValues(string(req.Mode), st.Name()).Observe(elapsed.Seconds())

		result := pipeline.StageResult{
			Stage:    st.Name(),
			Duration: elapsed,
		}

		var fault *stages.Fault
		switch {
		case errors.As(err, &fault):
			// Recoverable: substitute identity for this stage only and
			// keep going.
			metrics.StageFaults.WithLabelValues(string(req.Mode), st.Name()).Inc()
			log.WithFields(logrus.Fields{
				"stage":  st.Name(),
				"reason": fault.Reason,
			}).Warn("stage fault, substituting identity")
			out = current.Clone()
			result.Fault = true
			result.FaultReason = fault.Reason
		case err != nil:
			return nil, r.fail(log.WithField("stage", st.Name()), req.Mode, StateRunning, err)
		}

		if d, ok := rc.Diagnostic(st.Name()); ok {
			diag := d
			result.Diagnostic = &diag
		}
		result.OutputWidth = out.Width()
		result.OutputHeight = out.Height()
		report.Stages = append(report.Stages, result)
		current = out
	}

	if req.Mode == pipeline.ModeRestoration && !current.SameShape(buf) {
		err := pipeline.NewProcessError(pipeline.KindConsistency, "",
			fmt.Errorf("restoration output %dx%d differs from input %dx%d",
				current.Width(), current.Height(), buf.Width(), buf.Height()))
		return nil, r.fail(log, req.Mode, StateRunning, err)
	}

	log.WithField("state", StateEncoding).Debug("encoding result")
	format := raster.NormalizeFormat(req.OutputFormat)
	data, err := raster.Encode(current, format, prof.JPEGQuality)
	if err != nil {
		return nil, r.fail(log, req.Mode, StateEncoding, err)
	}

	report.OutputWidth = current.Width()
	report.OutputHeight = current.Height()
	report.TotalDuration = time.Since(start)
	report.LowConfidence = rc.LowConfidence

	metrics.RunsTotal.WithLabelValues(string(req.Mode), "done").Inc()
	if rc.LowConfidence {
		metrics.LowConfidenceResults.Inc()
	}

	log.WithFields(logrus.Fields{
		"state":          StateDone,
		"input_size":     fmt.Sprintf("%dx%d", report.InputWidth, report.InputHeight),
		"output_size":    fmt.Sprintf("%dx%d", report.OutputWidth, report.OutputHeight),
		"total_duration": report.TotalDuration,
		"low_confidence": report.LowConfidence,
	}).Info("run complete")

	return &pipeline.ProcessResult{
		ImageData: data,
		Format:    format,
		Report:    report,
	}, nil
}

// fail records the terminal error state and normalizes the error into a
// *pipeline.ProcessError.
func (r *Runner) fail(log *logrus.Entry, mode pipeline.Mode, from State, err error) error {
	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		perr = pipeline.NewProcessError(pipeline.KindConsistency, "", err)
	}

	metrics.RunsTotal.WithLabelValues(string(mode), "error").Inc()
	log.WithFields(logrus.Fields{
		"state": StateError,
		"from":  from,
		"kind":  perr.Kind,
	}).WithError(err).Error("run failed")
	return perr
}
