// Package stages implements the transform steps shared by the
// super-resolution and restoration pipelines. Every stage is a pure
// function of its input buffer and the run profile: it returns a new
// buffer and never mutates its input, so the orchestrator can diff and
// time stage-by-stage.
package stages

import (
	"fmt"

	"github.com/heri-science/artifact-pipeline/internal/profiles"
	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// Stage is one deterministic transform step within a pipeline.
type Stage interface {
	Name() string

	// Apply consumes the previous stage's output and produces a new
	// buffer. A returned *Fault is recoverable: the orchestrator
	// substitutes identity for this stage and continues. Any other error
	// aborts the run.
	Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error)
}

// DamageAnalysis is the restoration preflight computed by the damage map
// stage and consumed by the later adaptive stages.
type DamageAnalysis struct {
	Variance    float64
	Brightness  float64
	IsFaded     bool
	IsNoisy     bool
	DamageScore float64 // 0 (pristine) to 100
}

// RunContext carries per-run state between stages: the selected profile,
// the damage mask threaded from restoration stage 1 into stages 3 and 6,
// and stage diagnostics. It is owned by a single pipeline run.
type RunContext struct {
	Profile profiles.Profile

	// Original is the decoded input buffer, kept for the restoration
	// quality assurance comparison. Stages must not modify it.
	Original *raster.Buffer

	// Mask is the damage map produced by restoration stage 1. Nil for
	// super-resolution runs.
	Mask *raster.Mask

	// Analysis is the restoration damage preflight. Nil for
	// super-resolution runs.
	Analysis *DamageAnalysis

	// TargetWidth/TargetHeight are the declared output dimensions,
	// recorded by the upscale stage and asserted by the final quality
	// pass.
	TargetWidth  int
	TargetHeight int

	// LowConfidence is raised by the quality assurance check when output
	// statistics drift past tolerance.
	LowConfidence bool

	diagnostics map[string]float64
}

// RecordDiagnostic stores a stage's optional diagnostic scalar.
func (rc *RunContext) RecordDiagnostic(stage string, v float64) {
	if rc.diagnostics == nil {
		rc.diagnostics = make(map[string]float64)
	}
	rc.diagnostics[stage] = v
}

// Diagnostic returns the scalar a stage recorded, if any.
func (rc *RunContext) Diagnostic(stage string) (float64, bool) {
	v, ok := rc.diagnostics[stage]
	return v, ok
}

// Fault is a recoverable numeric failure inside one stage (a division by
// zero color variance, a mask with nothing to interpolate from). The
// orchestrator substitutes identity for the faulting stage and records the
// reason instead of aborting the run.
type Fault struct {
	Reason string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("stage fault: %s", f.Reason)
}
