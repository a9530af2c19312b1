package pipeline

import "time"

// Mode selects which enhancement pipeline processes the image.
type Mode string

const (
	ModeSuperResolution Mode = "super-resolution"
	ModeRestoration     Mode = "restoration"
)

// Valid reports whether m names a known pipeline.
func (m Mode) Valid() bool {
	return m == ModeSuperResolution || m == ModeRestoration
}

// ProcessRequest represents a request to enhance an artifact image.
type ProcessRequest struct {
	// ImageData is the raw encoded image (JPEG or PNG bytes).
	ImageData []byte `json:"-"`

	Mode Mode `json:"mode"`

	// Intensity controls overall aggressiveness, 0.0 to 1.0. Values at or
	// below zero select the service default of 0.75.
	Intensity float64 `json:"intensity,omitempty"`

	// ProfileHint optionally forces a processing tier
	// (fast, balanced, quality, ultra) instead of deriving it from Intensity.
	ProfileHint string `json:"profile,omitempty"`

	// ArtifactType is the label assigned by the external classifier
	// (e.g. "manuscript", "pottery"). Unknown or empty labels select the
	// balanced generic profile.
	ArtifactType string `json:"artifact_type,omitempty"`

	// Confidence is the external classifier's confidence in ArtifactType.
	// Clamped to [0,1] before it scales repair aggressiveness.
	Confidence float64 `json:"confidence,omitempty"`

	// OutputFormat selects the result encoding: "jpeg" (default) or "png".
	OutputFormat string `json:"output_format,omitempty"`
}

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`

	// OutputWidth/OutputHeight are the dimensions of the stage's output
	// buffer, useful for diffing resolution-changing stages.
	OutputWidth  int `json:"output_width"`
	OutputHeight int `json:"output_height"`

	// Fault is set when the stage hit a recoverable numeric fault and was
	// substituted with identity for this run.
	Fault       bool   `json:"fault,omitempty"`
	FaultReason string `json:"fault_reason,omitempty"`

	// Diagnostic is an optional stage-specific scalar (estimated noise
	// removed, fraction of pixels inpainted, ...).
	Diagnostic *float64 `json:"diagnostic,omitempty"`
}

// ProcessingReport summarizes a single pipeline run. It is created per
// request and never persisted.
type ProcessingReport struct {
	RunID   string `json:"run_id"`
	Mode    Mode   `json:"mode"`
	Profile string `json:"profile"`

	InputWidth   int `json:"input_width"`
	InputHeight  int `json:"input_height"`
	OutputWidth  int `json:"output_width"`
	OutputHeight int `json:"output_height"`

	Stages        []StageResult `json:"stages"`
	TotalDuration time.Duration `json:"total_duration_ns"`

	// LowConfidence is set by restoration's quality assurance check when
	// output statistics drift beyond the profile tolerance. The result is
	// still returned.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// ProcessResult is the successful outcome of a pipeline run.
type ProcessResult struct {
	// ImageData is the encoded result image.
	ImageData []byte

	// Format is the encoding actually used ("jpeg" or "png").
	Format string

	Report ProcessingReport
}
