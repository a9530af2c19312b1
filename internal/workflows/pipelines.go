package workflows

import (
	"github.com/heri-science/artifact-pipeline/internal/stages"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// Pipeline is an ordered stage sequence for one processing mode. Stages
// run strictly in slice order; they never read ahead or skip.
type Pipeline struct {
	Mode   pipeline.Mode
	Stages []stages.Stage
}

// NewSuperResolution builds the 6-stage super-resolution pipeline:
// denoise, upscale, detail synthesis, sharpen, color correction, final
// quality pass. maxOutputDim bounds the upscaled dimensions.
func NewSuperResolution(maxOutputDim int) *Pipeline {
	return &Pipeline{
		Mode: pipeline.ModeSuperResolution,
		Stages: []stages.Stage{
			&stages.Denoise{},
			&stages.Upscale{MaxOutputDim: maxOutputDim},
			&stages.DetailSynthesis{},
			&stages.Sharpen{},
			&stages.ColorCorrect{},
			&stages.FinalQuality{},
		},
	}
}

// NewRestoration builds the 8-stage restoration pipeline: damage map
// estimation, conservative noise removal, structural inpainting, fade
// correction, contrast restoration, detail re-sharpening outside the
// damage mask, final polish, quality assurance check. Output dimensions
// match the input exactly.
func NewRestoration() *Pipeline {
	return &Pipeline{
		Mode: pipeline.ModeRestoration,
		Stages: []stages.Stage{
			&stages.DamageMap{},
			&stages.Denoise{Conservative: true},
			&stages.Inpaint{},
			&stages.FadeCorrect{},
			&stages.ContrastRestore{},
			&stages.Sharpen{OutsideMask: true},
			&stages.FinalPolish{},
			&stages.QACheck{},
		},
	}
}
