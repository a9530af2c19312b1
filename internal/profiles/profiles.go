// Package profiles maps artifact classifications and processing tiers to
// the parameter bundles that drive pipeline stages. Selection is a pure
// function: no I/O, no failure paths — unknown labels fall back to the
// balanced generic profile.
package profiles

import "fmt"

// Tier is a coarse speed/quality trade-off. Tiers gate the optional
// passes (multi-scale upscaling, detail recovery, texture enhancement)
// and scale the per-stage factors.
type Tier string

const (
	TierFast     Tier = "fast"
	TierBalanced Tier = "balanced"
	TierQuality  Tier = "quality"
	TierUltra    Tier = "ultra"
)

// DefaultIntensity is used when the caller leaves intensity unset.
const DefaultIntensity = 0.75

// Profile is an immutable parameter bundle for one pipeline run.
type Profile struct {
	Name      string
	Tier      Tier
	Intensity float64

	// Denoise
	DenoiseStrength float64 // 0 disables the stage
	// RestoreDenoiseScale tunes restoration's noise removal more
	// conservatively so faint damage boundaries survive for the inpainter.
	RestoreDenoiseScale float64

	// Upscale
	ScaleFactor int
	MultiScale  bool

	// Detail synthesis
	DetailGain     float64 // 0 disables the stage
	OvershootLimit int     // max ringing overshoot in levels

	// Sharpen
	SharpenRadius float64
	SharpenAmount float64 // 0 disables the stage

	// Color
	WhiteBalance     float64 // 0 disables gray-world correction
	SaturationFactor float64 // 1 is neutral
	ContrastFactor   float64 // 1 is neutral

	// Restoration
	FadeCorrection    float64 // 0 disables fade re-centering
	InpaintStrength   float64 // 0 disables inpainting
	DamageVarianceMax float64 // local variance below this marks candidates
	DamageDeviationMin float64 // |local mean - global mean| above this marks candidates

	// Quality assurance tolerances (restoration stage 8)
	QALumaTolerance float64
	QAEdgeTolerance float64

	// Output
	JPEGQuality int
}

// Identity returns a profile whose parameters are neutral for every stage:
// running any stage with it must leave the buffer untouched.
func Identity() Profile {
	return Profile{
		Name:             "identity",
		Tier:             TierFast,
		ScaleFactor:      1,
		SaturationFactor: 1,
		ContrastFactor:   1,
		OvershootLimit:   32,
		QALumaTolerance:  255,
		QAEdgeTolerance:  1,
		JPEGQuality:      90,
	}
}

// TierForIntensity auto-selects a tier when the caller gives no explicit
// hint.
func TierForIntensity(intensity float64) Tier {
	switch {
	case intensity < 0.3:
		return TierFast
	case intensity < 0.6:
		return TierBalanced
	case intensity < 0.85:
		return TierQuality
	default:
		return TierUltra
	}
}

// ParseTier maps a caller-supplied hint onto a tier; unknown hints return
// false and the caller falls back to intensity-based selection.
func ParseTier(hint string) (Tier, bool) {
	switch Tier(hint) {
	case TierFast, TierBalanced, TierQuality, TierUltra:
		return Tier(hint), true
	default:
		return "", false
	}
}

// Select builds the profile for a run. artifactType is the external
// classifier's label with its confidence; hint optionally forces a tier;
// intensity at or below zero selects the default. Selection never fails.
func Select(artifactType string, confidence float64, hint string, intensity float64) Profile {
	if intensity <= 0 {
		intensity = DefaultIntensity
	}
	if intensity > 1 {
		intensity = 1
	}
	confidence = clamp01(confidence)

	tier, ok := ParseTier(hint)
	if !ok {
		tier = TierForIntensity(intensity)
	}

	p := baseProfile(tier, intensity)
	kind := classify(artifactType)
	applyArtifactBias(&p, kind)

	// Classifier confidence linearly scales the repair stages: a confident
	// "heavily damaged pottery" call gets a stronger inpainter than a
	// guess. Half strength at zero confidence, full at one.
	repairScale := 0.5 + 0.5*confidence
	p.InpaintStrength *= repairScale
	p.FadeCorrection *= repairScale

	p.Name = fmt.Sprintf("%s/%s", kind, tier)
	return p
}

func baseProfile(tier Tier, intensity float64) Profile {
	p := Profile{
		Tier:                tier,
		Intensity:           intensity,
		RestoreDenoiseScale: 0.6,
		ScaleFactor:         2,
		OvershootLimit:      32,
		SaturationFactor:    1.0 + intensity*0.1,
		ContrastFactor:      1.0 + intensity*0.15,
		WhiteBalance:        0.3 + intensity*0.3,
		FadeCorrection:      0.4 + intensity*0.4,
		InpaintStrength:     0.5 + intensity*0.5,
		DamageVarianceMax:   60,
		DamageDeviationMin:  35,
		QALumaTolerance:     24,
		QAEdgeTolerance:     0.12,
		JPEGQuality:         90,
	}

	switch tier {
	case TierFast:
		p.DenoiseStrength = intensity * 0.3
		p.SharpenRadius = 1.0
		p.SharpenAmount = 0.3 + intensity*0.3
	case TierBalanced:
		p.MultiScale = intensity > 0.5
		p.DenoiseStrength = 0.3 + intensity*0.3
		p.SharpenRadius = 1.5
		p.SharpenAmount = 0.4 + intensity*0.4
		if intensity > 0.6 {
			p.DetailGain = 0.4 + intensity*0.3
		}
	case TierQuality:
		p.MultiScale = true
		p.DenoiseStrength = 0.4 + intensity*0.4
		p.SharpenRadius = 2.0
		p.SharpenAmount = 0.5 + intensity*0.5
		p.DetailGain = 0.5 + intensity*0.4
		p.ContrastFactor = 1.0 + intensity*0.2
		p.SaturationFactor = 1.0 + intensity*0.15
	case TierUltra:
		p.MultiScale = true
		p.DenoiseStrength = 0.5 + intensity*0.5
		p.SharpenRadius = 2.0
		p.SharpenAmount = 0.7 + intensity*0.5
		p.DetailGain = 0.7 + intensity*0.5
		p.ContrastFactor = 1.1 + intensity*0.3
		p.SaturationFactor = 1.1 + intensity*0.2
	}
	return p
}

// artifactKind buckets classifier labels into parameter biases.
type artifactKind string

const (
	kindManuscript artifactKind = "manuscript"
	kindPottery    artifactKind = "pottery"
	kindStone      artifactKind = "stone"
	kindMetal      artifactKind = "metal"
	kindTextile    artifactKind = "textile"
	kindGeneric    artifactKind = "generic"
)

var labelKinds = map[string]artifactKind{
	"manuscript": kindManuscript,
	"papyrus":    kindManuscript,
	"scroll":     kindManuscript,
	"codex":      kindManuscript,
	"pottery":    kindPottery,
	"ceramic":    kindPottery,
	"amphora":    kindPottery,
	"vase":       kindPottery,
	"porcelain":  kindPottery,
	"stone":      kindStone,
	"relief":     kindStone,
	"sculpture":  kindStone,
	"statue":     kindStone,
	"inscription": kindStone,
	"metal":  kindMetal,
	"bronze": kindMetal,
	"coin":   kindMetal,
	"jewelry": kindMetal,
	"textile":  kindTextile,
	"tapestry": kindTextile,
	"silk":     kindTextile,
}

func classify(label string) artifactKind {
	if kind, ok := labelKinds[label]; ok {
		return kind
	}
	return kindGeneric
}

func applyArtifactBias(p *Profile, kind artifactKind) {
	switch kind {
	case kindManuscript:
		// Faded ink on low-contrast media: aggressive denoise, gentle
		// sharpening so strokes do not ring.
		p.DenoiseStrength *= 1.4
		p.SharpenAmount *= 0.8
		p.FadeCorrection *= 1.3
	case kindPottery:
		// Cracks and chips dominate: strong structural repair.
		p.InpaintStrength *= 1.4
		p.DamageVarianceMax *= 1.3
		p.ContrastFactor = 1 + (p.ContrastFactor-1)*0.8
	case kindStone:
		p.DetailGain *= 1.3
		p.SharpenAmount *= 1.2
	case kindMetal:
		p.ContrastFactor = 1 + (p.ContrastFactor-1)*1.4
		p.SaturationFactor = 1 + (p.SaturationFactor-1)*0.6
	case kindTextile:
		p.DenoiseStrength *= 0.7
		p.SharpenAmount *= 0.7
		p.InpaintStrength *= 1.1
	case kindGeneric:
		// Balanced defaults stand.
	}
	if p.DenoiseStrength > 1 {
		p.DenoiseStrength = 1
	}
	if p.InpaintStrength > 1 {
		p.InpaintStrength = 1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
