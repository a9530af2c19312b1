package profiles

import (
	"strings"
	"testing"
)

func TestTierForIntensity(t *testing.T) {
	tests := []struct {
		intensity float64
		want      Tier
	}{
		{0.1, TierFast},
		{0.29, TierFast},
		{0.3, TierBalanced},
		{0.59, TierBalanced},
		{0.6, TierQuality},
		{0.84, TierQuality},
		{0.85, TierUltra},
		{1.0, TierUltra},
	}
	for _, tt := range tests {
		if got := TierForIntensity(tt.intensity); got != tt.want {
			t.Errorf("TierForIntensity(%v) = %q, want %q", tt.intensity, got, tt.want)
		}
	}
}

func TestParseTier(t *testing.T) {
	if tier, ok := ParseTier("quality"); !ok || tier != TierQuality {
		t.Errorf("ParseTier(quality) = %q, %v", tier, ok)
	}
	if _, ok := ParseTier("turbo"); ok {
		t.Error("ParseTier accepted an unknown hint")
	}
}

func TestSelectLabelBuckets(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"manuscript", "manuscript"},
		{"papyrus", "manuscript"},
		{"amphora", "pottery"},
		{"porcelain", "pottery"},
		{"relief", "stone"},
		{"inscription", "stone"},
		{"coin", "metal"},
		{"tapestry", "textile"},
		{"spaceship", "generic"},
		{"", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p := Select(tt.label, 0.8, "", 0.5)
			if !strings.HasPrefix(p.Name, tt.want+"/") {
				t.Errorf("Select(%q).Name = %q, want prefix %q", tt.label, p.Name, tt.want+"/")
			}
		})
	}
}

func TestSelectConfidenceClamped(t *testing.T) {
	low := Select("pottery", -3, "", 0.7)
	zero := Select("pottery", 0, "", 0.7)
	if low.InpaintStrength != zero.InpaintStrength {
		t.Errorf("confidence below 0 not clamped: %v != %v", low.InpaintStrength, zero.InpaintStrength)
	}

	high := Select("pottery", 42, "", 0.7)
	one := Select("pottery", 1, "", 0.7)
	if high.InpaintStrength != one.InpaintStrength {
		t.Errorf("confidence above 1 not clamped: %v != %v", high.InpaintStrength, one.InpaintStrength)
	}
}

func TestSelectConfidenceScalesRepair(t *testing.T) {
	unsure := Select("pottery", 0, "", 0.5)
	sure := Select("pottery", 1, "", 0.5)
	if unsure.InpaintStrength >= sure.InpaintStrength {
		t.Errorf("InpaintStrength at confidence 0 (%v) should be below confidence 1 (%v)",
			unsure.InpaintStrength, sure.InpaintStrength)
	}
	if unsure.FadeCorrection >= sure.FadeCorrection {
		t.Errorf("FadeCorrection at confidence 0 (%v) should be below confidence 1 (%v)",
			unsure.FadeCorrection, sure.FadeCorrection)
	}
}

func TestSelectHintOverridesIntensity(t *testing.T) {
	p := Select("", 0, "fast", 0.95)
	if p.Tier != TierFast {
		t.Errorf("explicit hint ignored, tier = %q", p.Tier)
	}
	p = Select("", 0, "nonsense", 0.95)
	if p.Tier != TierUltra {
		t.Errorf("unknown hint should fall back to intensity, tier = %q", p.Tier)
	}
}

func TestSelectDefaultIntensity(t *testing.T) {
	p := Select("", 0, "", 0)
	if p.Intensity != DefaultIntensity {
		t.Errorf("Intensity = %v, want default %v", p.Intensity, DefaultIntensity)
	}
	p = Select("", 0, "", 7)
	if p.Intensity != 1 {
		t.Errorf("Intensity above 1 not clamped: %v", p.Intensity)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	a := Select("bronze", 0.63, "quality", 0.8)
	b := Select("bronze", 0.63, "quality", 0.8)
	if a != b {
		t.Errorf("Select is not deterministic: %+v != %+v", a, b)
	}
}

func TestSelectBoundsStrengths(t *testing.T) {
	for _, label := range []string{"manuscript", "pottery", "textile", ""} {
		p := Select(label, 1, "ultra", 1)
		if p.DenoiseStrength > 1 {
			t.Errorf("%s DenoiseStrength = %v, want <= 1", label, p.DenoiseStrength)
		}
		if p.InpaintStrength > 1 {
			t.Errorf("%s InpaintStrength = %v, want <= 1", label, p.InpaintStrength)
		}
	}
}

func TestIdentityProfileIsNeutral(t *testing.T) {
	p := Identity()
	if p.DenoiseStrength != 0 || p.DetailGain != 0 || p.SharpenAmount != 0 ||
		p.WhiteBalance != 0 || p.FadeCorrection != 0 || p.InpaintStrength != 0 {
		t.Errorf("identity profile has active stage parameters: %+v", p)
	}
	if p.ScaleFactor != 1 || p.SaturationFactor != 1 || p.ContrastFactor != 1 {
		t.Errorf("identity profile has non-neutral factors: %+v", p)
	}
}
