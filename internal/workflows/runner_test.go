package workflows

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/heri-science/artifact-pipeline/internal/quality"
	"github.com/heri-science/artifact-pipeline/internal/raster"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// texturedImage builds a deterministic mid-gray texture and returns both
// the raw buffer and its PNG encoding.
func texturedImage(t *testing.T, w, h int) (*raster.Buffer, []byte) {
	t.Helper()
	buf, err := raster.NewBuffer(w, h, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(96 + (x*31+y*17)%64)
			buf.SetRGB(x, y, color.NRGBA{R: v, G: v, B: v})
		}
	}
	data, err := raster.Encode(buf, "png", 0)
	if err != nil {
		t.Fatal(err)
	}
	return buf, data
}

func TestProcessUnknownMode(t *testing.T) {
	r := NewRunner(DefaultConfig(), quietLogger())
	_, png := texturedImage(t, 16, 16)

	result, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData: png,
		Mode:      pipeline.Mode("colorize"),
	})
	if result != nil {
		t.Error("unknown mode returned a partial result")
	}
	if !errors.Is(err, pipeline.ErrUnknownMode) {
		t.Errorf("Process() error = %v, want ErrUnknownMode", err)
	}
}

func TestProcessCorruptInput(t *testing.T) {
	r := NewRunner(DefaultConfig(), quietLogger())

	result, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData: []byte("these bytes are not an image"),
		Mode:      pipeline.ModeSuperResolution,
	})
	if result != nil {
		t.Error("corrupt input returned a partial result")
	}
	if !errors.Is(err, pipeline.ErrDecode) {
		t.Errorf("Process() error = %v, want ErrDecode", err)
	}
}

func TestProcessInputSizeLimit(t *testing.T) {
	r := NewRunner(Config{MaxInputDim: 32, MaxOutputDim: 16384}, quietLogger())
	_, png := texturedImage(t, 64, 64)

	_, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData: png,
		Mode:      pipeline.ModeSuperResolution,
	})
	if !errors.Is(err, pipeline.ErrSizeLimit) {
		t.Errorf("Process() error = %v, want ErrSizeLimit", err)
	}
}

func TestProcessOutputSizeLimit(t *testing.T) {
	r := NewRunner(Config{MaxInputDim: 8192, MaxOutputDim: 100}, quietLogger())
	_, png := texturedImage(t, 64, 64)

	result, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData: png,
		Mode:      pipeline.ModeSuperResolution,
	})
	if result != nil {
		t.Error("oversized scale request returned a partial result")
	}
	if !errors.Is(err, pipeline.ErrSizeLimit) {
		t.Errorf("Process() error = %v, want ErrSizeLimit", err)
	}
}

func TestProcessCancellation(t *testing.T) {
	r := NewRunner(DefaultConfig(), quietLogger())
	_, png := texturedImage(t, 64, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Process(ctx, pipeline.ProcessRequest{
		ImageData: png,
		Mode:      pipeline.ModeRestoration,
	})
	if result != nil {
		t.Error("canceled run returned a partial result")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

func TestSuperResolutionDoublesDimensions(t *testing.T) {
	r := NewRunner(DefaultConfig(), quietLogger())
	src, png := texturedImage(t, 128, 128)

	result, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData:    png,
		Mode:         pipeline.ModeSuperResolution,
		OutputFormat: "png",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	report := result.Report
	if report.RunID == "" {
		t.Error("report has no run ID")
	}
	if report.InputWidth != 128 || report.InputHeight != 128 {
		t.Errorf("report input %dx%d, want 128x128", report.InputWidth, report.InputHeight)
	}
	if report.OutputWidth != 256 || report.OutputHeight != 256 {
		t.Errorf("report output %dx%d, want exactly 256x256", report.OutputWidth, report.OutputHeight)
	}
	if len(report.Stages) != 6 {
		t.Fatalf("report has %d stages, want 6", len(report.Stages))
	}
	for _, sr := range report.Stages {
		if sr.Duration < 0 {
			t.Errorf("stage %s has negative duration", sr.Stage)
		}
		if sr.Fault {
			t.Errorf("stage %s unexpectedly faulted: %s", sr.Stage, sr.FaultReason)
		}
	}
	if report.TotalDuration <= 0 {
		t.Error("report has no total duration")
	}

	out, err := raster.Decode(result.ImageData, 0)
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if out.Width() != 256 || out.Height() != 256 {
		t.Fatalf("output %dx%d, want exactly 256x256", out.Width(), out.Height())
	}

	// The enhanced output must keep at least as much edge structure as a
	// naive bilinear resize of the same input.
	naive := raster.FromNRGBAShaped(
		imaging.Resize(src.ToNRGBA(), 256, 256, imaging.Linear), src.Channels())
	if got, want := quality.EdgeDensity(out), quality.EdgeDensity(naive); got < want {
		t.Errorf("edge density %v below bilinear baseline %v", got, want)
	}
}

func TestRestorationRepairsDamagedPatch(t *testing.T) {
	src, _ := texturedImage(t, 128, 128)
	patch := image.Rect(52, 52, 76, 76)
	for y := patch.Min.Y; y < patch.Max.Y; y++ {
		for x := patch.Min.X; x < patch.Max.X; x++ {
			src.SetRGB(x, y, color.NRGBA{R: 235, G: 235, B: 235})
		}
	}
	png, err := raster.Encode(src, "png", 0)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(DefaultConfig(), quietLogger())
	result, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData:    png,
		Mode:         pipeline.ModeRestoration,
		ArtifactType: "pottery",
		Confidence:   1,
		Intensity:    0.9,
		OutputFormat: "png",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	report := result.Report
	if len(report.Stages) != 8 {
		t.Fatalf("report has %d stages, want 8", len(report.Stages))
	}
	if report.OutputWidth != 128 || report.OutputHeight != 128 {
		t.Errorf("restoration changed dimensions to %dx%d", report.OutputWidth, report.OutputHeight)
	}

	out, err := raster.Decode(result.ImageData, 0)
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !out.SameShape(src) {
		t.Fatalf("output shape %dx%d differs from input", out.Width(), out.Height())
	}

	// The filled patch must sit tonally closer to its surroundings than
	// the bright damage plate did.
	neighborhood := image.Rect(20, 20, 48, 48)
	inDist := math.Abs(regionMean(src, patch) - regionMean(src, neighborhood))
	outDist := math.Abs(regionMean(out, patch) - regionMean(out, neighborhood))
	if outDist >= inDist {
		t.Errorf("patch mean distance did not improve: input %v, output %v", inDist, outDist)
	}
}

func regionMean(b *raster.Buffer, rect image.Rectangle) float64 {
	sum, n := 0.0, 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			sum += b.Luminance(x, y)
			n++
		}
	}
	return sum / float64(n)
}

func TestFaultingStageIsSubstitutedNotFatal(t *testing.T) {
	// An all-black plate makes the gray-world gains degenerate; the run
	// must complete with an identity-substituted color stage on record.
	black, err := raster.NewBuffer(64, 64, 3)
	if err != nil {
		t.Fatal(err)
	}
	png, err := raster.Encode(black, "png", 0)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(DefaultConfig(), quietLogger())
	result, err := r.Process(context.Background(), pipeline.ProcessRequest{
		ImageData:    png,
		Mode:         pipeline.ModeSuperResolution,
		OutputFormat: "png",
	})
	if err != nil {
		t.Fatalf("Process() error = %v, want fault substitution", err)
	}

	var faulted *pipeline.StageResult
	for i := range result.Report.Stages {
		if result.Report.Stages[i].Fault {
			faulted = &result.Report.Stages[i]
		}
	}
	if faulted == nil {
		t.Fatal("no stage recorded a fault")
	}
	if faulted.Stage != "color_correction" {
		t.Errorf("faulted stage = %q, want color_correction", faulted.Stage)
	}
	if faulted.FaultReason == "" {
		t.Error("fault recorded without a reason")
	}

	out, err := raster.Decode(result.ImageData, 0)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width() != 128 || out.Height() != 128 {
		t.Errorf("faulted run output %dx%d, want 128x128", out.Width(), out.Height())
	}
}

func TestPipelineStageOrder(t *testing.T) {
	sr := NewSuperResolution(0)
	wantSR := []string{"pre_denoise", "upscale", "detail_synthesis", "sharpen", "color_correction", "final_quality"}
	if len(sr.Stages) != len(wantSR) {
		t.Fatalf("super-resolution has %d stages, want %d", len(sr.Stages), len(wantSR))
	}
	for i, st := range sr.Stages {
		if st.Name() != wantSR[i] {
			t.Errorf("super-resolution stage %d = %q, want %q", i, st.Name(), wantSR[i])
		}
	}

	rest := NewRestoration()
	wantRest := []string{"damage_map", "noise_removal", "inpaint", "fade_correction",
		"contrast_restoration", "detail_resharpen", "final_polish", "quality_check"}
	if len(rest.Stages) != len(wantRest) {
		t.Fatalf("restoration has %d stages, want %d", len(rest.Stages), len(wantRest))
	}
	for i, st := range rest.Stages {
		if st.Name() != wantRest[i] {
			t.Errorf("restoration stage %d = %q, want %q", i, st.Name(), wantRest[i])
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateDecoding, "decoding"},
		{StateRunning, "running"},
		{StateEncoding, "encoding"},
		{StateDone, "done"},
		{StateError, "error"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
