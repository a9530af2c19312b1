package stages

import (
	"math"

	"github.com/heri-science/artifact-pipeline/internal/quality"
	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// QACheck closes the restoration pipeline. It compares output against
// input on global statistics (mean luminance, edge density); when either
// deviation exceeds the profile tolerance it flags the run as low
// confidence in the report. The check never fails the request and the
// buffer passes through unchanged.
type QACheck struct{}

func (s *QACheck) Name() string { return "quality_check" }

func (s *QACheck) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	if rc.Original != nil {
		lumaDelta := math.Abs(quality.MeanLuminance(in) - quality.MeanLuminance(rc.Original))
		edgeDelta := math.Abs(quality.EdgeDensity(in) - quality.EdgeDensity(rc.Original))

		flagged := 0.0
		if lumaDelta > rc.Profile.QALumaTolerance || edgeDelta > rc.Profile.QAEdgeTolerance {
			rc.LowConfidence = true
			flagged = 1
		}
		rc.RecordDiagnostic(s.Name(), flagged)
	}
	return in.Clone(), nil
}
