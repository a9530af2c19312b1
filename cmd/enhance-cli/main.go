// enhance-cli runs a single image through an enhancement pipeline without
// the HTTP surface: read a file, process, write the result, print the
// report as JSON.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/heri-science/artifact-pipeline/internal/workflows"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

func main() {
	var (
		inPath       = flag.String("in", "", "input image file (jpeg/png)")
		outPath      = flag.String("out", "enhanced.jpg", "output image file")
		mode         = flag.String("mode", "super-resolution", "pipeline mode: super-resolution or restoration")
		intensity    = flag.Float64("intensity", 0.75, "enhancement intensity 0..1")
		profileHint  = flag.String("profile", "", "processing tier: fast, balanced, quality, ultra")
		artifactType = flag.String("type", "", "artifact type label from the classifier")
		confidence   = flag.Float64("confidence", 0, "classifier confidence 0..1")
		format       = flag.String("format", "", "output format: jpeg or png (default: jpeg)")
		verbose      = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	if *inPath == "" {
		logger.Fatal("--in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to read input")
	}

	runner := workflows.NewRunner(workflows.DefaultConfig(), logger)
	result, err := runner.Process(context.Background(), pipeline.ProcessRequest{
		ImageData:    data,
		Mode:         pipeline.Mode(*mode),
		Intensity:    *intensity,
		ProfileHint:  *profileHint,
		ArtifactType: *artifactType,
		Confidence:   *confidence,
		OutputFormat: *format,
	})
	if err != nil {
		logger.WithError(err).Fatal("processing failed")
	}

	if err := os.WriteFile(*outPath, result.ImageData, 0644); err != nil {
		logger.WithError(err).Fatal("failed to write output")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Report); err != nil {
		logger.WithError(err).Fatal("failed to print report")
	}
}
