// Package handlers implements the HTTP surface of the enhancement service.
// It owns request/response JSON shaping and base64 transport; the pipeline
// core behind it only ever sees raw image bytes.
package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/heri-science/artifact-pipeline/internal/storage"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// Processor runs one image through an enhancement pipeline.
type Processor interface {
	Process(ctx context.Context, req pipeline.ProcessRequest) (*pipeline.ProcessResult, error)
}

// ProcessHandler handles synchronous enhancement requests.
type ProcessHandler struct {
	processor Processor
	archive   *storage.Archive // nil disables archiving
	logger    *logrus.Logger
}

// NewProcessHandler creates a handler. archive may be nil.
func NewProcessHandler(processor Processor, archive *storage.Archive, logger *logrus.Logger) *ProcessHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProcessHandler{
		processor: processor,
		archive:   archive,
		logger:    logger,
	}
}

// processRequestBody is the wire shape of POST /v1/process.
type processRequestBody struct {
	// Image is a base64 payload, with or without a data-URI prefix.
	Image        string  `json:"image"`
	Mode         string  `json:"mode"`
	Intensity    float64 `json:"intensity,omitempty"`
	Profile      string  `json:"profile,omitempty"`
	ArtifactType string  `json:"artifact_type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	OutputFormat string  `json:"output_format,omitempty"`
}

// processResponseBody is the wire shape of a successful run.
type processResponseBody struct {
	Status         string                    `json:"status"`
	ProcessedImage string                    `json:"processed_image"`
	Report         pipeline.ProcessingReport `json:"report"`
	OriginalSize   string                    `json:"original_size"`
	ProcessedSize  string                    `json:"processed_size"`
	ArchivedAs     string                    `json:"archived_as,omitempty"`
}

type errorResponseBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HandleProcess handles POST /v1/process: decodes the transport envelope,
// runs the pipeline synchronously, and returns the encoded result with its
// processing report.
func (h *ProcessHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body processRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "", fmt.Sprintf("invalid request: %v", err))
		return
	}
	if body.Image == "" {
		writeError(w, http.StatusBadRequest, "", "image is required")
		return
	}

	mode := pipeline.Mode(body.Mode)
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, string(pipeline.KindUnknownMode),
			fmt.Sprintf("invalid mode: %q", body.Mode))
		return
	}

	imageData, err := decodeTransportImage(body.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(pipeline.KindDecode),
			fmt.Sprintf("invalid image payload: %v", err))
		return
	}

	result, err := h.processor.Process(r.Context(), pipeline.ProcessRequest{
		ImageData:    imageData,
		Mode:         mode,
		Intensity:    body.Intensity,
		ProfileHint:  body.Profile,
		ArtifactType: body.ArtifactType,
		Confidence:   body.Confidence,
		OutputFormat: body.OutputFormat,
	})
	if err != nil {
		status, kind := errorStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}

	resp := processResponseBody{
		Status:         "success",
		ProcessedImage: encodeTransportImage(result.ImageData, result.Format),
		Report:         result.Report,
		OriginalSize:   fmt.Sprintf("%dx%d", result.Report.InputWidth, result.Report.InputHeight),
		ProcessedSize:  fmt.Sprintf("%dx%d", result.Report.OutputWidth, result.Report.OutputHeight),
	}

	if h.archive != nil {
		name, err := h.archive.Put(result.Report.RunID, result.Format, result.ImageData)
		if err != nil {
			// Archiving is best effort; the result still goes back.
			h.logger.WithError(err).Warn("failed to archive processed image")
		} else {
			resp.ArchivedAs = name
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /health.
func (h *ProcessHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// decodeTransportImage strips an optional data-URI prefix and decodes the
// base64 payload.
func decodeTransportImage(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// encodeTransportImage wraps encoded bytes in a data URI.
func encodeTransportImage(data []byte, format string) string {
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}

// errorStatus maps the pipeline error taxonomy onto HTTP status codes.
func errorStatus(err error) (int, string) {
	var perr *pipeline.ProcessError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case pipeline.KindDecode, pipeline.KindUnknownMode, pipeline.KindEncode:
			return http.StatusBadRequest, string(perr.Kind)
		case pipeline.KindSizeLimit:
			return http.StatusRequestEntityTooLarge, string(perr.Kind)
		default:
			return http.StatusInternalServerError, string(perr.Kind)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, ""
	}
	return http.StatusInternalServerError, ""
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponseBody{Error: msg, Kind: kind})
}
