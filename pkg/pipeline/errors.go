package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds a pipeline run can surface.
// A failed run returns one of these (wrapped in *ProcessError), never a
// partial result.
var (
	// ErrDecode indicates malformed or unsupported input bytes.
	ErrDecode = errors.New("image decode failed")

	// ErrSizeLimit indicates input or requested output dimensions exceed
	// the configured maxima.
	ErrSizeLimit = errors.New("image size limit exceeded")

	// ErrEncode indicates the target output format or quality is
	// unsupported.
	ErrEncode = errors.New("image encode failed")

	// ErrConsistency indicates an output invariant was violated, such as a
	// dimension mismatch after a dimension-preserving stage.
	ErrConsistency = errors.New("pipeline consistency violation")

	// ErrUnknownMode indicates the request named a pipeline that is not
	// registered.
	ErrUnknownMode = errors.New("unknown pipeline mode")
)

// ErrorKind identifies the taxonomy bucket of a ProcessError.
type ErrorKind string

const (
	KindDecode      ErrorKind = "decode"
	KindSizeLimit   ErrorKind = "size_limit"
	KindEncode      ErrorKind = "encode"
	KindConsistency ErrorKind = "consistency"
	KindUnknownMode ErrorKind = "unknown_mode"
)

// ProcessError is the typed failure returned by a pipeline run. It carries
// the taxonomy kind, the stage that failed (empty for decode/encode
// boundaries), and the underlying cause.
type ProcessError struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

func (e *ProcessError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s error in stage %q: %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Is lets errors.Is match a ProcessError against the kind sentinels.
func (e *ProcessError) Is(target error) bool {
	switch target {
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrSizeLimit:
		return e.Kind == KindSizeLimit
	case ErrEncode:
		return e.Kind == KindEncode
	case ErrConsistency:
		return e.Kind == KindConsistency
	case ErrUnknownMode:
		return e.Kind == KindUnknownMode
	}
	return false
}

// NewProcessError wraps err with a taxonomy kind and optional stage name.
func NewProcessError(kind ErrorKind, stage string, err error) *ProcessError {
	return &ProcessError{Kind: kind, Stage: stage, Err: err}
}
