package errors

import "fmt"

// Error codes
const (
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeTranscription     = "TRANSCRIPTION_ERROR"
	CodeGeneration        = "GENERATION_ERROR"
	CodeResolution        = "RESOLUTION_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
	CodeCache             = "CACHE_ERROR"
	CodeStorage           = "STORAGE_ERROR"
)

type PipelineError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func NewPipelineError(message, code string, context map[string]any) *PipelineError {
	return &PipelineError{
		Message: message,
		Code:    code,
		Context: context,
	}
}

func (e *PipelineError) WithCause(cause error) *PipelineError {
	e.Cause = cause
	return e
}

// UnsupportedFormatError signals an image container that is neither JPEG nor PNG.
type UnsupportedFormatError struct {
	*PipelineError
	Path string
}

func NewUnsupportedFormatError(path, detected string) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		PipelineError: &PipelineError{
			Message: "unsupported image format",
			Code:    CodeUnsupportedFormat,
			Context: map[string]any{
				"path":     path,
				"detected": detected,
			},
		},
		Path: path,
	}
}

// TranscriptionError wraps a vision provider failure. Not retried inside the
// pipeline; the orchestrator normalizes it to an empty result.
type TranscriptionError struct {
	*PipelineError
}

func NewTranscriptionError(message string, cause error) *TranscriptionError {
	return &TranscriptionError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeTranscription,
			Cause:   cause,
		},
	}
}

// GenerationError wraps a text-generation provider failure.
type GenerationError struct {
	*PipelineError
}

func NewGenerationError(message string, cause error) *GenerationError {
	return &GenerationError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeGeneration,
			Cause:   cause,
		},
	}
}

// ResolutionError signals a failed reverse geocode or search call. A nearby
// search that returns zero candidates is a normal outcome, not an error.
type ResolutionError struct {
	*PipelineError
	Operation string
}

func NewResolutionError(message, operation string, cause error) *ResolutionError {
	return &ResolutionError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeResolution,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

type ValidationError struct {
	*PipelineError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*PipelineError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type StorageError struct {
	*PipelineError
	Operation string
}

func NewStorageError(message, operation string, cause error) *StorageError {
	return &StorageError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeStorage,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}
