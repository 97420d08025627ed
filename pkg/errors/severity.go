// Package errors provides severity-aware error types.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StageError is a structured error raised by an analysis stage. Stage errors
// are never recovered inside the engine: they abort the run and propagate to
// the caller with full context.
type StageError struct {
	Stage       string   `json:"stage"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	ComponentID string   `json:"component_id,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *StageError) Error() string {
	if e.ComponentID != "" {
		return fmt.Sprintf("[%s] %s/%s: %s (component: %s)", e.Severity, e.Stage, e.Code, e.Message, e.ComponentID)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Stage, e.Code, e.Message)
}

// NewStageError builds a fatal, non-recoverable stage error.
func NewStageError(stage, code, message string) *StageError {
	return &StageError{
		Stage:    stage,
		Code:     code,
		Message:  message,
		Severity: SeverityFatal,
	}
}
