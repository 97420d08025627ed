package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStageErrorIsFatal(t *testing.T) {
	err := NewStageError("load", "source_unavailable", "connection refused")

	assert.Equal(t, SeverityFatal, err.Severity)
	assert.False(t, err.Recoverable)
	assert.Equal(t, "[fatal] load/source_unavailable: connection refused", err.Error())
}

func TestStageErrorIncludesComponent(t *testing.T) {
	err := &StageError{
		Stage:       "risk",
		Code:        "bad_record",
		Message:     "negative age",
		Severity:    SeverityWarning,
		ComponentID: "ERC-042",
	}
	assert.Equal(t, "[warning] risk/bad_record: negative age (component: ERC-042)", err.Error())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(99).String())
}
