package commands

import (
	"fmt"
	"time"

	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
)

// Result represents the outcome of one lifecycle operation
type Result struct {
	Operation plugindomain.Operation `json:"operation"`
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Duration  time.Duration          `json:"duration"`
}

// NewSuccessResult creates a successful result
func NewSuccessResult(op plugindomain.Operation, message string) *Result {
	return &Result{
		Operation: op,
		Success:   true,
		Message:   message,
	}
}

// NewErrorResult creates a failed result carrying err's message
func NewErrorResult(op plugindomain.Operation, err error) *Result {
	return &Result{
		Operation: op,
		Success:   false,
		Message:   err.Error(),
	}
}

// String renders the result for logs and terminal output
func (r *Result) String() string {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	return fmt.Sprintf("%s %s: %s (%s)", r.Operation, status, r.Message, r.Duration.Round(time.Millisecond))
}
