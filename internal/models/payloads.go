package models

import (
	"encoding/json"
	"os"
)

// ErrorKey is the reserved output key that marks a failed invocation.
// The orchestrator inspects the output file for this key to distinguish
// a script failure from a successful result.
const ErrorKey = "__error"

// Result is the JSON object payload exchanged through the output file.
// No schema is enforced beyond "object with string keys".
type Result map[string]any

// NewError builds the structured error payload for a failed invocation.
func NewError(message string) Result {
	return Result{ErrorKey: message}
}

// IsError reports whether the result carries the failure sentinel.
func (r Result) IsError() bool {
	_, ok := r[ErrorKey]
	return ok
}

// ErrorMessage returns the diagnostic string of a failed result, or ""
// for a successful one.
func (r Result) ErrorMessage() string {
	if msg, ok := r[ErrorKey].(string); ok {
		return msg
	}
	return ""
}

// WriteFile serializes the result as UTF-8 JSON to path.
func (r Result) WriteFile(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile parses an output file produced by the runner.
func ReadFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}
