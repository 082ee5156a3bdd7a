package tools

import (
	"errors"
	"fmt"
)

// ErrTimeout is the cause of an ExecutionError when a tool exceeds its
// timeout.
var ErrTimeout = errors.New("tool execution timeout")

// UnknownToolError is returned for calls naming a tool that is not
// registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %q", e.Name)
}

// ExecutionError wraps any failure of a registered tool: invalid arguments,
// an error returned by the tool, a timeout, or a recovered panic.
type ExecutionError struct {
	Tool  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
