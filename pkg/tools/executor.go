package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Output statuses.
const (
	StatusLoading = "loading"
	StatusSuccess = "success"
	StatusError   = "error"
)

const defaultTimeout = 30 * time.Second

// Call is a single tool invocation with parsed arguments.
type Call struct {
	ID   string
	Name string
	Args map[string]any
}

// Output is one tool output. Preliminary outputs report progress and are
// followed by exactly one terminal output.
type Output struct {
	Preliminary bool
	Payload     map[string]any
}

// Status returns the payload status.
func (o Output) Status() string {
	s, _ := o.Payload["status"].(string)
	return s
}

// Content returns the text handed back to the model as the tool result.
func (o Output) Content() string {
	var v any
	switch o.Status() {
	case StatusSuccess:
		v = o.Payload["result"]
	case StatusError:
		v = map[string]any{"error": o.Payload["error"]}
	default:
		v = o.Payload
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout bounds each tool call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithLogger sets the executor logger.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// Executor runs tool calls against a Registry.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		timeout:  defaultTimeout,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the executor's registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs call, passing a preliminary loading output and then the
// terminal output to emit. Tool failures are reported in the terminal output,
// not as an error; the returned error is only ever emit's.
func (e *Executor) Execute(ctx context.Context, call Call, emit func(Output) error) (Output, error) {
	tool, ok := e.registry.Lookup(call.Name)
	if !ok {
		err := &UnknownToolError{Name: call.Name}
		e.logger.Warn("model requested unknown tool", "tool", call.Name, "tool_call_id", call.ID)
		out := errorOutput(err)
		return out, emit(out)
	}

	if err := emit(loadingOutput(tool, call)); err != nil {
		return Output{}, err
	}

	start := time.Now()
	result, err := e.run(ctx, tool, call)

	var out Output
	if err != nil {
		e.logger.Warn("tool call failed",
			"tool", call.Name,
			"tool_call_id", call.ID,
			"duration", time.Since(start),
			"error", err,
		)
		out = errorOutput(err)
	} else {
		e.logger.Debug("tool call succeeded",
			"tool", call.Name,
			"tool_call_id", call.ID,
			"duration", time.Since(start),
		)
		out = Output{Payload: map[string]any{
			"status": StatusSuccess,
			"text":   successText(call.Name, result),
			"result": result,
		}}
	}

	return out, emit(out)
}

type callResult struct {
	value any
	err   error
}

func (e *Executor) run(ctx context.Context, tool Tool, call Call) (any, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := tool.Call(ctx, call.Args)
		done <- callResult{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, &ExecutionError{Tool: call.Name, Cause: timeoutCause(ctx, r.err)}
		}
		return r.value, nil
	case <-ctx.Done():
		return nil, &ExecutionError{Tool: call.Name, Cause: timeoutCause(ctx, ctx.Err())}
	}
}

// timeoutCause maps an expired deadline to ErrTimeout.
func timeoutCause(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

func loadingOutput(tool Tool, call Call) Output {
	text := ""
	if lr, ok := tool.(LoadingReporter); ok {
		text = lr.Loading(call.Args)
	}
	if text == "" {
		text = fmt.Sprintf("Running %s...", call.Name)
	}

	return Output{
		Preliminary: true,
		Payload: map[string]any{
			"status": StatusLoading,
			"text":   text,
		},
	}
}

func errorOutput(err error) Output {
	return Output{Payload: map[string]any{
		"status": StatusError,
		"error":  err.Error(),
	}}
}

// successText uses a result's own Summary when it has one.
func successText(name string, result any) string {
	if s, ok := result.(interface{ Summary() string }); ok {
		return s.Summary()
	}
	return fmt.Sprintf("%s completed", name)
}
