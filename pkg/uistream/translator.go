package uistream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/uistream/pkg/conversation"
	"github.com/papercomputeco/uistream/pkg/llm"
	"github.com/papercomputeco/uistream/pkg/tools"
)

const (
	// DefaultMaxFollowUps is the number of model calls allowed after the
	// first one.
	DefaultMaxFollowUps = 3
	// DefaultPaceDelay spaces out consecutive frames.
	DefaultPaceDelay = 10 * time.Millisecond
	// DefaultRequestTimeout bounds a single model call.
	DefaultRequestTimeout = 2 * time.Minute
)

// Option configures a Translator.
type Option func(*Translator)

// WithMaxFollowUps caps the model calls made after tool results. Tools are
// not offered on the last permitted call.
func WithMaxFollowUps(n int) Option {
	return func(t *Translator) {
		if n >= 0 {
			t.maxFollowUps = n
		}
	}
}

// WithPaceDelay sets the delay between consecutive frames. Zero disables
// pacing.
func WithPaceDelay(d time.Duration) Option {
	return func(t *Translator) {
		t.paceDelay = d
	}
}

// WithRequestTimeout bounds each model call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(t *Translator) {
		t.requestTimeout = d
	}
}

// WithTemperature sets the sampling temperature sent to the model.
func WithTemperature(temp float64) Option {
	return func(t *Translator) {
		t.temperature = &temp
	}
}

// WithLogger sets the translator logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = l
	}
}

// Translator drives one model conversation per Run and writes the resulting
// frame sequence to a Sink. A Translator holds no per-run state and may be
// shared between requests.
type Translator struct {
	model    llm.Model
	executor *tools.Executor
	logger   *slog.Logger

	maxFollowUps   int
	paceDelay      time.Duration
	requestTimeout time.Duration
	temperature    *float64
}

// New creates a Translator. executor may be nil, in which case no tools are
// offered.
func New(model llm.Model, executor *tools.Executor, opts ...Option) *Translator {
	t := &Translator{
		model:          model,
		executor:       executor,
		logger:         slog.New(slog.DiscardHandler),
		maxFollowUps:   DefaultMaxFollowUps,
		paceDelay:      DefaultPaceDelay,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ToolResult is one executed tool call of a run.
type ToolResult struct {
	Call   llm.ToolCall
	Input  map[string]any
	Output tools.Output
}

// Result summarizes a run.
type Result struct {
	MessageID string
	Model     string
	Steps     int
	ToolCalls []ToolResult
	// Text is the answer of the final round. Text streamed alongside tool
	// calls is recorded in the conversation instead.
	Text         string
	FinishReason string
	Usage        *llm.Usage
	Err          error
}

// Run streams the model's answer to conv into sink, executing tool calls and
// following up until the model stops or the follow-up cap is reached. Tool
// results are appended to conv.
//
// A failure of the model call emits a single error frame and is returned. A
// sink failure ends the run without further writes.
func (t *Translator) Run(ctx context.Context, conv *conversation.Conversation, modelID string, sink Sink) (*Result, error) {
	r := &run{
		t:         t,
		conv:      conv,
		modelID:   modelID,
		sink:      Paced(sink, t.paceDelay),
		reasoning: llm.IsReasoningModel(modelID),
		logger:    t.logger.With("model", modelID),
		result: &Result{
			MessageID: "msg-" + uuid.NewString(),
			Model:     modelID,
		},
	}

	err := r.loop(ctx)
	if err != nil {
		r.result.Err = err
		var se *sinkError
		if !errors.As(err, &se) {
			r.state = stateFailed
			r.logger.Error("stream failed", "message_id", r.result.MessageID, "error", err)
			if sendErr := r.sink.Send(ctx, Error{ErrorText: err.Error()}); sendErr != nil {
				r.logger.Debug("could not deliver error frame", "error", sendErr)
			}
		}
		return r.result, err
	}

	return r.result, nil
}

type state int

const (
	stateIdle state = iota
	stateStreaming
	stateToolPhase
	stateFollowingUp
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateStreaming:
		return "streaming"
	case stateToolPhase:
		return "tool-phase"
	case stateFollowingUp:
		return "following-up"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// sinkError marks a failed write to the client.
type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return "writing frame: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

// pendingToolCall tracks a tool call from its incremental events.
type pendingToolCall struct {
	id        string
	name      string
	args      strings.Builder
	completed bool
}

// run is the state of one Translator.Run.
type run struct {
	t         *Translator
	conv      *conversation.Conversation
	modelID   string
	sink      Sink
	reasoning bool
	logger    *slog.Logger
	result    *Result

	state          state
	round          int
	roundText      string
	textBlocks     int
	reasoningBlock int
}

func (r *run) send(ctx context.Context, f Frame) error {
	if err := r.sink.Send(ctx, f); err != nil {
		return &sinkError{err: err}
	}
	return nil
}

func (r *run) loop(ctx context.Context) error {
	for {
		calls, err := r.stream(ctx)
		if err != nil {
			return err
		}

		if len(calls) == 0 {
			break
		}

		r.state = stateToolPhase
		results, err := r.runTools(ctx, calls)
		if err != nil {
			return err
		}

		r.state = stateFollowingUp
		r.conv.AddAssistantMessage(r.roundText, calls...)
		for _, res := range results {
			r.conv.AddToolResponse(res.Call.ID, res.Output.Content())
		}

		if err := r.send(ctx, FinishStep{}); err != nil {
			return err
		}
		if err := r.send(ctx, StartStep{}); err != nil {
			return err
		}
		r.result.Steps++
		r.round++
	}

	r.state = stateDone
	if err := r.send(ctx, FinishStep{}); err != nil {
		return err
	}
	if err := r.send(ctx, Finish{}); err != nil {
		return err
	}
	if err := r.sink.Done(ctx); err != nil {
		return &sinkError{err: err}
	}
	return nil
}

// begin emits the opening frames on the first event of the run.
func (r *run) begin(ctx context.Context) error {
	if r.state != stateIdle {
		r.state = stateStreaming
		return nil
	}

	r.state = stateStreaming
	if err := r.send(ctx, Start{MessageID: r.result.MessageID}); err != nil {
		return err
	}
	if err := r.send(ctx, StartStep{}); err != nil {
		return err
	}
	r.result.Steps++
	return nil
}

func (r *run) offerTools() bool {
	return r.t.executor != nil && r.round < r.t.maxFollowUps
}

func (r *run) request() *llm.Request {
	req := &llm.Request{
		Model:       r.modelID,
		Messages:    r.conv.Messages(),
		Temperature: r.t.temperature,
	}
	if r.offerTools() {
		for _, spec := range r.t.executor.Registry().Specs() {
			req.Tools = append(req.Tools, llm.ToolSpec{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			})
		}
	}
	return req
}

// stream performs one model call and returns the tool calls to execute.
func (r *run) stream(ctx context.Context) ([]llm.ToolCall, error) {
	callCtx := ctx
	if r.t.requestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.t.requestTimeout)
		defer cancel()
	}

	req := r.request()
	r.logger.Debug("calling model",
		"state", r.state,
		"round", r.round,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
	)

	stream, err := r.t.model.Stream(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}
	defer stream.Close()

	var (
		text          strings.Builder
		pending       = make(map[string]*pendingToolCall)
		order         []string
		reasoningOpen bool
		reasoningID   string
	)

	closeReasoning := func() error {
		if !reasoningOpen {
			return nil
		}
		reasoningOpen = false
		return r.send(ctx, ReasoningEnd{ID: reasoningID})
	}

events:
	for {
		ev, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading model stream: %w", err)
		}

		if r.state == stateIdle || r.state == stateFollowingUp {
			if err := r.begin(ctx); err != nil {
				return nil, err
			}
		}

		if _, ok := ev.(llm.ReasoningDelta); !ok {
			if err := closeReasoning(); err != nil {
				return nil, err
			}
		}

		switch e := ev.(type) {
		case llm.TextDelta:
			text.WriteString(e.Content)

		case llm.ReasoningDelta:
			if !r.reasoning || e.Content == "" {
				continue
			}
			if !reasoningOpen {
				reasoningOpen = true
				reasoningID = fmt.Sprintf("reasoning-%d", r.reasoningBlock)
				r.reasoningBlock++
				if err := r.send(ctx, ReasoningStart{ID: reasoningID}); err != nil {
					return nil, err
				}
			}
			if err := r.send(ctx, ReasoningDelta{ID: reasoningID, Delta: e.Content}); err != nil {
				return nil, err
			}

		case llm.ToolCallStart:
			if _, ok := pending[e.ID]; !ok {
				pending[e.ID] = &pendingToolCall{id: e.ID, name: e.Name}
				order = append(order, e.ID)
			}

		case llm.ToolCallDelta:
			call, ok := pending[e.ID]
			if !ok {
				r.logger.Warn("argument fragment for unannounced tool call", "tool_call_id", e.ID)
				continue
			}
			call.args.WriteString(e.ArgsFragment)

		case llm.ToolCallComplete:
			call, ok := pending[e.ID]
			if !ok {
				call = &pendingToolCall{id: e.ID, name: e.Name}
				pending[e.ID] = call
				order = append(order, e.ID)
			}
			call.args.Reset()
			call.args.WriteString(e.Arguments)
			call.completed = true

		case llm.ResponseComplete:
			r.result.FinishReason = e.FinishReason
			if e.Usage != nil {
				if r.result.Usage == nil {
					r.result.Usage = &llm.Usage{}
				}
				r.result.Usage.Add(e.Usage)
			}
			break events
		}
	}

	// A stream that produced no events still opens the message.
	if r.state == stateIdle || r.state == stateFollowingUp {
		if err := r.begin(ctx); err != nil {
			return nil, err
		}
	}

	if err := closeReasoning(); err != nil {
		return nil, err
	}

	calls := r.resolveToolCalls(stream.ToolCalls(), pending, order)
	if len(calls) > 0 && !r.offerTools() {
		r.logger.Warn("ignoring tool calls past the follow-up limit",
			"round", r.round,
			"tool_calls", len(calls),
		)
		calls = nil
	}

	r.roundText = text.String()
	r.result.Text = r.roundText

	if text.Len() > 0 || len(calls) == 0 {
		id := fmt.Sprintf("text-%d", r.textBlocks)
		r.textBlocks++
		for _, f := range []Frame{
			TextStart{ID: id},
			TextDelta{ID: id, Delta: text.String()},
			TextEnd{ID: id},
		} {
			if err := r.send(ctx, f); err != nil {
				return nil, err
			}
		}
	}

	return calls, nil
}

// resolveToolCalls prefers the calls of the structured response and falls
// back to the completed incremental records.
func (r *run) resolveToolCalls(authoritative []llm.ToolCall, pending map[string]*pendingToolCall, order []string) []llm.ToolCall {
	calls := make([]llm.ToolCall, 0, len(authoritative))
	for _, c := range authoritative {
		if c.Name == "" {
			r.logger.Warn("dropping tool call without a name", "tool_call_id", c.ID)
			continue
		}
		calls = append(calls, c)
	}
	if len(calls) > 0 {
		return calls
	}

	for _, id := range order {
		p := pending[id]
		if !p.completed {
			continue
		}
		if p.name == "" {
			r.logger.Warn("dropping tool call without a name", "tool_call_id", p.id)
			continue
		}
		calls = append(calls, llm.ToolCall{ID: p.id, Name: p.name, Arguments: p.args.String()})
	}
	return calls
}

func (r *run) runTools(ctx context.Context, calls []llm.ToolCall) ([]ToolResult, error) {
	results := make([]ToolResult, 0, len(calls))

	for _, call := range calls {
		serialized := call.Arguments
		if strings.TrimSpace(serialized) == "" {
			serialized = "{}"
		}

		input := map[string]any{}
		if err := json.Unmarshal([]byte(serialized), &input); err != nil || input == nil {
			r.logger.Warn("could not parse tool arguments",
				"tool", call.Name,
				"tool_call_id", call.ID,
				"error", err,
			)
			input = map[string]any{}
		}

		if err := r.send(ctx, ToolInputStart{ToolCallID: call.ID, ToolName: call.Name}); err != nil {
			return nil, err
		}
		for _, ch := range serialized {
			if err := r.send(ctx, ToolInputDelta{ToolCallID: call.ID, InputTextDelta: string(ch)}); err != nil {
				return nil, err
			}
		}
		if err := r.send(ctx, ToolInputAvailable{ToolCallID: call.ID, ToolName: call.Name, Input: input}); err != nil {
			return nil, err
		}

		out, err := r.t.executor.Execute(ctx, tools.Call{ID: call.ID, Name: call.Name, Args: input}, func(o tools.Output) error {
			return r.send(ctx, ToolOutputAvailable{
				ToolCallID:  call.ID,
				Output:      o.Payload,
				Preliminary: o.Preliminary,
			})
		})
		if err != nil {
			return nil, err
		}

		res := ToolResult{Call: call, Input: input, Output: out}
		results = append(results, res)
		r.result.ToolCalls = append(r.result.ToolCalls, res)
	}

	return results, nil
}
