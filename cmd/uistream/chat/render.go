package chatcmder

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/papercomputeco/uistream/pkg/cliui"
	"github.com/papercomputeco/uistream/pkg/tools"
	"github.com/papercomputeco/uistream/pkg/uistream"
)

// renderer prints UI message stream frames to a terminal.
type renderer struct {
	out      io.Writer
	markdown bool

	text      strings.Builder
	reasoning bool
	toolNames map[string]string
	errText   string
}

func newRenderer(out io.Writer, markdown bool) *renderer {
	return &renderer{
		out:       out,
		markdown:  markdown,
		toolNames: make(map[string]string),
	}
}

// Handle renders one frame.
func (r *renderer) Handle(frame uistream.Frame) {
	switch f := frame.(type) {
	case uistream.TextDelta:
		r.endReasoning()
		r.text.WriteString(f.Delta)
		if !r.markdown {
			fmt.Fprint(r.out, f.Delta)
		}

	case uistream.ReasoningStart:
		r.reasoning = true
		fmt.Fprint(r.out, cliui.ReasoningStyle.Render("thinking: "))
	case uistream.ReasoningDelta:
		fmt.Fprint(r.out, cliui.ReasoningStyle.Render(f.Delta))
	case uistream.ReasoningEnd:
		r.endReasoning()

	case uistream.ToolInputAvailable:
		r.toolNames[f.ToolCallID] = f.ToolName
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, cliui.ToolLine(f.ToolName, cliui.ToolRunning, formatInput(f.Input)))
	case uistream.ToolOutputAvailable:
		if f.Preliminary {
			return
		}
		state, detail := outputState(f.Output)
		fmt.Fprintln(r.out, cliui.ToolLine(r.toolName(f.ToolCallID), state, detail))

	case uistream.Error:
		r.errText = f.ErrorText
		fmt.Fprintf(r.out, "\n  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render(f.ErrorText))

	case uistream.Finish:
		r.flushMarkdown()
	}
}

// Text returns the assistant text received so far.
func (r *renderer) Text() string {
	return r.text.String()
}

// Err returns the stream's error frame text, if any.
func (r *renderer) Err() string {
	return r.errText
}

func (r *renderer) endReasoning() {
	if r.reasoning {
		r.reasoning = false
		fmt.Fprintln(r.out)
	}
}

func (r *renderer) toolName(id string) string {
	if name, ok := r.toolNames[id]; ok {
		return name
	}
	return id
}

func (r *renderer) flushMarkdown() {
	if !r.markdown || r.text.Len() == 0 {
		return
	}

	rendered, err := cliui.RenderMarkdown(r.text.String())
	if err != nil {
		fmt.Fprint(r.out, r.text.String())
		return
	}
	fmt.Fprint(r.out, rendered)
}

func formatInput(input any) string {
	args, ok := input.(map[string]any)
	if !ok || len(args) == 0 {
		return ""
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, " ")
}

func outputState(output any) (string, string) {
	payload, ok := output.(map[string]any)
	if !ok {
		return cliui.ToolDone, ""
	}

	if payload["status"] == tools.StatusError {
		msg, _ := payload["error"].(string)
		return cliui.ToolFailed, msg
	}
	text, _ := payload["text"].(string)
	return cliui.ToolDone, text
}
