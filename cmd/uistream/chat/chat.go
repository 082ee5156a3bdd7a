// Package chatcmder provides the chat command, an interactive terminal
// client for the uistream chat server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/cliui"
	"github.com/papercomputeco/uistream/pkg/config"
	"github.com/papercomputeco/uistream/pkg/dotdir"
	"github.com/papercomputeco/uistream/pkg/logger"
	"github.com/papercomputeco/uistream/pkg/sse"
	"github.com/papercomputeco/uistream/pkg/uistream"
	"github.com/papercomputeco/uistream/pkg/utils"
	"github.com/papercomputeco/uistream/server/header"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

type chatCommander struct {
	chatTarget string
	model      string
	render     bool
	newSession bool
	record     string
	configDir  string
	debug      bool

	in       io.Reader
	out      io.Writer
	recorder io.Writer
	client   *http.Client
	logger   *slog.Logger
}

// chatRequest mirrors the body the AI SDK useChat hook posts.
type chatRequest struct {
	ID        string        `json:"id,omitempty"`
	Messages  []chatMessage `json:"messages"`
	Model     string        `json:"model"`
	WebSearch bool          `json:"webSearch"`
}

type chatMessage struct {
	ID    string     `json:"id"`
	Role  string     `json:"role"`
	Parts []textPart `json:"parts"`
}

type textPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const chatLongDesc string = `Start an interactive chat session against a running uistream chat server.

Tool calls are shown as they run. The conversation is kept in session.json
inside the .uistream directory so that "uistream chat" resumes where it left
off. Use --new to start over.

Examples:
  uistream chat
  uistream chat --render
  uistream chat --record stream.log
  uistream chat --chat-target http://localhost:8000 --new`

const chatShortDesc string = "Interactive chat against the uistream chat server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagChatTarget,
				config.FlagModel,
			})
			cmder.chatTarget = strings.TrimRight(v.GetString("client.chat_target"), "/")
			cmder.model = v.GetString("llm.model")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagChatTarget, &cmder.chatTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render answers as markdown once complete")
	cmd.Flags().BoolVar(&cmder.newSession, "new", false, "Discard the saved session and start a new conversation")
	cmd.Flags().StringVar(&cmder.record, "record", "", "Append the raw frames of every answer to this file")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithTimestamp(false), logger.WithWriter(os.Stderr))
	c.client = &http.Client{
		// Tool calls and follow-ups make turns slow
		Timeout: 5 * time.Minute,
	}

	if c.record != "" {
		f, err := os.OpenFile(c.record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening record file: %w", err)
		}
		defer f.Close()
		c.recorder = f
	}

	ddm := dotdir.NewManager()
	if c.newSession {
		if err := ddm.ClearSession(c.configDir); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}

	session, err := ddm.LoadSession(c.configDir)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	fmt.Fprintln(c.out)
	if session != nil {
		fmt.Fprintf(c.out, "  %s Resuming session %s %s\n",
			cliui.SuccessMark,
			cliui.HashStyle.Render(session.ID),
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(session.Messages))),
		)
	} else {
		session = &dotdir.SessionState{ID: uuid.NewString(), Model: c.model}
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.NameStyle.Render(c.chatTarget),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		session.Messages = append(session.Messages, dotdir.SessionMessage{Role: "user", Content: input})

		answer, err := c.sendAndStream(ctx, session)
		if err != nil {
			fmt.Fprintf(c.out, "\n  %s %v\n", cliui.FailMark, err)
			// Drop the failed turn so it can be retried
			session.Messages = session.Messages[:len(session.Messages)-1]
			continue
		}

		session.Messages = append(session.Messages, dotdir.SessionMessage{Role: "assistant", Content: answer})
		if err := ddm.SaveSession(session, c.configDir); err != nil {
			c.logger.Warn("failed to save session", "error", err)
		}

		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// sendAndStream posts the session to the chat server and renders the UI
// message stream. It returns the assistant's text.
func (c *chatCommander) sendAndStream(ctx context.Context, session *dotdir.SessionState) (string, error) {
	body, err := json.Marshal(newChatRequest(session, c.model))
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"chat_target", c.chatTarget,
		"message_count", len(session.Messages),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatTarget+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request to chat server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat server returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if !header.IsUIMessageStream(resp.Header.Get) {
		return "", errors.New("chat server did not return a UI message stream")
	}

	fmt.Fprint(c.out, assistantPrompt)
	r := newRenderer(c.out, c.render)
	if err := consume(resp.Body, c.recorder, r, c.logger); err != nil {
		return r.Text(), err
	}
	if r.Err() != "" {
		return r.Text(), errors.New(r.Err())
	}

	return r.Text(), nil
}

// consume feeds UI message stream frames to r, copying the raw lines to
// record when it is non-nil. It stops at [DONE], at an error frame, or when
// the body ends.
func consume(body io.Reader, record io.Writer, r *renderer, log *slog.Logger) error {
	reader := sse.NewTeeReader(body, record)
	for {
		ev, err := reader.Next()
		if err != nil {
			return fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil || ev.IsDone() {
			return nil
		}

		frame, err := uistream.Parse([]byte(ev.Data))
		if err != nil {
			log.Debug("skipping unparsable frame", "error", err, "data", ev.Data)
			continue
		}

		r.Handle(frame)
		if _, ok := frame.(uistream.Error); ok {
			return nil
		}
	}
}

func newChatRequest(session *dotdir.SessionState, model string) chatRequest {
	messages := make([]chatMessage, 0, len(session.Messages))
	for i, m := range session.Messages {
		messages = append(messages, chatMessage{
			ID:    fmt.Sprintf("%s-%d", session.ID, i),
			Role:  m.Role,
			Parts: []textPart{{Type: "text", Text: m.Content}},
		})
	}

	return chatRequest{
		ID:       session.ID,
		Messages: messages,
		Model:    model,
	}
}
