// Package uistreamcmder provides the root uistream command.
package uistreamcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/uistream/cmd/uistream/auth"
	chatcmder "github.com/papercomputeco/uistream/cmd/uistream/chat"
	configcmder "github.com/papercomputeco/uistream/cmd/uistream/config"
	initcmder "github.com/papercomputeco/uistream/cmd/uistream/init"
	servecmder "github.com/papercomputeco/uistream/cmd/uistream/serve"
	"github.com/papercomputeco/uistream/cmd/uistream/stack"
	versioncmder "github.com/papercomputeco/uistream/cmd/version"
)

const uistreamLongDesc string = `uistream streams LLM chat completions to AI SDK clients.

It translates an OpenAI-compatible chat completion stream into the AI SDK UI
message stream, running tool calls in between, and keeps a transcript of
every turn.

Run services using:
  uistream serve          Run the chat server and the API server together
  uistream serve chat     Run the chat server
  uistream serve api      Run the transcript API server

Talk to a running chat server using:
  uistream chat`

const uistreamShortDesc string = "uistream - AI SDK UI message streaming"

func NewUIStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "uistream",
		Short:        uistreamShortDesc,
		Long:         uistreamLongDesc,
		SilenceUsage: true,
	}

	stack.AddGlobalFlags(cmd)
	cmd.AddCommand(
		servecmder.NewServeCmd(),
		chatcmder.NewChatCmd(),
		configcmder.NewConfigCmd(),
		authcmder.NewAuthCmd(),
		initcmder.NewInitCmd(),
		versioncmder.NewVersionCmd(),
	)

	return cmd
}
