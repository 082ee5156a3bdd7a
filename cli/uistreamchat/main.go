// Command uistreamchat runs only the chat streaming server.
package main

import (
	"os"

	chatservecmder "github.com/papercomputeco/uistream/cmd/uistream/serve/chat"
	"github.com/papercomputeco/uistream/cmd/uistream/stack"
)

func main() {
	if err := stack.Standalone(chatservecmder.NewChatCmd(), "uistreamchat").Execute(); err != nil {
		os.Exit(1)
	}
}
