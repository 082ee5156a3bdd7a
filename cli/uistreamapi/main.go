// Command uistreamapi runs only the transcript API server.
package main

import (
	"os"

	apicmder "github.com/papercomputeco/uistream/cmd/uistream/serve/api"
	"github.com/papercomputeco/uistream/cmd/uistream/stack"
)

func main() {
	if err := stack.Standalone(apicmder.NewAPICmd(), "uistreamapi").Execute(); err != nil {
		os.Exit(1)
	}
}
