package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/cliui"
	"github.com/papercomputeco/uistream/pkg/config"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Print the effective value of a key. Keys missing from config.toml show
their default.

Examples:
  uistream config get server.listen
  uistream config get agent.max_follow_ups`,
		Args:              cobra.ExactArgs(1),
		RunE:              keyArg(runGet),
		ValidArgsFunction: completeKeys,
	}
}

func runGet(w io.Writer, cfger *config.Configer, key string, _ []string) error {
	value, err := cfger.Get(key)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), renderValue(value))
	return nil
}
