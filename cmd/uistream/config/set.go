package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/cliui"
	"github.com/papercomputeco/uistream/pkg/config"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Validate a value and store it in config.toml. Durations use Go syntax
(30s, 2m).

Examples:
  uistream config set server.allow_origins http://localhost:3000
  uistream config set agent.temperature 0.2
  uistream config set tools.weather_latency 0s
  uistream config set storage.sqlite_path ./transcripts.db`,
		Args:              cobra.ExactArgs(2),
		RunE:              keyArg(runSet),
		ValidArgsFunction: completeKeys,
	}
}

func newUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unset <key>",
		Short:             "Reset a configuration value to its default",
		Args:              cobra.ExactArgs(1),
		RunE:              keyArg(runUnset),
		ValidArgsFunction: completeKeys,
	}
}

func runSet(w io.Writer, cfger *config.Configer, key string, rest []string) error {
	value := rest[0]
	if err := cfger.Set(key, value); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}

func runUnset(w io.Writer, cfger *config.Configer, key string, _ []string) error {
	if err := cfger.Unset(key); err != nil {
		return err
	}

	value, err := cfger.Get(key)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Reset %s to %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		renderValue(value),
	)
	return nil
}
