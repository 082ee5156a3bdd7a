// Package configcmder provides the config command for managing persistent
// uistream configuration stored in the .uistream/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/cliui"
	"github.com/papercomputeco/uistream/pkg/config"
)

const configLongDesc string = `Manage persistent uistream configuration.

Configuration is stored as config.toml in the .uistream/ directory and provides
default values for command flags. CLI flags and UISTREAM_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML sections, e.g. server.listen,
agent.max_follow_ups or stream.pace_delay. Run "uistream config list" for
all of them.

Examples:
  uistream config set llm.model gpt-4o-mini
  uistream config set stream.pace_delay 0s
  uistream config unset stream.pace_delay
  uistream config get server.listen
  uistream config list`

const configShortDesc string = "Manage persistent uistream configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(
		newSetCmd(),
		newUnsetCmd(),
		newGetCmd(),
		newListCmd(),
	)

	return cmd
}

// open resolves the config file for cmd's --config-dir, which is inherited
// from the root command when present.
func open(cmd *cobra.Command) (*config.Configer, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}

// keyArg runs fn with a validated key and an opened config.
func keyArg(fn func(w io.Writer, cfger *config.Configer, key string, rest []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !config.IsValidConfigKey(key) {
			return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
				key, strings.Join(config.ValidConfigKeys(), ", "))
		}

		cfger, err := open(cmd)
		if err != nil {
			return err
		}
		printTarget(cmd.OutOrStdout(), cfger)
		return fn(cmd.OutOrStdout(), cfger, key, args[1:])
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if path := cfger.Path(); path != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(path),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

func renderValue(value string) string {
	if value == "" {
		return cliui.DimStyle.Render("<not set>")
	}
	return cliui.ValueStyle.Render(value)
}
