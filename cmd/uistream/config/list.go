package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/config"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Print every key with its effective value, defaults included.

Examples:
  uistream config list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfger, err := open(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if path := cfger.Path(); path != "" {
				fmt.Fprintf(w, "Using config file: %s\n\n", path)
			} else {
				fmt.Fprint(w, "No config file found. Using default config.\n\n")
			}

			cfg, err := cfger.Load()
			if err != nil {
				return err
			}

			keys := config.ValidConfigKeys()
			width := 0
			for _, k := range keys {
				width = max(width, len(k))
			}
			for _, k := range keys {
				value, _ := cfg.Value(k)
				if value == "" {
					fmt.Fprintf(w, "%-*s = <not set>\n", width, k)
				} else {
					fmt.Fprintf(w, "%-*s = %q\n", width, k, value)
				}
			}
			return nil
		},
	}
}
