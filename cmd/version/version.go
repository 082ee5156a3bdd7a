// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Long:  "Print the version, commit and build time of this binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if short {
				_, err := fmt.Fprintln(w, utils.Version)
				return err
			}
			_, err := fmt.Fprintf(w, "Version:    %s\nCommit:     %s\nBuilt at:   %s\nUser-Agent: %s\n",
				utils.Version, utils.Sha, utils.Buildtime, utils.UserAgent())
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version")

	return cmd
}
