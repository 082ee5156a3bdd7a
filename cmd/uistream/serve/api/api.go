// Package apicmder provides the cobra command that runs only the transcript
// API server.
package apicmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/api"
	"github.com/papercomputeco/uistream/cmd/uistream/stack"
	"github.com/papercomputeco/uistream/pkg/config"
)

type apiCommander struct {
	listen     string
	sqlitePath string
	postgres   string

	configDir string
	debug     bool

	settings *stack.Settings
	logger   *slog.Logger
}

var apiFlags = []string{
	config.FlagAPIListenStandalone,
	config.FlagSQLite,
	config.FlagPostgres,
}

const apiLongDesc string = `Run the uistream API server for inspecting stored transcripts.

The server also exposes the built-in tools over the Model Context Protocol
on /mcp.`

const apiShortDesc string = "Run the uistream API server"

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.settings, err = stack.Resolve(cmd, cmder.configDir, apiFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgres)

	return cmd
}

func (c *apiCommander) run(cmd *cobra.Command) error {
	var (
		closeLog func() error
		err      error
	)
	c.logger, closeLog, err = stack.NewLogger(c.debug, "", "api")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	driver, err := c.settings.NewStorageDriver(cmd.Context(), c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	apiConfig, err := c.settings.APIConfig()
	if err != nil {
		return err
	}

	server, err := api.NewServer(apiConfig, driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	c.logger.Info("starting API server",
		"listen", c.settings.APIListen,
	)

	return server.Run()
}
