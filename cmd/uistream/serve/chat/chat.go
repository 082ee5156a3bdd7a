// Package chatservecmder provides the cobra command that runs only the chat
// streaming server.
package chatservecmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/cmd/uistream/stack"
	"github.com/papercomputeco/uistream/pkg/config"
	"github.com/papercomputeco/uistream/server"
)

type chatCommander struct {
	flags     stack.Flags
	configDir string
	debug     bool
	logFile   string

	settings *stack.Settings
	logger   *slog.Logger
}

// chatFlags omits the API listen address, which this command never binds.
var chatFlags = []string{
	config.FlagListen,
	config.FlagAllowOrigins,
	config.FlagModel,
	config.FlagTemperature,
	config.FlagMaxFollowUps,
	config.FlagRequestTimeout,
	config.FlagPaceDelay,
	config.FlagToolTimeout,
	config.FlagWeatherLatency,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

const chatLongDesc string = `Run the uistream chat server.

The server accepts AI SDK chat requests on POST /chat and streams the model's
answer back as a UI message stream, executing tool calls along the way.
Completed turns are stored as transcripts.`

const chatShortDesc string = "Run the uistream chat server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.settings, err = stack.Resolve(cmd, cmder.configDir, chatFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.flags.Register(cmd, config.FlagListen)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	var (
		closeLog func() error
		err      error
	)
	c.logger, closeLog, err = stack.NewLogger(c.debug, c.logFile, "chat")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if err := stack.LoadDotEnv(c.logger, stack.DotEnvFiles...); err != nil {
		return err
	}

	driver, err := c.settings.NewStorageDriver(cmd.Context(), c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.settings.NewPublisher(c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := stack.NewPool(driver, publisher, c.logger)
	if err != nil {
		return err
	}

	serverConfig, err := c.settings.ServerConfig(c.configDir, c.logger)
	if err != nil {
		pool.Close()
		return err
	}

	srv, err := server.New(serverConfig, pool, c.logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating chat server: %w", err)
	}
	defer srv.Close()

	c.logger.Info("starting chat server",
		"listen", c.settings.Listen,
		"api_key_configured", serverConfig.Resolver.Configured(),
	)

	return srv.Run()
}
