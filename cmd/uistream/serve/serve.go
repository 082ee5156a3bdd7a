// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/api"
	apicmder "github.com/papercomputeco/uistream/cmd/uistream/serve/api"
	chatservecmder "github.com/papercomputeco/uistream/cmd/uistream/serve/chat"
	"github.com/papercomputeco/uistream/cmd/uistream/stack"
	"github.com/papercomputeco/uistream/pkg/config"
	"github.com/papercomputeco/uistream/server"
)

type ServeCommander struct {
	flags     stack.Flags
	configDir string
	debug     bool
	logFile   string

	settings *stack.Settings
	logger   *slog.Logger
}

const serveLongDesc string = `Run uistream services.

Use subcommands to run individual services or all services together:
  uistream serve          Run both the chat server and the API server
  uistream serve chat     Run just the chat server
  uistream serve api      Run just the API server

Provider credentials come from OPENROUTER_API_KEY or OPENAI_API_KEY (also
read from .env.local and .env), falling back to keys stored with
"uistream auth".`

const serveShortDesc string = "Run uistream services"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.settings, err = stack.Resolve(cmd, cmder.configDir, stack.ServeFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmder.flags.Register(cmd, config.FlagListen, config.FlagAPIListen)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(apicmder.NewAPICmd())
	cmd.AddCommand(chatservecmder.NewChatCmd())

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	var (
		closeLog func() error
		err      error
	)
	c.logger, closeLog, err = stack.NewLogger(c.debug, c.logFile, "serve")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if err := stack.LoadDotEnv(c.logger, stack.DotEnvFiles...); err != nil {
		return err
	}

	driver, err := c.settings.NewStorageDriver(ctx, c.logger)
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

	chatServer, err := server.New(serverConfig, pool, c.logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating chat server: %w", err)
	}
	defer chatServer.Close()

	apiConfig, err := c.settings.APIConfig()
	if err != nil {
		return err
	}

	apiServer, err := api.NewServer(apiConfig, driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}
	defer apiServer.Shutdown()

	c.logger.Info("starting chat server",
		"chat_addr", c.settings.Listen,
		"api_key_configured", serverConfig.Resolver.Configured(),
	)
	c.logger.Info("starting api server",
		"api_addr", c.settings.APIListen,
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := chatServer.Run(); err != nil {
			errChan <- fmt.Errorf("chat server error: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}
