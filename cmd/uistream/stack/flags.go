package stack

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/config"
)

// Flags holds the raw flag targets shared by the serve commands. Values are
// read back through viper so that config.toml and the environment apply.
type Flags struct {
	Listen         string
	APIListen      string
	AllowOrigins   string
	Model          string
	Temperature    string
	MaxFollowUps   uint
	RequestTimeout time.Duration
	PaceDelay      time.Duration
	ToolTimeout    time.Duration
	WeatherLatency time.Duration
	SQLite         string
	Postgres       string
	KafkaBrokers   string
	KafkaTopic     string
}

// ServeFlags lists every registry key bound by "uistream serve".
var ServeFlags = []string{
	config.FlagListen,
	config.FlagAPIListen,
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

// Register adds the shared serve flags to cmd. listenKeys names the registry
// keys used for the listen address flags, which differ per command.
func (f *Flags) Register(cmd *cobra.Command, listenKeys ...string) {
	for _, key := range listenKeys {
		switch key {
		case config.FlagAPIListen, config.FlagAPIListenStandalone:
			config.AddStringFlag(cmd, config.Flags, key, &f.APIListen)
		default:
			config.AddStringFlag(cmd, config.Flags, key, &f.Listen)
		}
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAllowOrigins, &f.AllowOrigins)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &f.Model)
	config.AddStringFlag(cmd, config.Flags, config.FlagTemperature, &f.Temperature)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxFollowUps, &f.MaxFollowUps)
	config.AddDurationFlag(cmd, config.Flags, config.FlagRequestTimeout, &f.RequestTimeout)
	config.AddDurationFlag(cmd, config.Flags, config.FlagPaceDelay, &f.PaceDelay)
	config.AddDurationFlag(cmd, config.Flags, config.FlagToolTimeout, &f.ToolTimeout)
	config.AddDurationFlag(cmd, config.Flags, config.FlagWeatherLatency, &f.WeatherLatency)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.SQLite)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &f.Postgres)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &f.KafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &f.KafkaTopic)
}

// Resolve reads Settings for cmd. Flags bound to registryKeys take
// precedence over the environment, config.toml and defaults.
func Resolve(cmd *cobra.Command, configDir string, registryKeys []string) (*Settings, error) {
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)
	return FromViper(v)
}

// AddGlobalFlags adds the persistent flags every uistream binary accepts.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .uistream/ config directory")
}

// Standalone turns a subcommand into the root command of its own binary.
func Standalone(cmd *cobra.Command, use string) *cobra.Command {
	cmd.Use = use
	cmd.SilenceUsage = true
	AddGlobalFlags(cmd)
	return cmd
}
