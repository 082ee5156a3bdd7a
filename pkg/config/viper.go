package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/uistream/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable viper consults.
const EnvPrefix = "UISTREAM"

// InitViper returns a viper instance layered as, highest first:
//
//	flags        bound later with BindRegisteredFlags
//	environment  UISTREAM_<SECTION>_<KEY>, e.g. UISTREAM_LLM_MODEL
//	config.toml  from the resolved .uistream/ directory
//	defaults     NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	defaults := NewDefaultConfig()
	v.SetDefault("version", defaults.Version)
	for _, k := range keys {
		v.SetDefault(k.name, k.get(defaults))
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetConfigName(strings.TrimSuffix(configFile, ".toml"))
	v.SetConfigType("toml")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}
