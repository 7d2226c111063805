package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the resolved runtime configuration: log level plus the ordered
// set of networks to scan.
type Config struct {
	LogLevel string
	Networks []Network
}

// fileConfig is the raw shape read from file and environment before the
// enabled keys are resolved against the presets.
type fileConfig struct {
	Enabled  []string                   `mapstructure:"enabled"`
	Networks map[string]NetworkOverride `mapstructure:"networks"`
}

// NetworkOverride carries the per-network values supplied by the operator.
// ContractAddress and StartBlock are required; RPCURL and ExplorerURL fall
// back to the preset endpoints when empty.
type NetworkOverride struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ExplorerURL     string `mapstructure:"explorer_url"`
	ContractAddress string `mapstructure:"contract_address"`
	StartBlock      uint64 `mapstructure:"start_block"`
}

// Load merges config file, environment variables, and flags, then resolves
// the enabled network keys against the built-in presets.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PURCHASESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("enabled", []string{"ethereum", "bsc", "polygon"})

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw, decodeHook()); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	networks, err := resolveNetworks(raw.Enabled, raw.Networks)
	if err != nil {
		return Config{}, err
	}

	return Config{
		LogLevel: v.GetString("log-level"),
		Networks: networks,
	}, nil
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
