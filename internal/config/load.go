package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/errors"
)

// configFileName is the YAML file viper looks for in each config directory.
const configFileName = "config"

// newViperInstance creates a Viper instance with the standard setup:
// environment prefix TASKPOOL_, key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TASKPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption returns the decode hooks used when unmarshaling:
// string durations ("24h") decode into time.Duration.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if err is viper's missing-file error.
// Missing config files are expected; only real problems surface.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Load reads configuration from all available sources with proper
// precedence: env vars over project config over global config over defaults.
func Load() (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}
	return unmarshalAndValidate(v)
}

// loadGlobalConfig merges ~/.taskpool/config.yaml if present.
func loadGlobalConfig(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: global config simply does not apply.
		return nil
	}
	return mergeConfigDir(v, filepath.Join(home, constants.PoolHome))
}

// loadProjectConfig merges ./.taskpool/config.yaml if present.
func loadProjectConfig(v *viper.Viper) error {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return mergeConfigDir(v, filepath.Join(cwd, constants.PoolHome))
}

func mergeConfigDir(v *viper.Viper, dir string) error {
	sub := viper.New()
	sub.SetConfigName(configFileName)
	sub.SetConfigType("yaml")
	sub.AddConfigPath(dir)
	if err := sub.ReadInConfig(); err != nil {
		if isConfigNotFoundError(err) || os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read config in %s", dir)
	}
	if err := v.MergeConfigMap(sub.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config from %s", dir)
	}
	return nil
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}
