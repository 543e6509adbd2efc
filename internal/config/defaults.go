package config

import (
	"github.com/spf13/viper"

	"github.com/zinincorp/taskpool/internal/constants"
)

// setDefaults installs the built-in defaults into a viper instance.
// Keys mirror the mapstructure tags in config.go.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("routing.escalation_threshold", constants.DefaultEscalationThreshold)
	v.SetDefault("routing.auto_claim_threshold", constants.DefaultAutoClaimThreshold)
	v.SetDefault("archive.retention", constants.DefaultRetention)
	v.SetDefault("archive.interval", constants.DefaultArchiveInterval)
	v.SetDefault("patrol.stale_budget", constants.DefaultStaleBudget)
	v.SetDefault("patrol.interval", constants.DefaultPatrolInterval)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
}

// Default returns a Config carrying only the built-in defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are compiled in and always decode.
	_ = v.Unmarshal(&cfg, viperDecoderOption())
	return &cfg
}
