package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// AppConfig is the env-driven application configuration. The app token is
// optional: without it the remote client runs unauthenticated and becomes
// eligible for the legacy-dialect fallback.
type AppConfig struct {
	ServerHost string `mapstructure:"server_host"`
	ServerPort string `mapstructure:"server_port"`
	BaseURL    string `mapstructure:"socrata_base_url"`
	DatasetID  string `mapstructure:"socrata_dataset_id"`
	AppToken   string `mapstructure:"socrata_app_token"`
	QueryLimit int    `mapstructure:"socrata_query_limit"`
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("socrata_base_url", "https://data.ny.gov")
	v.SetDefault("socrata_dataset_id", "cgw6-j4ir")
	v.SetDefault("socrata_query_limit", 50000)
	v.AutomaticEnv()

	// AutomaticEnv alone does not populate Unmarshal; bind each key.
	for _, key := range []string{
		"server_host", "server_port",
		"socrata_base_url", "socrata_dataset_id",
		"socrata_app_token", "socrata_query_limit",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}

	if cfg.DatasetID == "" {
		return nil, fmt.Errorf("SOCRATA_DATASET_ID must not be empty")
	}
	return &cfg, nil
}
