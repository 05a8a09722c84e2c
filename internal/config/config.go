package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig   `mapstructure:"db"`
	Auth    AuthConfig `mapstructure:"auth"`
	AppHost string     `mapstructure:"host"`
	Port    int        `mapstructure:"port"`
}

type DBConfig struct {
	Source string `mapstructure:"source"`
}

// AuthConfig selects the credential strategies tried for inbound requests,
// in order. An empty list disables authentication entirely (the legacy
// open-posting mode).
type AuthConfig struct {
	Strategies       []string      `mapstructure:"strategies"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`
	TokenReuseBuffer time.Duration `mapstructure:"token_reuse_buffer"`
}

func Load() (*Config, error) {
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/configs")
	viper.SetConfigName("settings")
	viper.SetConfigType("yml")

	viper.SetDefault("port", 8080)
	viper.SetDefault("auth.strategies", []string{"basic", "token"})
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.token_reuse_buffer", "60s")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
