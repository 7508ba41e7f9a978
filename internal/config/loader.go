package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from configPath (if non-empty; otherwise from an
// optional config.yaml in ./configs or .) and falls back to Defaults()
// otherwise, the way the rest of this codebase's teacher lineage layers
// viper over struct defaults. AutomaticEnv is enabled with the OCPP prefix,
// but defaults are registered per section and no env key replacer is set,
// so nested fields such as server.port are not read from the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("server", defaults.Server)
	v.SetDefault("session", defaults.Session)
	v.SetDefault("logging", defaults.Logging)
	v.SetDefault("message_log", defaults.MessageLog)

	v.SetEnvPrefix("OCPP")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read default config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.MessageLog.Enabled && cfg.MessageLog.URI == "" {
		return fmt.Errorf("message_log.uri is required when message_log.enabled is true")
	}

	return nil
}
