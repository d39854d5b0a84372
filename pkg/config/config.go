package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Guard   GuardConfig   `mapstructure:"guard"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Events  EventsConfig  `mapstructure:"events"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	UpstreamURL string `mapstructure:"upstream_url"`
}

type MetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	EnableLatency bool `mapstructure:"enable_latency"`
}

// GuardConfig keeps the guard policy keys (block, patterns, pattern_append) as a raw
// settings map; the guard decodes them itself.
type GuardConfig struct {
	MaxPasses int                    `mapstructure:"max_passes"`
	Settings  map[string]interface{} `mapstructure:"-"`
}

type RedisConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Password          string `mapstructure:"password"`
	DB                int    `mapstructure:"db"`
	TLS               bool   `mapstructure:"tls"`
	PatternsKey       string `mapstructure:"patterns_key"`
	DetectionsChannel string `mapstructure:"detections_channel"`
}

type EventsConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

var globalConfig = defaultConfig()

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			MetricsPort: 9090,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			EnableLatency: true,
		},
		Guard: GuardConfig{
			MaxPasses: 5,
		},
		Redis: RedisConfig{
			Host:              "localhost",
			Port:              6379,
			PatternsKey:       "xssguard:patterns",
			DetectionsChannel: "xssguard:detections",
		},
		Events: EventsConfig{
			Workers:   2,
			QueueSize: 1000,
		},
	}
}

// Load reads config.yaml from configPath, ./config or the working directory. A missing
// file is not an error: defaults and environment variables (GUARD_BLOCK, REDIS_HOST, ...)
// still apply.
func Load(configPath string) error {
	cfg, err := load(configPath)
	if err != nil {
		return err
	}
	globalConfig = cfg
	return nil
}

func load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return Config{}, fmt.Errorf("error reading config file config.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Guard.Settings = guardSettings(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := defaultConfig()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.metrics_port", d.Server.MetricsPort)
	v.SetDefault("server.upstream_url", d.Server.UpstreamURL)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.enable_latency", d.Metrics.EnableLatency)
	v.SetDefault("guard.block", false)
	v.SetDefault("guard.patterns", []string{})
	v.SetDefault("guard.pattern_append", false)
	v.SetDefault("guard.max_passes", d.Guard.MaxPasses)
	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.tls", d.Redis.TLS)
	v.SetDefault("redis.patterns_key", d.Redis.PatternsKey)
	v.SetDefault("redis.detections_channel", d.Redis.DetectionsChannel)
	v.SetDefault("events.workers", d.Events.Workers)
	v.SetDefault("events.queue_size", d.Events.QueueSize)
}

var guardSettingKeys = []string{"block", "patterns", "pattern_append"}

// guardSettings reads the policy keys one by one, since viper's GetStringMap does not
// see environment overrides of nested keys.
func guardSettings(v *viper.Viper) map[string]interface{} {
	settings := make(map[string]interface{}, len(guardSettingKeys))
	for _, key := range guardSettingKeys {
		settings[key] = v.Get("guard." + key)
	}
	return settings
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Metrics.Enabled && c.Server.MetricsPort == c.Server.Port {
		return fmt.Errorf("metrics port must differ from server port (%d)", c.Server.Port)
	}
	if c.Guard.MaxPasses < 1 {
		return fmt.Errorf("invalid guard max_passes: %d", c.Guard.MaxPasses)
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
