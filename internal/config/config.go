// Package config loads the common, process-wide settings (logging, TLS
// material, Redis connection) shared by every cmd/ entry point. CLI-specific
// argument parsing (the replay runner's fixed positional contract, the peer
// tester's cobra flags) lives in its own file in this package rather than
// here.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LogConfig controls the C11 structured logger.
type LogConfig struct {
	Level      string `mapstructure:"level"` // debug/info/warn/error
	Format     string `mapstructure:"format"` // json/text
	Output     string `mapstructure:"output"` // stdout/stderr/file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB, file output only
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
	Caller     bool   `mapstructure:"caller"`
}

// TLSConfig names the certificate material locations for a peer connection.
// Defaults follow the historical naming convention: "ca.crt" for the CA,
// "orch.crt"/"orch.key" for an orchestrator, "client-{cust}-{client}.crt/.key"
// for a client (the CLI fills those in; this struct just holds the resolved
// paths).
type TLSConfig struct {
	CAPath   string `mapstructure:"ca_path"`
	CertPath string `mapstructure:"cert_path"`
	KeyPath  string `mapstructure:"key_path"`
	Legacy   bool   `mapstructure:"legacy"` // plain TCP + v2 dialect, no TLS
}

// RedisConfig is the common connection surface independent of how a given
// entry point learns the values (replay runner gets them from the
// redis_info positional argument; other tools may read them from env/flags).
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	SentinelAddr string `mapstructure:"sentinel_addr"`
	MasterName   string `mapstructure:"master_name"`
}

// Config is the root of the common settings tree.
type Config struct {
	Log   *LogConfig   `mapstructure:"log"`
	TLS   *TLSConfig   `mapstructure:"tls"`
	Redis *RedisConfig `mapstructure:"redis"`
}

func defaultConfig() *Config {
	return &Config{
		Log: &LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		TLS: &TLSConfig{
			CAPath: "ca.crt",
		},
		Redis: &RedisConfig{
			Host: "127.0.0.1",
			Port: 6379,
		},
	}
}

// Load builds the common Config from, in increasing priority: built-in
// defaults, an optional file at configPath, and environment variables
// (COMMTESTER_-prefixed, nested keys joined by "_"). An optional .env file
// is loaded into the process environment first (without overriding
// variables already set), so its values rank with environment variables.
// configPath may be empty, in which case only defaults/env apply.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // optional; missing .env is not an error

	v := viper.New()
	v.SetEnvPrefix("COMMTESTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := defaultConfig()
	bindDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, err
	}
	if out.Log == nil {
		out.Log = cfg.Log
	}
	if out.TLS == nil {
		out.TLS = cfg.TLS
	}
	if out.Redis == nil {
		out.Redis = cfg.Redis
	}
	return &out, nil
}

func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("tls.ca_path", cfg.TLS.CAPath)
	v.SetDefault("redis.host", cfg.Redis.Host)
	v.SetDefault("redis.port", cfg.Redis.Port)
}
