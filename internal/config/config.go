package config

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendDB    = "db"

	EnvPrefix = "VALENTINE"
)

type AppConfig struct {
	v *viper.Viper
}

func NewAppConfig() *AppConfig {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &AppConfig{v: v}
}

func (c *AppConfig) Load(filename string) error {
	c.v.SetConfigFile(filename)

	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("error loading config %s: %w", filename, err)
	}

	return nil
}

func (c *AppConfig) Set(key string, v any) {
	c.v.Set(key, v)
}

func (c *AppConfig) Addr() string {
	return c.v.GetString("addr")
}

func (c *AppConfig) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString("backend")))
}

func (c *AppConfig) InvitationsFile() string {
	return c.v.GetString("invitations_file")
}

func (c *AppConfig) DB() string {
	return c.v.GetString("db")
}

func (c *AppConfig) CacheURL() string {
	return c.v.GetString("cache.url")
}

func (c *AppConfig) CacheToken() string {
	return c.v.GetString("cache.token")
}

// BaseURL is empty when links should be built from the request host.
func (c *AppConfig) BaseURL() string {
	return strings.TrimRight(c.v.GetString("base_url"), "/")
}

// NameMaxLen is the limit in characters; 0 disables it.
func (c *AppConfig) NameMaxLen() int {
	return c.v.GetInt("name_max_len")
}

func (c *AppConfig) Debug() bool {
	return c.v.GetBool("debug")
}

// Validate reports settings the server can't start with.
func (c *AppConfig) Validate() error {
	switch c.Backend() {
	case BackendFile:
		if c.InvitationsFile() == "" {
			return fmt.Errorf("invitations_file is required for %s backend", BackendFile)
		}
	case BackendDB:
		if c.DB() == "" {
			return fmt.Errorf("db is required for %s backend", BackendDB)
		}
	case BackendRedis:
		if c.CacheURL() == "" {
			return fmt.Errorf("cache url is not set (%s_CACHE_URL)", EnvPrefix)
		}

		if c.CacheToken() == "" {
			return fmt.Errorf("cache token is not set (%s_CACHE_TOKEN)", EnvPrefix)
		}

		if _, err := redis.ParseURL(c.CacheURL()); err != nil {
			return fmt.Errorf("invalid cache url: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.v.GetString("backend"))
	}

	if c.NameMaxLen() < 0 {
		return fmt.Errorf("name_max_len must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8000")
	v.SetDefault("backend", BackendFile)
	v.SetDefault("invitations_file", "invitations.json")
	v.SetDefault("db", "invitations.sqlite")
	v.SetDefault("base_url", "")
	v.SetDefault("name_max_len", 100)
	v.SetDefault("debug", false)
}
