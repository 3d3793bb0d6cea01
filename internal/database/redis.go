package database

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to a hosted redis given its url (redis:// or rediss://) and access token.
func NewRedis(url string, token string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache url: %w", err)
	}

	if token != "" {
		opts.Password = token
	}

	return redis.NewClient(opts), nil
}
