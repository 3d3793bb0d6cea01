package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("invitation not found")

type InvitationRepository interface {
	Start() error
	Stop()
	// Create stores name under a newly allocated id and returns that id.
	Create(ctx context.Context, name string) (int64, error)
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (string, error)
	All(ctx context.Context) (map[string]string, error)
	Ping(ctx context.Context) error
}
