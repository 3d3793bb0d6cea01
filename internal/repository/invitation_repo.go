package repository

import (
	"fmt"

	"github.com/kdudkov/valentine/internal/config"
	"github.com/kdudkov/valentine/internal/database"
)

// New builds the repository for the configured backend. It does not start it.
func New(cfg *config.AppConfig) (InvitationRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend() {
	case config.BackendRedis:
		client, err := database.NewRedis(cfg.CacheURL(), cfg.CacheToken())
		if err != nil {
			return nil, err
		}

		return NewRedisInvitationRepo(client), nil
	case config.BackendDB:
		db, err := database.GetDatabase(cfg.DB(), cfg.Debug())
		if err != nil {
			return nil, err
		}

		return NewDbInvitationRepo(database.New(db)), nil
	case config.BackendFile:
		return NewFileInvitationRepo(cfg.InvitationsFile()), nil
	}

	return nil, fmt.Errorf("unknown backend %q", cfg.Backend())
}
