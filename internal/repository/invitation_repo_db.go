package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kdudkov/valentine/internal/cache"
	"github.com/kdudkov/valentine/internal/database"
	"github.com/kdudkov/valentine/internal/model"
)

const (
	lookupTTL     = time.Minute * 10
	cleanInterval = time.Minute
)

var _ InvitationRepository = &InvitationDbRepository{}

type InvitationDbRepository struct {
	logger *slog.Logger
	dbm    *database.DatabaseManager
	cache  *cache.Cache[string]

	stop     chan struct{}
	stopOnce sync.Once
}

func NewDbInvitationRepo(dbm *database.DatabaseManager) *InvitationDbRepository {
	r := &InvitationDbRepository{
		logger: slog.Default().With("logger", "invitations_db"),
		dbm:    dbm,
		stop:   make(chan struct{}),
	}

	// rows are never updated, so a cached name can't go stale
	r.cache = cache.NewWithTTL[string](lookupTTL, r.loadName)

	return r
}

func (r *InvitationDbRepository) loadName(ctx context.Context, key string) (string, bool, error) {
	id, ok := model.ParseKey(key)
	if !ok {
		return "", false, nil
	}

	inv, err := r.dbm.InvitationQuery().WithContext(ctx).Id(id).One()
	if err != nil {
		return "", false, err
	}

	if inv == nil || inv.Name == "" {
		return "", false, nil
	}

	return inv.Name, true, nil
}

func (r *InvitationDbRepository) Start() error {
	if err := r.dbm.Migrate(); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(cleanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.cache.Clean()
			}
		}
	}()

	return nil
}

func (r *InvitationDbRepository) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)

		if err := r.dbm.Close(); err != nil {
			r.logger.Error("error closing database", slog.Any("error", err))
		}
	})
}

func (r *InvitationDbRepository) Create(ctx context.Context, name string) (int64, error) {
	inv := &model.Invitation{Name: name}

	if err := r.dbm.Create(ctx, inv); err != nil {
		return 0, fmt.Errorf("store invitation: %w", err)
	}

	return int64(inv.ID), nil
}

func (r *InvitationDbRepository) Get(ctx context.Context, id string) (string, error) {
	name, ok, err := r.cache.Load(ctx, id)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", ErrNotFound
	}

	return name, nil
}

func (r *InvitationDbRepository) All(ctx context.Context) (map[string]string, error) {
	list, err := r.dbm.InvitationQuery().WithContext(ctx).Get()
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	res := make(map[string]string, len(list))

	for _, inv := range list {
		res[inv.Key()] = inv.Name
	}

	return res, nil
}

func (r *InvitationDbRepository) Ping(ctx context.Context) error {
	return r.dbm.Ping(ctx)
}
