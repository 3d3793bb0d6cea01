package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	counterKey = "invite_counter"
	keyPrefix  = "invite:"
	scanBatch  = 500
)

var _ InvitationRepository = &InvitationRedisRepository{}

type InvitationRedisRepository struct {
	logger *slog.Logger
	client *redis.Client
}

func NewRedisInvitationRepo(client *redis.Client) *InvitationRedisRepository {
	return &InvitationRedisRepository{
		logger: slog.Default().With("logger", "invitations_redis"),
		client: client,
	}
}

func (r *InvitationRedisRepository) Start() error {
	return nil
}

func (r *InvitationRedisRepository) Stop() {
	if err := r.client.Close(); err != nil {
		r.logger.Error("error closing redis client", slog.Any("error", err))
	}
}

// Create is two round trips without a transaction: if SET fails the counter value stays unused.
func (r *InvitationRedisRepository) Create(ctx context.Context, name string) (int64, error) {
	id, err := r.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate invitation id: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+strconv.FormatInt(id, 10), name, 0).Err(); err != nil {
		r.logger.Error("invitation id left without name", slog.Int64("id", id), slog.Any("error", err))

		return 0, fmt.Errorf("store invitation %d: %w", id, err)
	}

	return id, nil
}

func (r *InvitationRedisRepository) Get(ctx context.Context, id string) (string, error) {
	name, err := r.client.Get(ctx, keyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", err
	}

	if name == "" {
		return "", ErrNotFound
	}

	return name, nil
}

// All lists keys by prefix, then fetches every value with a single MGET.
func (r *InvitationRedisRepository) All(ctx context.Context) (map[string]string, error) {
	keys := make([]string, 0)

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	res := make(map[string]string, len(keys))

	if len(keys) == 0 {
		return res, nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch invitations: %w", err)
	}

	for i, v := range vals {
		// deleted between SCAN and MGET
		if v == nil {
			continue
		}

		if s, ok := v.(string); ok {
			res[strings.TrimPrefix(keys[i], keyPrefix)] = s
		}
	}

	return res, nil
}

func (r *InvitationRedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
