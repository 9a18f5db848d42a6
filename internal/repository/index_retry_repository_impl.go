package repository

import (
	"context"
	"strconv"

	domainRepo "masters-marketplace/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// IndexRetryKey is the Redis set of master ids waiting for a reindex.
const IndexRetryKey = "search:index:retry"

type indexRetryRepository struct {
	redisClient *redis.Client
}

func NewIndexRetryRepository(redisClient *redis.Client) domainRepo.IndexRetryRepository {
	return &indexRetryRepository{redisClient: redisClient}
}

func (r *indexRetryRepository) Push(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatUint(uint64(id), 10)
	}
	return r.redisClient.SAdd(ctx, IndexRetryKey, members...).Err()
}

// Pop removes and returns up to n ids. Ids that fail to parse are dropped.
func (r *indexRetryRepository) Pop(ctx context.Context, n int) ([]uint, error) {
	members, err := r.redisClient.SPopN(ctx, IndexRetryKey, int64(n)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
