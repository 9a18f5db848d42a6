package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"masters-marketplace/config"
	"masters-marketplace/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache keys of the public reference lists
const (
	CityListKey      = "city_list"
	DistrictListKey  = "district_list"
	EducationListKey = "education_list"
	LanguageListKey  = "language_list"
	CategoryListKey  = "category_list"
	ServiceListKey   = "services_list"

	servicesForCategoryKeyPrefix = "services_for_category_"
)

// ListKey returns the cache key of the full list of a reference kind.
func ListKey(kind entity.EntityKind) string {
	switch kind {
	case entity.KindCity:
		return CityListKey
	case entity.KindDistrict:
		return DistrictListKey
	case entity.KindEducation:
		return EducationListKey
	case entity.KindLanguage:
		return LanguageListKey
	case entity.KindCategory:
		return CategoryListKey
	case entity.KindService:
		return ServiceListKey
	}
	return ""
}

func ServicesForCategoryKey(categoryID uint) string {
	return fmt.Sprintf("%s%d", servicesForCategoryKeyPrefix, categoryID)
}

// InvalidationKeys lists every cached list a reference change can affect.
func InvalidationKeys(event entity.ChangeEvent) []string {
	switch event.Kind {
	case entity.KindCity:
		// deleting a city detaches its districts
		return []string{CityListKey, DistrictListKey}
	case entity.KindDistrict, entity.KindEducation, entity.KindLanguage:
		return []string{ListKey(event.Kind)}
	case entity.KindCategory:
		// services cascade with their category
		return []string{CategoryListKey, ServiceListKey, ServicesForCategoryKey(event.ID)}
	case entity.KindService:
		keys := []string{ServiceListKey}
		for _, categoryID := range event.ParentIDs {
			keys = append(keys, ServicesForCategoryKey(categoryID))
		}
		return keys
	}
	return nil
}

// ReferenceCache is a read-through cache of reference lists.
type ReferenceCache interface {
	// GetList returns the cached list under key, calling load on a miss. Cache
	// failures are logged and the list is served from load.
	GetList(ctx context.Context, key string, load func() ([]entity.Reference, error)) ([]entity.Reference, error)
	Invalidate(ctx context.Context, keys ...string) error
}

type redisReferenceCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	timeout     time.Duration
}

func NewReferenceCache(redisClient *redis.Client, log *logrus.Logger, cfg config.CacheConfig) ReferenceCache {
	return &redisReferenceCache{
		redisClient: redisClient,
		log:         log,
		ttl:         cfg.TTL,
		timeout:     cfg.Timeout,
	}
}

func (c *redisReferenceCache) GetList(ctx context.Context, key string, load func() ([]entity.Reference, error)) ([]entity.Reference, error) {
	cached, err := c.get(ctx, key)
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, redis.Nil):
		c.log.Debugf("Cache miss for %s", key)
	default:
		c.log.Warnf("Failed to read cache %s, falling back to database: %+v", key, err)
	}

	refs, err := load()
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, key, refs); err != nil {
		c.log.Warnf("Failed to write cache %s: %+v", key, err)
	}
	return refs, nil
}

func (c *redisReferenceCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.redisClient.Del(opCtx, keys...).Err(); err != nil {
		c.log.Warnf("Failed to invalidate cache keys %v: %+v", keys, err)
		return err
	}

	c.log.Debugf("Invalidated cache keys %v", keys)
	return nil
}

func (c *redisReferenceCache) get(ctx context.Context, key string) ([]entity.Reference, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.redisClient.Get(opCtx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var refs []entity.Reference
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return refs, nil
}

func (c *redisReferenceCache) set(ctx context.Context, key string, refs []entity.Reference) error {
	if refs == nil {
		refs = []entity.Reference{}
	}

	raw, err := json.Marshal(refs)
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.redisClient.Set(opCtx, key, raw, c.ttl).Err()
}
