package services

import (
	"context"
	"fmt"
	"os"
	"strconv"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
)

// RedisService is a RecordStore driver. Every record lives under REDIS_PREFIX + key.
type RedisService struct {
	appContext.DefaultService
	redis  *redis.Client
	prefix string
}

const REDIS_SVC = "redis_svc"

// NewRedisService wraps an existing client, mainly for tests.
func NewRedisService(client *redis.Client, prefix string) *RedisService {
	return &RedisService{redis: client, prefix: prefix}
}

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.initRedisClient()
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis != nil {
		ctx := context.Background()
		_, err := svc.redis.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

func (svc *RedisService) initRedisClient() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.prefix = os.Getenv("REDIS_PREFIX")
	if svc.prefix == "" {
		svc.prefix = "learnhub:"
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}

func (svc *RedisService) key(key string) string {
	return svc.prefix + key
}

func (svc *RedisService) Get(ctx context.Context, key string) (string, bool, error) {
	if svc.redis == nil {
		return "", false, fmt.Errorf("redis client not initialized")
	}

	result, err := svc.redis.Get(ctx, svc.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}

func (svc *RedisService) Set(ctx context.Context, key, value string) error {
	if svc.redis == nil {
		return fmt.Errorf("redis client not initialized")
	}

	return svc.redis.Set(ctx, svc.key(key), value, 0).Err()
}

// SetMany writes all records inside one MULTI/EXEC transaction.
func (svc *RedisService) SetMany(ctx context.Context, records map[string]string) error {
	if svc.redis == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	_, err := svc.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range records {
			pipe.Set(ctx, svc.key(key), value, 0)
		}
		return nil
	})
	return err
}

func (svc *RedisService) Delete(ctx context.Context, keys ...string) error {
	if svc.redis == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = svc.key(key)
	}
	return svc.redis.Del(ctx, prefixed...).Err()
}

func (svc *RedisService) Count(ctx context.Context) (int64, error) {
	keys, err := svc.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// Clear removes only the keys under this service's prefix.
func (svc *RedisService) Clear(ctx context.Context) error {
	keys, err := svc.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return svc.redis.Del(ctx, keys...).Err()
}

// Keys lists the prefixed keys, scanning rather than blocking on KEYS.
func (svc *RedisService) Keys(ctx context.Context) ([]string, error) {
	if svc.redis == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	var keys []string
	iter := svc.redis.Scan(ctx, 0, svc.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
