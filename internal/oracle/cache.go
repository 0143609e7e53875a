package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/matching"
	"github.com/JonMunkholm/stockmatch/internal/textnorm"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "stockmatch:oracle:"

// Cache stores verdicts for a query and candidate set.
type Cache interface {
	Get(ctx context.Context, key string) (*matching.Verdict, bool, error)
	Set(ctx context.Context, key string, v *matching.Verdict, ttl time.Duration) error
}

// RedisCache keeps verdicts as JSON strings with a TTL.
type RedisCache struct {
	rdb redis.UniversalClient
}

func NewRedisCache(rdb redis.UniversalClient) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*matching.Verdict, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var v matching.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v *matching.Verdict, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// cacheKey identifies a question: the model, the normalized query and the
// ids of the candidates in the order they were shown.
func cacheKey(model, query string, candidates []matching.Candidate) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(textnorm.Normalize(query)))
	for _, c := range candidates {
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(c.Product.ID, 10)))
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
