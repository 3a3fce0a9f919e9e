package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ratingKeyPrefix = "content:rating:"
	ratingTTL       = time.Hour
)

// RatingCache holds the average rating and feedback count per content item.
type RatingCache interface {
	Get(ctx context.Context, contentID string) (average float64, count int64, ok bool, err error)
	Set(ctx context.Context, contentID string, average float64, count int64) error
	Invalidate(ctx context.Context, contentID string) error
}

type redisRatingCache struct {
	client *redis.Client
}

func NewRatingCache(client *redis.Client) RatingCache {
	return &redisRatingCache{client: client}
}

func (c *redisRatingCache) Get(ctx context.Context, contentID string) (float64, int64, bool, error) {
	values, err := c.client.HGetAll(ctx, ratingKeyPrefix+contentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	if len(values) == 0 {
		return 0, 0, false, nil
	}

	average, err := strconv.ParseFloat(values["average"], 64)
	if err != nil {
		return 0, 0, false, nil
	}
	count, err := strconv.ParseInt(values["count"], 10, 64)
	if err != nil {
		return 0, 0, false, nil
	}
	return average, count, true, nil
}

func (c *redisRatingCache) Set(ctx context.Context, contentID string, average float64, count int64) error {
	key := ratingKeyPrefix + contentID
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, "average", strconv.FormatFloat(average, 'f', -1, 64), "count", count)
	pipe.Expire(ctx, key, ratingTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisRatingCache) Invalidate(ctx context.Context, contentID string) error {
	return c.client.Del(ctx, ratingKeyPrefix+contentID).Err()
}
