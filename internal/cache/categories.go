package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   2,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// CategoryCache stores the whole category list under one key.
type CategoryCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewCategoryCache(client *redis.Client, prefix string, ttl time.Duration) *CategoryCache {
	return &CategoryCache{Client: client, Prefix: prefix, TTL: ttl}
}

func (c *CategoryCache) key() string {
	if c.Prefix == "" {
		return "categories:all"
	}
	return c.Prefix + ":categories:all"
}

func (c *CategoryCache) GetCategories(ctx context.Context) ([]models.Category, bool, error) {
	data, err := c.Client.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key(), err)
	}

	items, err := decodeCategories(data)
	if err != nil {
		logging.FromContext(ctx).Warn("category_cache_corrupt", "key", c.key(), "error", err)
		_ = c.Client.Del(ctx, c.key()).Err()
		return nil, false, nil
	}
	return items, true, nil
}

func (c *CategoryCache) SetCategories(ctx context.Context, items []models.Category) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := c.Client.Set(ctx, c.key(), data, c.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key(), err)
	}
	return nil
}

func (c *CategoryCache) InvalidateCategories(ctx context.Context) error {
	if err := c.Client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", c.key(), err)
	}
	return nil
}

func decodeCategories(data []byte) ([]models.Category, error) {
	var items []models.Category
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}
