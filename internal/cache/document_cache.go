package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
)

// DocumentListCache keeps each user's full document list for a short TTL.
// Writes invalidate the whole key; the next list rebuilds it from MySQL.
type DocumentListCache struct {
	client  *redisv9.Client
	listTTL time.Duration
}

func NewDocumentListCache(client *redisv9.Client, listTTL time.Duration) *DocumentListCache {
	if listTTL <= 0 {
		listTTL = 60 * time.Second
	}
	return &DocumentListCache{
		client:  client,
		listTTL: listTTL,
	}
}

func (c *DocumentListCache) GetList(ctx context.Context, userID uint) ([]model.Document, bool, error) {
	key := c.listKey(userID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get document list failed: %w", err)
	}

	var documents []model.Document
	if err := json.Unmarshal([]byte(raw), &documents); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached document list failed: %w", err)
	}
	return documents, true, nil
}

func (c *DocumentListCache) SetList(ctx context.Context, userID uint, documents []model.Document) error {
	key := c.listKey(userID)
	payload, err := json.Marshal(documents)
	if err != nil {
		return fmt.Errorf("marshal document list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.listTTL).Err(); err != nil {
		return fmt.Errorf("redis set document list failed: %w", err)
	}
	return nil
}

func (c *DocumentListCache) Invalidate(ctx context.Context, userID uint) error {
	key := c.listKey(userID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis invalidate document list failed: %w", err)
	}
	return nil
}

func (c *DocumentListCache) listKey(userID uint) string {
	return fmt.Sprintf("documents:list:%d", userID)
}
