package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/redis/go-redis/v9"
)

const notificationKeyPrefix = "castqueue:user:"

type RedisNotificationStore struct {
	client *redis.Client
}

func NewRedisNotificationStore(client *redis.Client) *RedisNotificationStore {
	return &RedisNotificationStore{client: client}
}

func (r *RedisNotificationStore) Get(ctx context.Context, fid int64) (*models.NotificationDetails, error) {
	data, err := r.client.Get(ctx, notificationKey(fid)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification details: %w", err)
	}

	var details models.NotificationDetails
	if err := json.Unmarshal([]byte(data), &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification details: %w", err)
	}
	return &details, nil
}

func (r *RedisNotificationStore) Set(ctx context.Context, fid int64, details *models.NotificationDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal notification details: %w", err)
	}

	if err := r.client.Set(ctx, notificationKey(fid), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set notification details: %w", err)
	}
	return nil
}

func (r *RedisNotificationStore) Delete(ctx context.Context, fid int64) error {
	if err := r.client.Del(ctx, notificationKey(fid)).Err(); err != nil {
		return fmt.Errorf("failed to delete notification details: %w", err)
	}
	return nil
}

// Helper: build Redis key for notification details
func notificationKey(fid int64) string {
	return fmt.Sprintf("%s%d", notificationKeyPrefix, fid)
}
