package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/domain/repository"
)

const trailSnapshotKeyPrefix = "trail:snapshot:"

// RedisTrailSnapshotRepository Redisを使用したトレイルスナップショットのキャッシュ
type RedisTrailSnapshotRepository struct {
	client *redis.Client
}

// NewRedisTrailSnapshotRepository 新しいRedisTrailSnapshotRepositoryインスタンスを作成
func NewRedisTrailSnapshotRepository(client *redis.Client) repository.TrailSnapshotRepository {
	return &RedisTrailSnapshotRepository{
		client: client,
	}
}

func trailSnapshotKey(snapshotID string) string {
	return trailSnapshotKeyPrefix + snapshotID
}

func (r *RedisTrailSnapshotRepository) Save(ctx context.Context, view *model.TrailView, ttl time.Duration) (string, error) {
	snapshotID := newSnapshotID()

	stored := *view
	stored.SnapshotID = snapshotID
	payload, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("トレイルのJSONマーシャル失敗: %w", err)
	}

	if err := r.client.Set(ctx, trailSnapshotKey(snapshotID), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("トレイルスナップショットの保存に失敗しました: %w", err)
	}
	return snapshotID, nil
}

func (r *RedisTrailSnapshotRepository) Get(ctx context.Context, snapshotID string) (*model.TrailView, error) {
	payload, err := r.client.Get(ctx, trailSnapshotKey(snapshotID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", model.ErrSnapshotNotFound, snapshotID)
		}
		return nil, fmt.Errorf("トレイルスナップショットの取得に失敗しました: %w", err)
	}

	var view model.TrailView
	if err := json.Unmarshal(payload, &view); err != nil {
		return nil, fmt.Errorf("トレイルのJSONアンマーシャル失敗: %w", err)
	}
	return &view, nil
}
