package repository

import (
	"context"
	"time"

	"Attendance-App/internal/domain/model"
)

// TrailSnapshotRepository は処理済みトレイルの一時キャッシュ
type TrailSnapshotRepository interface {
	// Save はトレイルを保存し、スナップショットIDを返す
	Save(ctx context.Context, view *model.TrailView, ttl time.Duration) (string, error)

	// Get はスナップショットを取得する。存在しない・期限切れの場合は model.ErrSnapshotNotFound
	Get(ctx context.Context, snapshotID string) (*model.TrailView, error)
}
