package repository

import (
	"context"

	"Attendance-App/internal/domain/model"
)

// LocationHistoryRepository は従業員の位置履歴を取得するリポジトリインターフェース
type LocationHistoryRepository interface {
	// ListSamples は条件に合う位置サンプルを記録時刻の昇順で返す（未検証のまま）
	ListSamples(ctx context.Context, query model.SampleQuery) ([]*model.RawLocationSample, error)
}
