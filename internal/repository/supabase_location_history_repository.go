package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/domain/repository"
	"Attendance-App/internal/infrastructure/database"
)

type SupabaseLocationHistoryRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseLocationHistoryRepository(client *database.SupabaseClient) repository.LocationHistoryRepository {
	return &SupabaseLocationHistoryRepository{
		client: client,
	}
}

// locationHistoryRow PostgRESTが返す行。座標は数値でも文字列でもよい
type locationHistoryRow struct {
	Latitude   model.FlexFloat `json:"latitude"`
	Longitude  model.FlexFloat `json:"longitude"`
	RecordedAt string          `json:"recorded_at"`
}

func (r *SupabaseLocationHistoryRepository) ListSamples(ctx context.Context, query model.SampleQuery) ([]*model.RawLocationSample, error) {
	if query.UserID == "" {
		return nil, fmt.Errorf("ユーザーIDは必須です")
	}

	builder := r.client.GetClient().From(database.LocationHistoryTable).
		Select("latitude,longitude,recorded_at", "", false).
		Eq("user_id", query.UserID)

	if !query.From.IsZero() {
		builder = builder.Gte("recorded_at", query.From.UTC().Format(time.RFC3339Nano))
	}
	if !query.To.IsZero() {
		builder = builder.Lt("recorded_at", query.To.UTC().Format(time.RFC3339Nano))
	}

	data, _, err := builder.Order("recorded_at", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		return nil, fmt.Errorf("位置履歴の取得に失敗: %w", err)
	}

	return decodeLocationHistoryRows(data)
}

// decodeLocationHistoryRows レスポンスJSONを未検証サンプルに変換
func decodeLocationHistoryRows(data []byte) ([]*model.RawLocationSample, error) {
	var rows []*locationHistoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("位置履歴のJSONアンマーシャル失敗: %w", err)
	}

	samples := make([]*model.RawLocationSample, len(rows))
	for i, row := range rows {
		if row == nil {
			continue
		}
		samples[i] = &model.RawLocationSample{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			Timestamp: model.ParseTimestamp(row.RecordedAt),
		}
	}
	return samples, nil
}
