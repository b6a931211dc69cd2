package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/domain/repository"
	"Attendance-App/internal/infrastructure/database"
)

// PostgresLocationHistoryRepository location_historyテーブルから位置履歴を読み込む
type PostgresLocationHistoryRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresLocationHistoryRepository 新しいPostgresLocationHistoryRepositoryを作成
func NewPostgresLocationHistoryRepository(client *database.PostgreSQLClient) repository.LocationHistoryRepository {
	return &PostgresLocationHistoryRepository{
		client: client,
	}
}

// buildListSamplesQuery 取得条件からSQLと引数を組み立てる
// 座標は文字列として読み、数値文字列の変換はFlexFloatに任せる
func buildListSamplesQuery(query model.SampleQuery) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT latitude::text, longitude::text, recorded_at FROM location_history WHERE user_id = $1`)
	args := []any{query.UserID}

	if !query.From.IsZero() {
		args = append(args, query.From)
		fmt.Fprintf(&sb, " AND recorded_at >= $%d", len(args))
	}
	if !query.To.IsZero() {
		args = append(args, query.To)
		fmt.Fprintf(&sb, " AND recorded_at < $%d", len(args))
	}
	sb.WriteString(" ORDER BY recorded_at ASC")

	return sb.String(), args
}

func (r *PostgresLocationHistoryRepository) ListSamples(ctx context.Context, query model.SampleQuery) ([]*model.RawLocationSample, error) {
	if query.UserID == "" {
		return nil, fmt.Errorf("ユーザーIDは必須です")
	}

	sqlText, args := buildListSamplesQuery(query)
	rows, err := r.client.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("位置履歴の取得に失敗: %w", err)
	}
	defer rows.Close()

	samples := make([]*model.RawLocationSample, 0)
	for rows.Next() {
		var lat, lng sql.NullString
		var recordedAt sql.NullTime
		if err := rows.Scan(&lat, &lng, &recordedAt); err != nil {
			return nil, fmt.Errorf("位置履歴の読み取りに失敗: %w", err)
		}
		samples = append(samples, rowToRawSample(lat, lng, recordedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("位置履歴の走査に失敗: %w", err)
	}

	return samples, nil
}

// rowToRawSample NULLを含む行を未検証サンプルに変換
func rowToRawSample(lat, lng sql.NullString, recordedAt sql.NullTime) *model.RawLocationSample {
	sample := &model.RawLocationSample{}
	if lat.Valid {
		sample.Latitude = model.ParseFlexFloat(lat.String)
	}
	if lng.Valid {
		sample.Longitude = model.ParseFlexFloat(lng.String)
	}
	if recordedAt.Valid {
		sample.Timestamp = recordedAt.Time
	}
	return sample
}
