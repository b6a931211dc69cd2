package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/infrastructure/database"
)

func TestBuildListSamplesQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	t.Run("期間指定なし", func(t *testing.T) {
		sqlText, args := buildListSamplesQuery(model.SampleQuery{UserID: "user-1"})
		assert.Equal(t, "SELECT latitude::text, longitude::text, recorded_at FROM location_history WHERE user_id = $1 ORDER BY recorded_at ASC", sqlText)
		assert.Equal(t, []any{"user-1"}, args)
	})

	t.Run("期間指定あり", func(t *testing.T) {
		sqlText, args := buildListSamplesQuery(model.SampleQuery{UserID: "user-1", From: from, To: to})
		assert.Contains(t, sqlText, "AND recorded_at >= $2 AND recorded_at < $3 ORDER BY")
		assert.Equal(t, []any{"user-1", from, to}, args)
	})

	t.Run("終了のみ", func(t *testing.T) {
		sqlText, args := buildListSamplesQuery(model.SampleQuery{UserID: "user-1", To: to})
		assert.Contains(t, sqlText, "AND recorded_at < $2")
		assert.Len(t, args, 2)
	})
}

func TestRowToRawSample(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	sample := rowToRawSample(
		sql.NullString{String: "35.0045", Valid: true},
		sql.NullString{String: "135.7688", Valid: true},
		sql.NullTime{Time: ts, Valid: true},
	)
	assert.Equal(t, model.NewFlexFloat(35.0045), sample.Latitude)
	assert.Equal(t, model.NewFlexFloat(135.7688), sample.Longitude)
	assert.Equal(t, ts, sample.Timestamp)

	nullRow := rowToRawSample(sql.NullString{}, sql.NullString{String: "1", Valid: true}, sql.NullTime{})
	assert.False(t, nullRow.Latitude.Valid)
	assert.True(t, nullRow.Longitude.Valid)
	assert.True(t, nullRow.Timestamp.IsZero())
}

func TestDecodeLocationHistoryRows(t *testing.T) {
	data := []byte(`[
		{"latitude": 35.0045, "longitude": 135.7688, "recorded_at": "2024-01-01T10:00:00+00:00"},
		{"latitude": "35.01", "longitude": "135.77", "recorded_at": "2024-01-01T10:05:00.123456"},
		{"latitude": null, "longitude": 135.77, "recorded_at": null},
		null
	]`)

	samples, err := decodeLocationHistoryRows(data)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, model.NewFlexFloat(35.0045), samples[0].Latitude)
	assert.True(t, samples[0].Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, model.NewFlexFloat(35.01), samples[1].Latitude)
	assert.True(t, samples[1].Timestamp.Equal(time.Date(2024, 1, 1, 10, 5, 0, 123456000, time.UTC)))

	assert.False(t, samples[2].Latitude.Valid)
	assert.True(t, samples[2].Timestamp.IsZero())

	assert.Nil(t, samples[3])

	_, err = decodeLocationHistoryRows([]byte(`{"message":"error"}`))
	assert.Error(t, err)
}

func TestSupabaseLocationHistoryRepository_Integration(t *testing.T) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	anonKey := os.Getenv("SUPABASE_ANON_KEY")
	userID := os.Getenv("TEST_LOCATION_USER_ID")
	if supabaseURL == "" || anonKey == "" || userID == "" {
		t.Skip("環境変数が設定されていません。統合テストをスキップします。")
	}

	client, err := database.NewSupabaseClient(supabaseURL, anonKey)
	require.NoError(t, err)

	repo := NewSupabaseLocationHistoryRepository(client)
	samples, err := repo.ListSamples(context.Background(), model.SampleQuery{
		UserID: userID,
		From:   time.Now().Add(-7 * 24 * time.Hour),
		To:     time.Now(),
	})
	require.NoError(t, err)
	t.Logf("📊 取得した位置サンプル: %d件", len(samples))
}

func TestPostgresLocationHistoryRepository_Integration(t *testing.T) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	password := os.Getenv("SUPABASE_DB_PASSWORD")
	userID := os.Getenv("TEST_LOCATION_USER_ID")
	if supabaseURL == "" || password == "" || userID == "" {
		t.Skip("環境変数が設定されていません。統合テストをスキップします。")
	}

	client, err := database.NewPostgreSQLClient(supabaseURL, password)
	require.NoError(t, err)
	defer client.Close()

	repo := NewPostgresLocationHistoryRepository(client)
	samples, err := repo.ListSamples(context.Background(), model.SampleQuery{UserID: userID})
	require.NoError(t, err)

	for i := 1; i < len(samples); i++ {
		assert.False(t, samples[i].Timestamp.Before(samples[i-1].Timestamp), "recorded_atの昇順")
	}
}

func TestListSamples_RequiresUserID(t *testing.T) {
	ctx := context.Background()

	_, err := NewPostgresLocationHistoryRepository(&database.PostgreSQLClient{}).ListSamples(ctx, model.SampleQuery{})
	assert.Error(t, err)

	_, err = NewSupabaseLocationHistoryRepository(&database.SupabaseClient{}).ListSamples(ctx, model.SampleQuery{})
	assert.Error(t, err)
}
