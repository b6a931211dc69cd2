package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Attendance-App/internal/domain/model"
)

func TestXLSXExporter_WriteTrail(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	samples := []model.LocationSample{
		{Latitude: 40.7128, Longitude: -74.006, Timestamp: ts},
		{Latitude: 40.7589, Longitude: -73.9851, Timestamp: ts.Add(10 * time.Minute)},
	}
	view := &model.TrailView{
		UserID:   "user-1",
		Date:     "2024-01-01",
		TimeZone: "Asia/Tokyo",
		Samples:  samples,
		Stats:    model.RouteStats{TotalDistanceKm: 5.42, PointCount: 2},
		Anchor:   &samples[1],
		Report:   model.FilterReport{Total: 3, Kept: 2, Sentinel: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, NewXLSXExporter().WriteTrail(&buf, view))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{trailSheet, summarySheet}, f.GetSheetList())

	t.Run("Trailシート", func(t *testing.T) {
		rows, err := f.GetRows(trailSheet)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, []string{"#", "timestamp", "latitude", "longitude", "segment_km", "cumulative_km"}, rows[0])
		// タイムスタンプはトレイルのタイムゾーンで表示
		assert.Equal(t, "2024-01-01T19:00:00+09:00", rows[1][1])
		assert.Equal(t, "0", rows[1][4])
		assert.Equal(t, "40.7589", rows[2][2])
		assert.Equal(t, "5.42", rows[2][4])
		assert.Equal(t, "5.42", rows[2][5])
	})

	t.Run("Summaryシート", func(t *testing.T) {
		rows, err := f.GetRows(summarySheet)
		require.NoError(t, err)

		values := make(map[string]string)
		for _, row := range rows {
			require.Len(t, row, 2)
			values[row[0]] = row[1]
		}
		assert.Equal(t, "user-1", values["user_id"])
		assert.Equal(t, "Asia/Tokyo", values["time_zone"])
		assert.Equal(t, "2", values["point_count"])
		assert.Equal(t, "5.42", values["total_distance_km"])
		assert.Equal(t, "1", values["dropped_samples"])
		assert.Equal(t, "40.7589", values["anchor_latitude"])
	})
}

func TestXLSXExporter_EmptyTrail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXExporter().WriteTrail(&buf, &model.TrailView{TimeZone: "UTC"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(trailSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	for _, row := range summary {
		assert.NotEqual(t, "anchor_latitude", row[0])
	}
}
