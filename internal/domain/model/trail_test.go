package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailView_ToFirestoreTrailSnapshot(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	view := &TrailView{
		UserID:   "user-1",
		Date:     "2024-01-01",
		TimeZone: "Asia/Tokyo",
		Samples: []LocationSample{
			{Latitude: 35.0, Longitude: 135.7, Timestamp: ts},
			{Latitude: 35.1, Longitude: 135.8, Timestamp: ts.Add(time.Minute)},
		},
		Stats:  RouteStats{TotalDistanceKm: 14.22, RawDistanceKm: 14.2213, PointCount: 2},
		Report: FilterReport{Total: 4, Kept: 2, Sentinel: 1, Malformed: 1},
	}

	doc := view.ToFirestoreTrailSnapshot(2 * time.Hour)

	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, "Asia/Tokyo", doc.TimeZone)
	require.Len(t, doc.Samples, 2)
	assert.Equal(t, 2*time.Hour, doc.ExpireAt.Sub(doc.CreatedAt))
	assert.Equal(t, view.Samples, doc.ToSamples())
	assert.Equal(t, view.Report, doc.ToFilterReport())
}

func TestFirestoreTrailSnapshot_IsExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, (&FirestoreTrailSnapshot{ExpireAt: now.Add(time.Minute)}).IsExpired(now))
	assert.True(t, (&FirestoreTrailSnapshot{ExpireAt: now.Add(-time.Minute)}).IsExpired(now))
	assert.False(t, (&FirestoreTrailSnapshot{}).IsExpired(now), "期限未設定は期限切れにしない")
}

func TestRoute(t *testing.T) {
	samples := []LocationSample{
		{Latitude: 1, Longitude: 2},
		{Latitude: 3, Longitude: 4},
	}

	t.Run("Pathは[lat, lon]順", func(t *testing.T) {
		assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, Route{Samples: samples}.Path())
	})

	t.Run("空のルート", func(t *testing.T) {
		route := Route{}
		assert.True(t, route.IsEmpty())
		assert.Equal(t, 0, route.Len())
		assert.Empty(t, route.Path())
	})
}

func TestFilterReport(t *testing.T) {
	r := FilterReport{Total: 10, Kept: 6, Sentinel: 2, Malformed: 1, OutOfRange: 1}
	assert.Equal(t, 4, r.Dropped())
	assert.Equal(t, 2, r.DataQualityIssues())
}
