package helper

import (
	"encoding/json"
	"testing"
	"time"

	"Attendance-App/internal/domain/model"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteToLineString(t *testing.T) {
	route := routeOf([]model.LocationSample{
		{Latitude: 40.7128, Longitude: -74.0060},
		{Latitude: 40.7589, Longitude: -73.9851},
	})

	ls := RouteToLineString(route)
	require.Len(t, ls, 2)
	// GeoJSONは [lon, lat]
	assert.Equal(t, orb.Point{-74.0060, 40.7128}, ls[0])
}

func TestRouteBounds(t *testing.T) {
	assert.Nil(t, RouteBounds(model.Route{}))

	bounds := RouteBounds(routeOf([]model.LocationSample{
		{Latitude: 35.0, Longitude: 135.8},
		{Latitude: 34.9, Longitude: 135.9},
		{Latitude: 35.1, Longitude: 135.7},
	}))
	require.NotNil(t, bounds)
	assert.Equal(t, [4]float64{135.7, 34.9, 135.9, 35.1}, *bounds)
}

func TestTrailViewToFeatureCollection(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 10, 0, 0, time.UTC)
	samples := []model.LocationSample{
		{Latitude: 40.7128, Longitude: -74.0060, Timestamp: ts.Add(-10 * time.Minute)},
		{Latitude: 40.7589, Longitude: -73.9851, Timestamp: ts},
	}
	route := routeOf(samples)
	view := &model.TrailView{
		Date:    "2024-01-01",
		Samples: samples,
		Stats:   model.RouteStats{TotalDistanceKm: 5.42, PointCount: 2},
		Anchor:  &samples[1],
		Bounds:  RouteBounds(route),
	}

	t.Run("LineStringとアンカーPoint", func(t *testing.T) {
		fc := TrailViewToFeatureCollection(view)
		require.Len(t, fc.Features, 2)

		assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
		assert.Equal(t, "route", fc.Features[0].Properties["kind"])
		assert.Equal(t, 5.42, fc.Features[0].Properties["total_distance_km"])
		assert.Equal(t, "2024-01-01", fc.Features[0].Properties["date"])

		assert.Equal(t, "Point", fc.Features[1].Geometry.GeoJSONType())
		assert.Equal(t, orb.Point{-73.9851, 40.7589}, fc.Features[1].Geometry)
		assert.Len(t, fc.BBox, 4)
	})

	t.Run("1点のみはアンカーだけ", func(t *testing.T) {
		single := &model.TrailView{Samples: samples[:1], Anchor: &samples[0]}
		fc := TrailViewToFeatureCollection(single)
		require.Len(t, fc.Features, 1)
		assert.Equal(t, "anchor", fc.Features[0].Properties["kind"])
	})

	t.Run("空のトレイル", func(t *testing.T) {
		fc := TrailViewToFeatureCollection(&model.TrailView{})
		assert.Empty(t, fc.Features)

		data, err := json.Marshal(fc)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"FeatureCollection"`)
	})
}

func routeOf(samples []model.LocationSample) model.Route {
	return model.Route{Samples: samples}
}
