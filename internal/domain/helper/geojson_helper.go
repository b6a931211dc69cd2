package helper

import (
	"Attendance-App/internal/domain/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RouteToLineString RouteをGeoJSON順序 [lon, lat] のorb.LineStringに変換
func RouteToLineString(route model.Route) orb.LineString {
	ls := make(orb.LineString, len(route.Samples))
	for i, s := range route.Samples {
		ls[i] = orb.Point{s.Longitude, s.Latitude}
	}
	return ls
}

// RouteBounds ルートの境界ボックス [minLon, minLat, maxLon, maxLat]。空の場合はnil
func RouteBounds(route model.Route) *[4]float64 {
	if route.IsEmpty() {
		return nil
	}
	bound := RouteToLineString(route).Bound()
	return &[4]float64{bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()}
}

// TrailViewToFeatureCollection TrailViewをGeoJSONのFeatureCollectionに変換
// ルートはLineString、表示アンカーはPointとして出力する
func TrailViewToFeatureCollection(view *model.TrailView) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	route := model.Route{Samples: view.Samples}
	if route.Len() >= 2 {
		line := geojson.NewFeature(RouteToLineString(route))
		line.Properties["kind"] = "route"
		line.Properties["total_distance_km"] = view.Stats.TotalDistanceKm
		line.Properties["point_count"] = view.Stats.PointCount
		if view.Date != "" {
			line.Properties["date"] = view.Date
		}
		fc.Append(line)
	}

	if view.Anchor != nil {
		anchor := geojson.NewFeature(orb.Point{view.Anchor.Longitude, view.Anchor.Latitude})
		anchor.Properties["kind"] = "anchor"
		if !view.Anchor.Timestamp.IsZero() {
			anchor.Properties["timestamp"] = view.Anchor.Timestamp
		}
		fc.Append(anchor)
	}

	if view.Bounds != nil {
		fc.BBox = geojson.BBox{view.Bounds[0], view.Bounds[1], view.Bounds[2], view.Bounds[3]}
	}

	return fc
}
