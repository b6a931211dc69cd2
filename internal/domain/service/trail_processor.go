package service

import (
	"Attendance-App/internal/domain/helper"
	"Attendance-App/internal/domain/model"
	"sort"
	"time"
)

// TrailProcessor は生の位置サンプルから表示用ルートと統計を組み立てる
// すべての操作は入力を変更しない純粋関数で、並行に呼び出してよい
type TrailProcessor interface {
	// BuildRoute は無効なサンプルと(0,0)を除外したルートを入力順のまま返す
	BuildRoute(samples []*model.RawLocationSample) model.Route

	// BuildRouteWithReport はBuildRouteと同じルートに除外理由の内訳を添えて返す
	BuildRouteWithReport(samples []*model.RawLocationSample) (model.Route, model.FilterReport)

	// FilterSamples は型付きのサンプルに同じ検証規則を適用する
	FilterSamples(samples []model.LocationSample) model.Route

	// ComputeRouteStats はルートの総距離などを計算する
	ComputeRouteStats(route model.Route) model.RouteStats

	// BucketByDate は指定日の [00:00, 翌日00:00) に含まれるサンプルだけのルートを返す
	BucketByDate(route model.Route, date model.CalendarDate, loc *time.Location) model.Route

	// GroupByDate はルートを日ごとに分割する（日付の昇順）
	GroupByDate(route model.Route, loc *time.Location) []model.DateBucket

	// SelectDisplayAnchor は地図の中心に使う最新のサンプルを返す。空ならnil
	SelectDisplayAnchor(route model.Route) *model.LocationSample
}

// sampleVerdict サンプルの判定結果
type sampleVerdict int

const (
	verdictKeep sampleVerdict = iota
	verdictSentinel
	verdictMalformed
	verdictOutOfRange
)

// trailProcessorImpl はTrailProcessorの実装
type trailProcessorImpl struct{}

// NewTrailProcessor は新しいTrailProcessorインスタンスを作成
func NewTrailProcessor() TrailProcessor {
	return &trailProcessorImpl{}
}

func (p *trailProcessorImpl) BuildRoute(samples []*model.RawLocationSample) model.Route {
	route, _ := p.BuildRouteWithReport(samples)
	return route
}

func (p *trailProcessorImpl) BuildRouteWithReport(samples []*model.RawLocationSample) (model.Route, model.FilterReport) {
	report := model.FilterReport{Total: len(samples)}
	kept := make([]model.LocationSample, 0, len(samples))

	for _, raw := range samples {
		switch classifyRaw(raw) {
		case verdictSentinel:
			report.Sentinel++
			continue
		case verdictMalformed:
			report.Malformed++
			continue
		case verdictOutOfRange:
			report.OutOfRange++
			continue
		}
		kept = append(kept, model.LocationSample{
			Latitude:  raw.Latitude.Value,
			Longitude: raw.Longitude.Value,
			Timestamp: raw.Timestamp,
		})
	}

	report.Kept = len(kept)
	return model.Route{Samples: kept}, report
}

func (p *trailProcessorImpl) FilterSamples(samples []model.LocationSample) model.Route {
	kept := make([]model.LocationSample, 0, len(samples))
	for _, s := range samples {
		if classifyCoordinate(s.Latitude, s.Longitude) == verdictKeep {
			kept = append(kept, s)
		}
	}
	return model.Route{Samples: kept}
}

func (p *trailProcessorImpl) ComputeRouteStats(route model.Route) model.RouteStats {
	stats := model.RouteStats{PointCount: route.Len()}
	if route.IsEmpty() {
		return stats
	}

	if first := route.Samples[0].Timestamp; !first.IsZero() {
		stats.StartedAt = &first
	}
	if last := route.Samples[route.Len()-1].Timestamp; !last.IsZero() {
		stats.EndedAt = &last
	}

	if route.Len() < 2 {
		return stats
	}

	var total float64
	for _, segment := range helper.SegmentDistances(route.Samples) {
		total += segment
	}
	stats.RawDistanceKm = total
	stats.TotalDistanceKm = helper.RoundHalfAwayFromZero(total, 2)
	return stats
}

func (p *trailProcessorImpl) BucketByDate(route model.Route, date model.CalendarDate, loc *time.Location) model.Route {
	if loc == nil {
		loc = time.UTC
	}
	matched := make([]model.LocationSample, 0)
	for _, s := range route.Samples {
		if date.Contains(s.Timestamp, loc) {
			matched = append(matched, s)
		}
	}
	return model.Route{Samples: matched}
}

func (p *trailProcessorImpl) GroupByDate(route model.Route, loc *time.Location) []model.DateBucket {
	if loc == nil {
		loc = time.UTC
	}

	index := make(map[model.CalendarDate]int)
	buckets := make([]model.DateBucket, 0)
	for _, s := range route.Samples {
		if s.Timestamp.IsZero() {
			continue
		}
		date := model.DateOf(s.Timestamp, loc)
		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, model.DateBucket{Date: date, Route: model.Route{Samples: []model.LocationSample{}}})
		}
		buckets[i].Route.Samples = append(buckets[i].Route.Samples, s)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets
}

func (p *trailProcessorImpl) SelectDisplayAnchor(route model.Route) *model.LocationSample {
	if route.IsEmpty() {
		return nil
	}
	anchor := route.Samples[route.Len()-1]
	return &anchor
}

// classifyRaw は生サンプルを判定する
func classifyRaw(raw *model.RawLocationSample) sampleVerdict {
	if raw == nil || !raw.Latitude.Valid || !raw.Longitude.Valid {
		return verdictMalformed
	}
	return classifyCoordinate(raw.Latitude.Value, raw.Longitude.Value)
}

// classifyCoordinate は数値座標を判定する
func classifyCoordinate(lat, lng float64) sampleVerdict {
	if !helper.IsFiniteCoordinate(lat, lng) {
		return verdictMalformed
	}
	if helper.IsNoFixSentinel(lat, lng) {
		return verdictSentinel
	}
	if !helper.IsValidCoordinate(lat, lng) {
		return verdictOutOfRange
	}
	return verdictKeep
}
