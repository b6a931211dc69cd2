package model

import "time"

// Route 検証済みサンプルの時系列順の並び
type Route struct {
	Samples []LocationSample `json:"samples"`
}

// Len ルートのサンプル数
func (r Route) Len() int {
	return len(r.Samples)
}

// IsEmpty ルートが空かどうか
func (r Route) IsEmpty() bool {
	return len(r.Samples) == 0
}

// Path 地図描画用の [lat, lon] ペアの並びを返す
func (r Route) Path() [][2]float64 {
	path := make([][2]float64, len(r.Samples))
	for i, s := range r.Samples {
		path[i] = [2]float64{s.Latitude, s.Longitude}
	}
	return path
}

// RouteStats ルートから導出される統計値
type RouteStats struct {
	TotalDistanceKm float64    `json:"total_distance_km"` // 小数第2位で四捨五入
	RawDistanceKm   float64    `json:"raw_distance_km"`   // 丸め前の合計
	PointCount      int        `json:"point_count"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

// FilterReport ルート構築時に除外されたサンプルの内訳
type FilterReport struct {
	Total      int `json:"total"`
	Kept       int `json:"kept"`
	Sentinel   int `json:"sentinel"`    // (0,0) の測位なし値
	Malformed  int `json:"malformed"`   // nil・非数値・要素数不正・非有限値
	OutOfRange int `json:"out_of_range"` // 緯度経度の範囲外
}

// Dropped 除外されたサンプル数
func (r FilterReport) Dropped() int {
	return r.Total - r.Kept
}

// DataQualityIssues 測位なし値を除いた、上流データの品質問題の件数
func (r FilterReport) DataQualityIssues() int {
	return r.Malformed + r.OutOfRange
}

// DateBucket 1日分のサブルート
type DateBucket struct {
	Date  CalendarDate `json:"date"`
	Route Route        `json:"route"`
}
