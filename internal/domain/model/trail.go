package model

import "time"

// SampleQuery 位置履歴の取得条件。From/To がゼロ値の場合は無制限
type SampleQuery struct {
	UserID string
	From   time.Time
	To     time.Time
}

// ProcessTrailRequest POST /trails/process のリクエストボディ
type ProcessTrailRequest struct {
	Samples  []*RawLocationSample `json:"samples"`
	Date     string               `json:"date"`      // 任意：YYYY-MM-DD
	TimeZone string               `json:"time_zone"` // 任意：IANAタイムゾーン名
}

// TrailView 地図描画側に渡すトレイルの表示用データ
type TrailView struct {
	SnapshotID string           `json:"snapshot_id,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	Date       string           `json:"date,omitempty"`
	TimeZone   string           `json:"time_zone"`
	Path       [][2]float64     `json:"path"` // [lat, lon]
	Samples    []LocationSample `json:"samples"`
	Stats      RouteStats       `json:"stats"`
	Anchor     *LocationSample  `json:"anchor"` // ルートが空の場合はnull
	Bounds     *[4]float64      `json:"bounds,omitempty"` // [minLon, minLat, maxLon, maxLat]
	Report     FilterReport     `json:"report"`
	Days       []DayBreakdown   `json:"days,omitempty"` // 日付で絞り込まない場合のみ
}

// DayBreakdown 複数日にまたがるトレイルの1日分の内訳
type DayBreakdown struct {
	Date            string          `json:"date"`
	PointCount      int             `json:"point_count"`
	TotalDistanceKm float64         `json:"total_distance_km"`
	Anchor          *LocationSample `json:"anchor"`
}

// UserDailySummary 管理画面の一覧向けの1ユーザー1日分の集計
type UserDailySummary struct {
	UserID          string          `json:"user_id"`
	TotalDistanceKm float64         `json:"total_distance_km"`
	PointCount      int             `json:"point_count"`
	Anchor          *LocationSample `json:"anchor"`
	Error           string          `json:"error,omitempty"`
}

// DailySummaryResponse GET /trails/summary のレスポンス
type DailySummaryResponse struct {
	Date      string             `json:"date"`
	TimeZone  string             `json:"time_zone"`
	Summaries []UserDailySummary `json:"summaries"`
}

// FirestoreTrailSample Firestoreはネストした配列を保存できないためサンプルをマップとして持つ
type FirestoreTrailSample struct {
	Latitude  float64   `firestore:"latitude"`
	Longitude float64   `firestore:"longitude"`
	Timestamp time.Time `firestore:"timestamp"`
}

// FirestoreTrailSnapshot FirestoreのtrailSnapshotsドキュメント
type FirestoreTrailSnapshot struct {
	UserID          string                 `firestore:"user_id"`
	Date            string                 `firestore:"date"`
	TimeZone        string                 `firestore:"time_zone"`
	Samples         []FirestoreTrailSample `firestore:"samples"`
	TotalDistanceKm float64                `firestore:"total_distance_km"`
	RawDistanceKm   float64                `firestore:"raw_distance_km"`
	Report          map[string]int         `firestore:"report"`
	CreatedAt       time.Time              `firestore:"createdAt"`
	ExpireAt        time.Time              `firestore:"expireAt"`
}

// ToFirestoreTrailSnapshot TrailViewをFirestore保存用の構造体に変換
func (v *TrailView) ToFirestoreTrailSnapshot(ttl time.Duration) *FirestoreTrailSnapshot {
	now := time.Now()
	samples := make([]FirestoreTrailSample, len(v.Samples))
	for i, s := range v.Samples {
		samples[i] = FirestoreTrailSample{Latitude: s.Latitude, Longitude: s.Longitude, Timestamp: s.Timestamp}
	}
	return &FirestoreTrailSnapshot{
		UserID:          v.UserID,
		Date:            v.Date,
		TimeZone:        v.TimeZone,
		Samples:         samples,
		TotalDistanceKm: v.Stats.TotalDistanceKm,
		RawDistanceKm:   v.Stats.RawDistanceKm,
		Report: map[string]int{
			"total":        v.Report.Total,
			"kept":         v.Report.Kept,
			"sentinel":     v.Report.Sentinel,
			"malformed":    v.Report.Malformed,
			"out_of_range": v.Report.OutOfRange,
		},
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
	}
}

// ToSamples Firestoreのサンプルをドメインのサンプルに戻す
func (fs *FirestoreTrailSnapshot) ToSamples() []LocationSample {
	samples := make([]LocationSample, len(fs.Samples))
	for i, s := range fs.Samples {
		samples[i] = LocationSample{Latitude: s.Latitude, Longitude: s.Longitude, Timestamp: s.Timestamp}
	}
	return samples
}

// ToFilterReport 保存されたレポートを復元
func (fs *FirestoreTrailSnapshot) ToFilterReport() FilterReport {
	return FilterReport{
		Total:      fs.Report["total"],
		Kept:       fs.Report["kept"],
		Sentinel:   fs.Report["sentinel"],
		Malformed:  fs.Report["malformed"],
		OutOfRange: fs.Report["out_of_range"],
	}
}

// IsExpired TTLによる削除前に読まれた期限切れドキュメントかどうか
func (fs *FirestoreTrailSnapshot) IsExpired(now time.Time) bool {
	return !fs.ExpireAt.IsZero() && now.After(fs.ExpireAt)
}
