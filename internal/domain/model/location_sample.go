package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexFloat 数値または数値文字列として届く座標値
// Valid が false の場合は数値として解釈できなかったことを示す
type FlexFloat struct {
	Value float64
	Valid bool
}

// NewFlexFloat 数値からFlexFloatを作成
func NewFlexFloat(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}

// ParseFlexFloat 文字列をFlexFloatに変換（空文字や非数値は無効値）
func ParseFlexFloat(s string) FlexFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return FlexFloat{}
	}
	return FlexFloat{Value: v, Valid: true}
}

// UnmarshalJSON 数値・数値文字列を受け付ける。それ以外は無効値としてエラーにしない
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*f = ParseFlexFloat(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil
		}
		*f = FlexFloat{Value: v, Valid: true}
	}
	return nil
}

// RawLocationSample 外部APIやDBから届く未検証の位置サンプル
type RawLocationSample struct {
	Latitude  FlexFloat
	Longitude FlexFloat
	Timestamp time.Time
}

type rawCoordinate struct {
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
}

type rawLocationObject struct {
	Location  *rawCoordinate  `json:"location"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// UnmarshalJSON オブジェクト形式と配列形式（[lat, lon] / [lat, lon, timestamp]）の両方を解釈する
// 形式が不正な場合も座標を無効値にするだけでエラーは返さない
func (s *RawLocationSample) UnmarshalJSON(data []byte) error {
	*s = RawLocationSample{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil
		}
		if len(elems) != 2 && len(elems) != 3 {
			return nil
		}
		_ = s.Latitude.UnmarshalJSON(elems[0])
		_ = s.Longitude.UnmarshalJSON(elems[1])
		if len(elems) == 3 {
			s.Timestamp = parseTimestampJSON(elems[2])
		}
	case '{':
		var obj rawLocationObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		if obj.Location != nil {
			s.Latitude = obj.Location.Latitude
			s.Longitude = obj.Location.Longitude
		}
		s.Timestamp = parseTimestampJSON(obj.Timestamp)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp タイムスタンプ文字列を解析する。オフセットなしの値はUTCとして扱い、失敗時はゼロ値
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseTimestampJSON 文字列またはUnixミリ秒の数値を解釈する
func parseTimestampJSON(data json.RawMessage) time.Time {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return time.Time{}
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return time.Time{}
		}
		return ParseTimestamp(s)
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// LocationSample 検証済みの位置サンプル
type LocationSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// ToLatLng LocationSampleをLatLng型に変換
func (s LocationSample) ToLatLng() LatLng {
	return LatLng{Lat: s.Latitude, Lng: s.Longitude}
}

// LatLng 緯度経度を表す基本的な型
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
