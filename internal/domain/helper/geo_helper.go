package helper

import (
	"Attendance-App/internal/domain/model"
	"math"
	"math/big"
)

const earthRadiusKm = 6371.0

// HaversineDistance は2地点間の大円距離を計算する (km)
func HaversineDistance(p1, p2 model.LatLng) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lng1 := p1.Lng * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	lng2 := p2.Lng * math.Pi / 180
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// HaversineDistanceSample は2つのサンプル間の距離を計算する (km)
func HaversineDistanceSample(s1, s2 model.LocationSample) float64 {
	return HaversineDistance(s1.ToLatLng(), s2.ToLatLng())
}

// SegmentDistances は連続するサンプル間の区間距離を返す (km)
func SegmentDistances(samples []model.LocationSample) []float64 {
	if len(samples) < 2 {
		return []float64{}
	}
	segments := make([]float64, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		segments[i-1] = HaversineDistanceSample(samples[i-1], samples[i])
	}
	return segments
}

// RoundHalfAwayFromZero は小数点以下 places 桁で四捨五入する（0.5は0から遠い方へ）
// float64が表す正確な値で判定するため、0.015 は 0.01 になる
func RoundHalfAwayFromZero(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if places < 0 {
		places = 0
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	exact := new(big.Rat).SetFloat64(v)
	scaled := new(big.Rat).Mul(new(big.Rat).Abs(exact), new(big.Rat).SetInt(scale))

	quo, rem := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	// 余りが分母の半分以上なら切り上げ
	if rem.Lsh(rem, 1).Cmp(scaled.Denom()) >= 0 {
		quo.Add(quo, big.NewInt(1))
	}
	if exact.Sign() < 0 {
		quo.Neg(quo)
	}

	rounded, _ := new(big.Rat).SetFrac(quo, scale).Float64()
	return rounded
}

// IsFiniteCoordinate は緯度経度がともにNaN・無限大でないかチェックする
func IsFiniteCoordinate(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lng) && !math.IsInf(lat, 0) && !math.IsInf(lng, 0)
}

// IsValidCoordinate は座標が有限値かつ緯度経度の範囲内かチェックする
func IsValidCoordinate(lat, lng float64) bool {
	if !IsFiniteCoordinate(lat, lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// IsNoFixSentinel は (0,0) の測位なし値かチェックする
func IsNoFixSentinel(lat, lng float64) bool {
	return lat == 0 && lng == 0
}
