package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"Attendance-App/internal/domain/helper"
	"Attendance-App/internal/domain/model"
)

const (
	trailSheet   = "Trail"
	summarySheet = "Summary"

	// XLSXContentType ダウンロード時のContent-Type
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var trailHeader = []any{"#", "timestamp", "latitude", "longitude", "segment_km", "cumulative_km"}

// XLSXExporter トレイルをExcelブックとして書き出す
type XLSXExporter struct{}

// NewXLSXExporter 新しいXLSXExporterを作成
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// WriteTrail Trailシート（サンプル一覧）とSummaryシートを書き出す
// タイムスタンプはトレイルのタイムゾーンで表示する
func (e *XLSXExporter) WriteTrail(w io.Writer, view *model.TrailView) error {
	loc, err := model.LoadTimeZone(view.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", trailSheet); err != nil {
		return fmt.Errorf("シート名の設定に失敗: %w", err)
	}
	if err := f.SetSheetRow(trailSheet, "A1", &trailHeader); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗: %w", err)
	}

	segments := helper.SegmentDistances(view.Samples)
	var cumulative float64
	for i, s := range view.Samples {
		segment := 0.0
		if i > 0 {
			segment = segments[i-1]
		}
		cumulative += segment

		timestamp := ""
		if !s.Timestamp.IsZero() {
			timestamp = s.Timestamp.In(loc).Format(time.RFC3339)
		}

		row := []any{
			i + 1,
			timestamp,
			s.Latitude,
			s.Longitude,
			helper.RoundHalfAwayFromZero(segment, 3),
			helper.RoundHalfAwayFromZero(cumulative, 3),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("セル位置の計算に失敗: %w", err)
		}
		if err := f.SetSheetRow(trailSheet, cell, &row); err != nil {
			return fmt.Errorf("%d行目の書き込みに失敗: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("Summaryシートの作成に失敗: %w", err)
	}
	summary := [][]any{
		{"user_id", view.UserID},
		{"date", view.Date},
		{"time_zone", view.TimeZone},
		{"point_count", view.Stats.PointCount},
		{"total_distance_km", view.Stats.TotalDistanceKm},
		{"dropped_samples", view.Report.Dropped()},
	}
	if view.Anchor != nil {
		summary = append(summary,
			[]any{"anchor_latitude", view.Anchor.Latitude},
			[]any{"anchor_longitude", view.Anchor.Longitude},
		)
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("セル位置の計算に失敗: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("Summaryシートの書き込みに失敗: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("Excelファイルの出力に失敗: %w", err)
	}
	return nil
}
