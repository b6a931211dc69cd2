package handler

import (
	"Attendance-App/internal/domain/helper"
	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/usecase"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxSummaryUsers = 100

// TrailExporter はトレイルをファイル形式で書き出す
type TrailExporter interface {
	WriteTrail(w io.Writer, view *model.TrailView) error
}

// SourceHealthChecker 位置履歴ソースの疎通確認
type SourceHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// TrailHandler はトレイルAPIのハンドラー
type TrailHandler struct {
	trailUseCase    usecase.TrailUseCase
	exporter        TrailExporter
	exportMIME      string
	defaultLocation *time.Location
	sourceHealth    SourceHealthChecker // nil可（ソース未設定）
}

// NewTrailHandler は新しいTrailHandlerインスタンスを作成
func NewTrailHandler(trailUseCase usecase.TrailUseCase, exporter TrailExporter, exportMIME string, defaultLocation *time.Location, sourceHealth SourceHealthChecker) *TrailHandler {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &TrailHandler{
		trailUseCase:    trailUseCase,
		exporter:        exporter,
		exportMIME:      exportMIME,
		defaultLocation: defaultLocation,
		sourceHealth:    sourceHealth,
	}
}

// Health はヘルスチェック。位置履歴ソースに届かない場合は503
// GET /health
func (h *TrailHandler) Health(c *gin.Context) {
	source := "not_configured"
	if h.sourceHealth != nil {
		if err := h.sourceHealth.HealthCheck(c.Request.Context()); err != nil {
			log.Printf("⚠️ 位置履歴ソースのヘルスチェック失敗: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "Attendance-App",
				"source":  "error",
				"details": err.Error(),
			})
			return
		}
		source = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Attendance-App", "source": source})
}

// PostProcessTrail は生サンプルからトレイルを組み立てるエンドポイント
// POST /trails/process
func (h *TrailHandler) PostProcessTrail(c *gin.Context) {
	var req model.ProcessTrailRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	// dateなしは絞り込まず、タイムゾーンは日ごとの内訳にだけ使う
	var filter *model.DayFilter
	if req.Date != "" {
		f, err := h.parseDayFilter(req.Date, req.TimeZone)
		if err != nil {
			respondValidationError(c, err)
			return
		}
		filter = f
	} else {
		loc, err := h.resolveLocation(req.TimeZone)
		if err != nil {
			respondValidationError(c, err)
			return
		}
		filter = &model.DayFilter{Location: loc}
	}

	view, err := h.trailUseCase.ProcessSamples(c.Request.Context(), req.Samples, filter)
	if err != nil {
		respondUseCaseError(c, "トレイルの処理に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSnapshot は保存済みのトレイルを取得するエンドポイント
// GET /trails/snapshots/:id
func (h *TrailHandler) GetSnapshot(c *gin.Context) {
	snapshotID := c.Param("id")
	if snapshotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "snapshot_idが指定されていません",
		})
		return
	}

	view, err := h.trailUseCase.GetSnapshot(c.Request.Context(), snapshotID)
	if err != nil {
		respondUseCaseError(c, "スナップショットの取得に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSummary は複数ユーザーの日次サマリーを返すエンドポイント
// GET /trails/summary?date=YYYY-MM-DD&tz=Asia/Tokyo&user_ids=a,b
func (h *TrailHandler) GetSummary(c *gin.Context) {
	filter, err := h.parseDayFilter(c.Query("date"), c.Query("tz"))
	if err != nil {
		respondValidationError(c, err)
		return
	}

	userIDs := splitUserIDs(c.Query("user_ids"))
	if len(userIDs) == 0 {
		respondValidationError(c, &ValidationError{Field: "user_ids", Message: "ユーザーIDを1件以上指定してください"})
		return
	}
	if len(userIDs) > maxSummaryUsers {
		respondValidationError(c, &ValidationError{Field: "user_ids", Message: fmt.Sprintf("ユーザーIDは%d件以下で指定してください", maxSummaryUsers)})
		return
	}

	response, err := h.trailUseCase.SummarizeUsers(c.Request.Context(), userIDs, *filter)
	if err != nil {
		respondUseCaseError(c, "日次サマリーの集計に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUserTrail はユーザーの指定日のトレイルを返すエンドポイント
// GET /users/:id/trail?date=YYYY-MM-DD&tz=Asia/Tokyo&format=json|geojson
func (h *TrailHandler) GetUserTrail(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "geojson" {
		respondValidationError(c, &ValidationError{Field: "format", Message: "formatは'json'または'geojson'を指定してください"})
		return
	}

	view, ok := h.loadUserTrail(c)
	if !ok {
		return
	}

	if format == "geojson" {
		fc := helper.TrailViewToFeatureCollection(view)
		body, err := fc.MarshalJSON()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "GeoJSONの生成に失敗しました",
				"details": err.Error(),
			})
			return
		}
		c.Data(http.StatusOK, "application/geo+json", body)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ExportUserTrail はユーザーの指定日のトレイルをExcelで返すエンドポイント
// GET /users/:id/trail/export?date=YYYY-MM-DD&tz=Asia/Tokyo
func (h *TrailHandler) ExportUserTrail(c *gin.Context) {
	view, ok := h.loadUserTrail(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteTrail(&buf, view); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "エクスポートに失敗しました",
			"details": err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("trail_%s_%s.xlsx", view.UserID, view.Date)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, h.exportMIME, buf.Bytes())
}

// loadUserTrail はパス・クエリを検証してユーザーのトレイルを取得する
func (h *TrailHandler) loadUserTrail(c *gin.Context) (*model.TrailView, bool) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "user_idが指定されていません",
		})
		return nil, false
	}

	// "me" はトークンのuser_idに置き換える
	if userID == "me" {
		claimed, ok := AuthenticatedUserID(c)
		if !ok {
			respondValidationError(c, &ValidationError{Field: "id", Message: "認証なしでは'me'を指定できません"})
			return nil, false
		}
		userID = claimed
	}

	filter, err := h.parseDayFilter(c.Query("date"), c.Query("tz"))
	if err != nil {
		respondValidationError(c, err)
		return nil, false
	}

	view, err := h.trailUseCase.GetUserTrail(c.Request.Context(), userID, *filter)
	if err != nil {
		respondUseCaseError(c, "トレイルの取得に失敗しました", err)
		return nil, false
	}
	return view, true
}

// parseDayFilter はdateとtzを検証する。tz未指定時は既定のタイムゾーンを使う
func (h *TrailHandler) parseDayFilter(date, tz string) (*model.DayFilter, error) {
	if date == "" {
		return nil, &ValidationError{Field: "date", Message: "dateは必須です (YYYY-MM-DD)"}
	}
	d, err := model.ParseCalendarDate(date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}
	loc, err := h.resolveLocation(tz)
	if err != nil {
		return nil, err
	}
	return &model.DayFilter{Date: d, Location: loc}, nil
}

// resolveLocation はリクエストのtz、なければ既定のタイムゾーンを返す
func (h *TrailHandler) resolveLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return h.defaultLocation, nil
	}
	loc, err := model.LoadTimeZone(tz)
	if err != nil {
		return nil, &ValidationError{Field: "tz", Message: err.Error()}
	}
	return loc, nil
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "バリデーションエラー",
		"details": err.Error(),
	})
}

// respondUseCaseError はエラーの種類からステータスコードを判定する
func respondUseCaseError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrSnapshotNotFound):
		status = http.StatusNotFound
		message = "スナップショットが見つかりません"
	case errors.Is(err, model.ErrSourceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidTimeZone):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func splitUserIDs(raw string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
