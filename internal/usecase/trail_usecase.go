package usecase

import (
	"Attendance-App/internal/domain/helper"
	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/domain/repository"
	"Attendance-App/internal/domain/service"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const defaultSummaryConcurrency = 5

type TrailUseCase interface {
	// ProcessSamples は受け取った生サンプルからトレイルを組み立て、設定されていればスナップショットを保存する
	ProcessSamples(ctx context.Context, samples []*model.RawLocationSample, filter *model.DayFilter) (*model.TrailView, error)

	// GetUserTrail は位置履歴ソースから指定日のトレイルを組み立てる
	GetUserTrail(ctx context.Context, userID string, filter model.DayFilter) (*model.TrailView, error)

	// SummarizeUsers は複数ユーザーの指定日の移動距離を並行で集計する
	SummarizeUsers(ctx context.Context, userIDs []string, filter model.DayFilter) (*model.DailySummaryResponse, error)

	// GetSnapshot は保存済みのトレイルを取得する
	GetSnapshot(ctx context.Context, snapshotID string) (*model.TrailView, error)
}

// TrailUseCaseOptions はTrailUseCaseの任意設定
type TrailUseCaseOptions struct {
	SnapshotTTL        time.Duration
	SummaryConcurrency int
}

// trailUseCaseImpl はTrailUseCaseの実装
type trailUseCaseImpl struct {
	processor    service.TrailProcessor
	locationRepo repository.LocationHistoryRepository // nil可（ソース未設定）
	snapshotRepo repository.TrailSnapshotRepository   // nil可（キャッシュなし）
	snapshotTTL  time.Duration
	concurrency  int
}

// NewTrailUseCase は新しいTrailUseCaseインスタンスを作成
func NewTrailUseCase(
	processor service.TrailProcessor,
	locationRepo repository.LocationHistoryRepository,
	snapshotRepo repository.TrailSnapshotRepository,
	opts TrailUseCaseOptions,
) TrailUseCase {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 2 * time.Hour
	}
	if opts.SummaryConcurrency <= 0 {
		opts.SummaryConcurrency = defaultSummaryConcurrency
	}
	return &trailUseCaseImpl{
		processor:    processor,
		locationRepo: locationRepo,
		snapshotRepo: snapshotRepo,
		snapshotTTL:  opts.SnapshotTTL,
		concurrency:  opts.SummaryConcurrency,
	}
}

func (u *trailUseCaseImpl) ProcessSamples(ctx context.Context, samples []*model.RawLocationSample, filter *model.DayFilter) (*model.TrailView, error) {
	log.Printf("🚀 トレイル処理開始 (%d件のサンプル)", len(samples))

	view := u.buildView(samples, filter)

	if u.snapshotRepo != nil {
		snapshotID, err := u.snapshotRepo.Save(ctx, view, u.snapshotTTL)
		if err != nil {
			// キャッシュの失敗でレスポンスは落とさない
			log.Printf("⚠️ スナップショット保存に失敗、キャッシュなしで継続: %v", err)
		} else {
			view.SnapshotID = snapshotID
		}
	}

	log.Printf("🎉 トレイル処理完了 (%d点, %.2fkm)", view.Stats.PointCount, view.Stats.TotalDistanceKm)
	return view, nil
}

func (u *trailUseCaseImpl) GetUserTrail(ctx context.Context, userID string, filter model.DayFilter) (*model.TrailView, error) {
	if u.locationRepo == nil {
		return nil, model.ErrSourceUnavailable
	}
	if userID == "" {
		return nil, fmt.Errorf("ユーザーIDは必須です")
	}
	if filter.Location == nil {
		filter.Location = time.UTC
	}

	samples, err := u.locationRepo.ListSamples(ctx, model.SampleQuery{
		UserID: userID,
		From:   filter.Date.Start(filter.Location),
		To:     filter.Date.End(filter.Location),
	})
	if err != nil {
		return nil, fmt.Errorf("位置履歴の取得に失敗: %w", err)
	}

	view := u.buildView(samples, &filter)
	view.UserID = userID
	return view, nil
}

func (u *trailUseCaseImpl) SummarizeUsers(ctx context.Context, userIDs []string, filter model.DayFilter) (*model.DailySummaryResponse, error) {
	if u.locationRepo == nil {
		return nil, model.ErrSourceUnavailable
	}
	if filter.Location == nil {
		filter.Location = time.UTC
	}

	log.Printf("🚀 日次サマリー集計開始: %dユーザーを並行処理 (%s)", len(userIDs), filter.Date)
	start := time.Now()

	// セマフォを使用して同時実行数を制限
	semaphore := make(chan struct{}, u.concurrency)
	summaries := make([]model.UserDailySummary, len(userIDs))
	var wg sync.WaitGroup

	for i, userID := range userIDs {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				summaries[idx] = model.UserDailySummary{UserID: id, Error: ctx.Err().Error()}
				return
			}

			view, err := u.GetUserTrail(ctx, id, filter)
			if err != nil {
				log.Printf("⚠️ ユーザー %s の集計に失敗: %v", id, err)
				summaries[idx] = model.UserDailySummary{UserID: id, Error: err.Error()}
				return
			}
			summaries[idx] = model.UserDailySummary{
				UserID:          id,
				TotalDistanceKm: view.Stats.TotalDistanceKm,
				PointCount:      view.Stats.PointCount,
				Anchor:          view.Anchor,
			}
		}(i, userID)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("日次サマリー集計が中断されました: %w", err)
	}

	log.Printf("✅ 日次サマリー集計完了: %dユーザー, 処理時間 %v", len(userIDs), time.Since(start))
	return &model.DailySummaryResponse{
		Date:      filter.Date.String(),
		TimeZone:  filter.Location.String(),
		Summaries: summaries,
	}, nil
}

func (u *trailUseCaseImpl) GetSnapshot(ctx context.Context, snapshotID string) (*model.TrailView, error) {
	if u.snapshotRepo == nil {
		return nil, fmt.Errorf("%w: スナップショット保存先が設定されていません", model.ErrSnapshotNotFound)
	}

	log.Printf("📖 スナップショット取得開始 (ID: %s)", snapshotID)
	stored, err := u.snapshotRepo.Get(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, model.ErrSnapshotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("スナップショットの取得に失敗: %w", err)
	}

	// 派生値は保存先に依らず同じ処理で再計算する
	route := u.processor.FilterSamples(stored.Samples)
	view := u.viewFromRoute(route, stored.Report)
	view.SnapshotID = snapshotID
	view.UserID = stored.UserID
	view.Date = stored.Date
	if stored.TimeZone != "" {
		view.TimeZone = stored.TimeZone
	}
	if view.Date == "" {
		loc, err := model.LoadTimeZone(view.TimeZone)
		if err != nil {
			log.Printf("⚠️ 保存済みのタイムゾーンが不正なためUTCで内訳を作成: %v", err)
			loc = time.UTC
		}
		view.Days = u.dailyBreakdown(route, loc)
	}
	return view, nil
}

// buildView は生サンプルから表示用データを組み立てる
// 日付指定があればその日だけに絞り込み、なければ日ごとの内訳を添える
func (u *trailUseCaseImpl) buildView(samples []*model.RawLocationSample, filter *model.DayFilter) *model.TrailView {
	route, report := u.processor.BuildRouteWithReport(samples)
	if report.DataQualityIssues() > 0 {
		log.Printf("⚠️ 不正な位置サンプルを除外: 形式不正 %d件, 範囲外 %d件 (測位なし %d件)",
			report.Malformed, report.OutOfRange, report.Sentinel)
	}

	loc := time.UTC
	if filter != nil && filter.Location != nil {
		loc = filter.Location
	}

	if filter != nil && !filter.Date.IsZero() {
		route = u.processor.BucketByDate(route, filter.Date, loc)
		view := u.viewFromRoute(route, report)
		view.Date = filter.Date.String()
		view.TimeZone = loc.String()
		return view
	}

	view := u.viewFromRoute(route, report)
	view.TimeZone = loc.String()
	view.Days = u.dailyBreakdown(route, loc)
	return view
}

// dailyBreakdown はルートを日ごとに分けて距離とアンカーを集計する
func (u *trailUseCaseImpl) dailyBreakdown(route model.Route, loc *time.Location) []model.DayBreakdown {
	buckets := u.processor.GroupByDate(route, loc)
	days := make([]model.DayBreakdown, len(buckets))
	for i, bucket := range buckets {
		stats := u.processor.ComputeRouteStats(bucket.Route)
		days[i] = model.DayBreakdown{
			Date:            bucket.Date.String(),
			PointCount:      stats.PointCount,
			TotalDistanceKm: stats.TotalDistanceKm,
			Anchor:          u.processor.SelectDisplayAnchor(bucket.Route),
		}
	}
	return days
}

// viewFromRoute はルートから統計・アンカー・境界を導出する
func (u *trailUseCaseImpl) viewFromRoute(route model.Route, report model.FilterReport) *model.TrailView {
	return &model.TrailView{
		TimeZone: time.UTC.String(),
		Path:     route.Path(),
		Samples:  route.Samples,
		Stats:    u.processor.ComputeRouteStats(route),
		Anchor:   u.processor.SelectDisplayAnchor(route),
		Bounds:   helper.RouteBounds(route),
		Report:   report,
	}
}
