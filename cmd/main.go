package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Attendance-App/internal/config"
	"Attendance-App/internal/domain/repository"
	"Attendance-App/internal/domain/service"
	"Attendance-App/internal/handler"
	"Attendance-App/internal/infrastructure/cache"
	"Attendance-App/internal/infrastructure/database"
	"Attendance-App/internal/infrastructure/export"
	"Attendance-App/internal/infrastructure/firestore"
	repoimpl "Attendance-App/internal/repository"
	"Attendance-App/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 設定の読み込みに失敗: %v", err)
	}

	var closers []func() error
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Printf("⚠️ クローズ処理でエラー: %v", err)
			}
		}
	}()

	// 位置履歴ソース
	var locationRepo repository.LocationHistoryRepository
	var sourceHealth handler.SourceHealthChecker
	switch cfg.LocationSource {
	case config.SourcePostgres:
		pgClient, err := database.NewPostgreSQLClientWithRetry(cfg.SupabaseURL, cfg.SupabaseDBPassword, 3, 2*time.Second)
		if err != nil {
			log.Fatalf("❌ PostgreSQLクライアント初期化失敗: %v", err)
		}
		closers = append(closers, pgClient.Close)
		locationRepo = repoimpl.NewPostgresLocationHistoryRepository(pgClient)
		sourceHealth = pgClient
		log.Printf("✅ 位置履歴ソース: PostgreSQL")
	case config.SourceSupabase:
		supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			log.Fatalf("❌ Supabaseクライアント初期化失敗: %v", err)
		}
		locationRepo = repoimpl.NewSupabaseLocationHistoryRepository(supabaseClient)
		sourceHealth = supabaseClient
		log.Printf("✅ 位置履歴ソース: Supabase")
	default:
		log.Printf("ℹ️ 位置履歴ソース未設定: /users/:id/trail と /trails/summary は503を返します")
	}

	// スナップショット保存先
	var snapshotRepo repository.TrailSnapshotRepository
	switch cfg.SnapshotStore {
	case config.StoreFirestore:
		fsClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
		if err != nil {
			log.Fatalf("❌ Firestoreクライアント初期化失敗: %v", err)
		}
		closers = append(closers, fsClient.Close)
		snapshotRepo = repoimpl.NewFirestoreTrailSnapshotRepository(fsClient.GetClient())
		log.Printf("✅ スナップショット保存先: Firestore")
	case config.StoreRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("❌ Redisクライアント初期化失敗: %v", err)
		}
		closers = append(closers, redisClient.Close)
		snapshotRepo = repoimpl.NewRedisTrailSnapshotRepository(redisClient)
		log.Printf("✅ スナップショット保存先: Redis")
	default:
		log.Printf("ℹ️ スナップショット保存先未設定: キャッシュなしで動作します")
	}

	trailUseCase := usecase.NewTrailUseCase(
		service.NewTrailProcessor(),
		locationRepo,
		snapshotRepo,
		usecase.TrailUseCaseOptions{
			SnapshotTTL:        cfg.SnapshotTTL(),
			SummaryConcurrency: cfg.SummaryConcurrency,
		},
	)
	trailHandler := handler.NewTrailHandler(trailUseCase, export.NewXLSXExporter(), export.XLSXContentType, cfg.Location(), sourceHealth)
	if cfg.JWTSecret == "" {
		log.Printf("⚠️ JWT_SECRETが未設定のため認証なしで起動します")
	}
	router := handler.NewRouter(trailHandler, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Attendance-App server starting on :%s (tz=%s)", cfg.Port, cfg.Location())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ サーバー起動失敗: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("🛑 シャットダウン開始")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ シャットダウン中にエラー: %v", err)
	}
	log.Printf("👋 サーバーを停止しました")
}
