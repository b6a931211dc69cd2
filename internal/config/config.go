package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"Attendance-App/internal/domain/model"
)

// 位置履歴ソースの種類
const (
	SourceNone     = "none"
	SourcePostgres = "postgres"
	SourceSupabase = "supabase"
)

// スナップショット保存先の種類
const (
	StoreNone      = "none"
	StoreFirestore = "firestore"
	StoreRedis     = "redis"
)

// Config アプリケーション設定
type Config struct {
	Port               string
	TimeZone           string
	LocationSource     string
	SnapshotStore      string
	SnapshotTTLHours   int
	SummaryConcurrency int

	FirestoreProjectID string
	CredentialsFile    string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseDBPassword string

	RedisAddr     string
	RedisPassword string

	JWTSecret string
}

// Load .envと環境変数から設定を読み込む
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom 指定した.envファイルと環境変数から設定を読み込む
func LoadFrom(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("⚠️ .envファイルが見つかりません。システム環境変数を使用します")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("TRAIL_TIME_ZONE", "UTC")
	v.SetDefault("LOCATION_SOURCE", SourceNone)
	v.SetDefault("SNAPSHOT_STORE", StoreNone)
	v.SetDefault("SNAPSHOT_TTL_HOURS", 2)
	v.SetDefault("SUMMARY_CONCURRENCY", 5)

	cfg := &Config{
		Port:               v.GetString("PORT"),
		TimeZone:           v.GetString("TRAIL_TIME_ZONE"),
		LocationSource:     v.GetString("LOCATION_SOURCE"),
		SnapshotStore:      v.GetString("SNAPSHOT_STORE"),
		SnapshotTTLHours:   v.GetInt("SNAPSHOT_TTL_HOURS"),
		SummaryConcurrency: v.GetInt("SUMMARY_CONCURRENCY"),
		FirestoreProjectID: v.GetString("FIRESTORE_PROJECT_ID"),
		CredentialsFile:    v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		SupabaseURL:        v.GetString("SUPABASE_URL"),
		SupabaseAnonKey:    v.GetString("SUPABASE_ANON_KEY"),
		SupabaseDBPassword: v.GetString("SUPABASE_DB_PASSWORD"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		JWTSecret:          v.GetString("JWT_SECRET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証失敗: %w", err)
	}
	return cfg, nil
}

// Validate 設定値の整合性をチェック
func (c *Config) Validate() error {
	switch c.LocationSource {
	case SourceNone, SourcePostgres, SourceSupabase:
	default:
		return fmt.Errorf("LOCATION_SOURCEは none, postgres, supabase のいずれかを指定してください: %q", c.LocationSource)
	}

	switch c.SnapshotStore {
	case StoreNone, StoreFirestore, StoreRedis:
	default:
		return fmt.Errorf("SNAPSHOT_STOREは none, firestore, redis のいずれかを指定してください: %q", c.SnapshotStore)
	}

	if _, err := model.LoadTimeZone(c.TimeZone); err != nil {
		return fmt.Errorf("TRAIL_TIME_ZONE: %w", err)
	}
	if c.SnapshotTTLHours <= 0 {
		return fmt.Errorf("SNAPSHOT_TTL_HOURSは1以上である必要があります")
	}
	if c.SummaryConcurrency <= 0 {
		return fmt.Errorf("SUMMARY_CONCURRENCYは1以上である必要があります")
	}

	if c.SnapshotStore == StoreFirestore && c.FirestoreProjectID == "" {
		return fmt.Errorf("SNAPSHOT_STORE=firestore にはFIRESTORE_PROJECT_IDが必要です")
	}
	if c.SnapshotStore == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("SNAPSHOT_STORE=redis にはREDIS_ADDRが必要です")
	}
	if c.LocationSource == SourceSupabase && (c.SupabaseURL == "" || c.SupabaseAnonKey == "") {
		return fmt.Errorf("LOCATION_SOURCE=supabase にはSUPABASE_URLとSUPABASE_ANON_KEYが必要です")
	}
	if c.LocationSource == SourcePostgres && (c.SupabaseURL == "" || c.SupabaseDBPassword == "") {
		return fmt.Errorf("LOCATION_SOURCE=postgres にはSUPABASE_URLとSUPABASE_DB_PASSWORDが必要です")
	}
	return nil
}

// Location 既定のタイムゾーン
func (c *Config) Location() *time.Location {
	loc, err := model.LoadTimeZone(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SnapshotTTL スナップショットの保持期間
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLHours) * time.Hour
}
