package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgreSQLClient PostgreSQL直接接続クライアント
type PostgreSQLClient struct {
	DB *sql.DB
}

// BuildSupabaseDSN SupabaseのURLとDBパスワードから接続文字列を構築（ポート6543を使用）
func BuildSupabaseDSN(supabaseURL, password string) (string, error) {
	if supabaseURL == "" {
		return "", fmt.Errorf("SUPABASE_URLが設定されていません")
	}
	if password == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORDが設定されていません")
	}

	// https://xxx.supabase.co -> xxx.supabase.co
	host := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(supabaseURL, "https://"), "http://"), "/")

	return fmt.Sprintf(
		"host=db.%s port=6543 user=postgres password=%s dbname=postgres sslmode=require",
		host, password,
	), nil
}

// NewPostgreSQLClient 新しいPostgreSQLクライアントを作成
func NewPostgreSQLClient(supabaseURL, password string) (*PostgreSQLClient, error) {
	connStr, err := BuildSupabaseDSN(supabaseURL, password)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}

	return &PostgreSQLClient{
		DB: db,
	}, nil
}

// NewPostgreSQLClientWithRetry 接続に失敗した場合に間隔を空けて再試行する
func NewPostgreSQLClientWithRetry(supabaseURL, password string, maxRetries int, interval time.Duration) (*PostgreSQLClient, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client, err := NewPostgreSQLClient(supabaseURL, password)
		if err == nil {
			return client, nil
		}
		lastErr = err
		if attempt < maxRetries {
			time.Sleep(interval)
		}
	}
	return nil, fmt.Errorf("PostgreSQL接続を%d回試行しましたが失敗: %w", maxRetries, lastErr)
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (pc *PostgreSQLClient) HealthCheck(ctx context.Context) error {
	if pc.DB == nil {
		return fmt.Errorf("PostgreSQLクライアントが初期化されていません")
	}
	if err := pc.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQLへの疎通確認に失敗: %w", err)
	}
	return nil
}
