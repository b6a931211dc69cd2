package database

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient Supabaseクライアントのラッパー
type SupabaseClient struct {
	Client *supabase.Client
}

// NewSupabaseClient 新しいSupabaseクライアントを作成
func NewSupabaseClient(supabaseURL, anonKey string) (*SupabaseClient, error) {
	if supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URLが設定されていません")
	}
	if anonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEYが設定されていません")
	}

	client, err := supabase.NewClient(supabaseURL, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("Supabaseクライアントの初期化に失敗: %w", err)
	}

	return &SupabaseClient{
		Client: client,
	}, nil
}

// GetClient Supabaseクライアントを取得
func (sc *SupabaseClient) GetClient() *supabase.Client {
	return sc.Client
}

// LocationHistoryTable 位置履歴を持つテーブル
const LocationHistoryTable = "location_history"

// HealthCheck 位置履歴テーブルを1行だけ読んで疎通を確認する
func (sc *SupabaseClient) HealthCheck(ctx context.Context) error {
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := sc.Client.From(LocationHistoryTable).
		Select("user_id", "", false).
		Limit(1, "").
		Execute()
	if err != nil {
		return fmt.Errorf("Supabaseへの疎通確認に失敗: %w", err)
	}
	return nil
}
