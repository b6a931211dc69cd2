package database

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSupabaseDSN(t *testing.T) {
	dsn, err := BuildSupabaseDSN("https://abc.supabase.co/", "pw")
	require.NoError(t, err)
	assert.Equal(t, "host=db.abc.supabase.co port=6543 user=postgres password=pw dbname=postgres sslmode=require", dsn)

	_, err = BuildSupabaseDSN("", "pw")
	assert.Error(t, err)
	_, err = BuildSupabaseDSN("https://abc.supabase.co", "")
	assert.Error(t, err)
}

func TestPostgreSQLClient_HealthCheck(t *testing.T) {
	t.Run("未初期化", func(t *testing.T) {
		assert.Error(t, (&PostgreSQLClient{}).HealthCheck(context.Background()))
	})

	t.Run("キャンセル済みのコンテキスト", func(t *testing.T) {
		db, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=postgres dbname=postgres sslmode=disable")
		require.NoError(t, err)
		defer db.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = (&PostgreSQLClient{DB: db}).HealthCheck(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSupabaseClient_HealthCheck(t *testing.T) {
	newClient := func(t *testing.T, status int, body string) (*SupabaseClient, *string) {
		t.Helper()
		var requested string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)

		client, err := NewSupabaseClient(server.URL, "anon-key")
		require.NoError(t, err)
		return client, &requested
	}

	t.Run("疎通できる", func(t *testing.T) {
		client, requested := newClient(t, http.StatusOK, `[]`)
		require.NoError(t, client.HealthCheck(context.Background()))
		assert.Contains(t, *requested, LocationHistoryTable)
	})

	t.Run("エラー応答", func(t *testing.T) {
		client, _ := newClient(t, http.StatusServiceUnavailable, `{"message":"upstream down"}`)
		assert.Error(t, client.HealthCheck(context.Background()))
	})

	t.Run("未初期化", func(t *testing.T) {
		assert.Error(t, (&SupabaseClient{}).HealthCheck(context.Background()))
	})
}
