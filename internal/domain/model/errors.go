package model

import "errors"

var (
	ErrSnapshotNotFound  = errors.New("トレイルスナップショットが見つかりません（有効期限切れまたは無効なID）")
	ErrSourceUnavailable = errors.New("位置履歴ソースが設定されていません")
	ErrInvalidDate       = errors.New("日付は YYYY-MM-DD 形式で指定してください")
	ErrInvalidTimeZone   = errors.New("無効なタイムゾーンです")
)
