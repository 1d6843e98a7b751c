package common

// エラーメッセージの絵文字定数
const (
	ErrorIcon   = "❌"
	SuccessIcon = "✅"
	WarningIcon = "⚠️"
	SearchIcon  = "🔍"
	InfoIcon    = "📋"
	WaitIcon    = "⏳"
)

// エラーメッセージフォーマット定数
const (
	// 一覧取得エラー
	ListErrorFormat = "%s %s一覧の取得に失敗: %w"

	// その他の操作エラー
	CreateErrorFormat = "%s %s の作成に失敗: %w"
	WaitErrorFormat   = "%s %s の完了待機に失敗: %w"
)
