// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidCategory     = "INVALID_CATEGORY"
	ErrCodeInvalidImageURL     = "INVALID_IMAGE_URL"
	ErrCodeNewsNotFound        = "NEWS_NOT_FOUND"
	ErrCodeJobPositionNotFound = "JOB_POSITION_NOT_FOUND"
	ErrCodeDatabaseUnavailable = "DATABASE_UNAVAILABLE"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidCategoryError は未定義カテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", category),
		Category: "validation",
		Action:   "お知らせ、重要なお知らせ、プレスリリース、メディア掲載のいずれかを指定してください。",
	}
}

// NewInvalidImageURLError は画像URL検証エラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("無効な画像URLです: %s", reason),
		Category: "validation",
		Action:   "https:// で始まる公開画像のURLを入力してください。",
	}
}

// NewNewsNotFoundError はNEWS記事未検出エラーを生成する。
func NewNewsNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeNewsNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %d", id),
		Category: "content",
		Action:   "記事IDを確認してください。",
	}
}

// NewJobPositionNotFoundError は採用ポジション未検出エラーを生成する。
func NewJobPositionNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeJobPositionNotFound,
		Message:  fmt.Sprintf("指定された採用ポジションが見つかりません: %d", id),
		Category: "content",
		Action:   "ポジションIDを確認してください。",
	}
}

// NewDatabaseUnavailableError はデータベース未接続エラーを生成する。
// 読み取り系は空結果で縮退するため、このエラーは書き込み系でのみ発生する。
func NewDatabaseUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeDatabaseUnavailable,
		Message:  "データベースに接続できません。",
		Category: "system",
		Action:   "DATABASE_URL を設定し、migrate サブコマンドでマイグレーションを実行してください。",
	}
}
