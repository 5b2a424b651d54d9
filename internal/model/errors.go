// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind はアプリケーションエラーの分類を表す。
// ストア層の低レベルエラーはリポジトリで必ずこの分類に変換される。
type ErrorKind string

// 定義済みエラー分類
const (
	// KindInvalidCredentials は認証失敗を表す。
	// アカウント不存在とパスワード不一致は区別しない（列挙攻撃対策）。
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	// KindTokenExpired はアクセストークンの期限切れを表す。
	KindTokenExpired ErrorKind = "TOKEN_EXPIRED"
	// KindTokenInvalid はアクセストークンの署名不正・構造不正を表す。
	KindTokenInvalid ErrorKind = "TOKEN_INVALID"
	// KindSessionNotFound はセッションの不存在または期限切れを表す。
	KindSessionNotFound ErrorKind = "SESSION_NOT_FOUND"
	// KindForbidden は権限不足（管理者専用操作）を表す。
	KindForbidden ErrorKind = "FORBIDDEN"
	// KindNotFound は対象レコードの不存在を表す。
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindConflict は一意制約違反（重複フィールド）を表す。
	KindConflict ErrorKind = "CONFLICT"
	// KindReference は存在しない外部キー参照を表す。
	KindReference ErrorKind = "INVALID_REFERENCE"
	// KindValidation は入力値の構造的な検証失敗を表す。
	KindValidation ErrorKind = "VALIDATION"
	// KindInternal は予期しないストア・ドライバ障害を表す。
	KindInternal ErrorKind = "INTERNAL"
)

// AppError はアプリケーション全体で使用する型付きエラー。
// Fieldは違反したフィールド名（一意制約・外部キー・検証エラーの場合のみ）。
type AppError struct {
	Kind    ErrorKind
	Message string
	Field   string
	cause   error
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap は原因となった低レベルエラーを返す。
func (e *AppError) Unwrap() error {
	return e.cause
}

// HTTPStatus はエラー分類に対応するHTTPステータスコードを返す。
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidCredentials, KindTokenExpired, KindTokenInvalid, KindSessionNotFound:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindReference, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError はエラーチェーンからAppErrorを取り出す。
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メッセージはアカウント不存在・パスワード不一致で完全に同一とする。
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Kind:    KindInvalidCredentials,
		Message: "メールアドレスまたはパスワードが正しくありません。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *AppError {
	return &AppError{
		Kind:    KindTokenExpired,
		Message: "アクセストークンの有効期限が切れています。再度ログインしてください。",
	}
}

// NewTokenInvalidError はトークン不正エラーを生成する。
func NewTokenInvalidError() *AppError {
	return &AppError{
		Kind:    KindTokenInvalid,
		Message: "アクセストークンが不正です。",
	}
}

// NewSessionNotFoundError はセッション不存在エラーを生成する。
func NewSessionNotFoundError() *AppError {
	return &AppError{
		Kind:    KindSessionNotFound,
		Message: "セッションが見つからないか、期限切れです。再度ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Message: "この操作には管理者権限が必要です。",
	}
}

// NewNotFoundError はレコード不存在エラーを生成する。
func NewNotFoundError(entity string, id int64) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s（ID: %d）が見つかりません。", entity, id),
	}
}

// NewKeyNotFoundError は自然キーで検索したレコードの不存在エラーを生成する。
func NewKeyNotFoundError(entity, key string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s（キー: %s）が見つかりません。", entity, key),
	}
}

// NewConflictError は一意制約違反エラーを生成する。
func NewConflictError(field string, cause error) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("%s は既に使用されています。", field),
		Field:   field,
		cause:   cause,
	}
}

// NewReferenceError は外部キー参照エラーを生成する。
func NewReferenceError(field string, cause error) *AppError {
	return &AppError{
		Kind:    KindReference,
		Message: fmt.Sprintf("%s に存在しない参照が指定されています。", field),
		Field:   field,
		cause:   cause,
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Field:   field,
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログにのみ記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "内部エラーが発生しました。しばらく待ってから再度お試しください。",
		cause:   cause,
	}
}
