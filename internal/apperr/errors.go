// Package apperr はリクエスト境界で扱うエラー種別を定義します。
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidationFailed は必須項目の欠落や不正な入力を表します。
	ErrValidationFailed = errors.New("validation failed")
	// ErrAuthFailure は認証情報の不一致を表します。ユーザーの存在有無は区別しません。
	ErrAuthFailure = errors.New("invalid username or password")
	// ErrPersistenceFailed は永続化層の読み書きに失敗したことを表します。
	ErrPersistenceFailed = errors.New("persistence failed")
	// ErrUnauthenticated は有効なセッションが無いことを表します。
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Kind はエラーの種別名を返します。どれにも該当しない場合は "INTERNAL_ERROR" です。
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidationFailed):
		return "VALIDATION_FAILED"
	case errors.Is(err, ErrAuthFailure):
		return "AUTH_FAILURE"
	case errors.Is(err, ErrPersistenceFailed):
		return "PERSISTENCE_FAILED"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	default:
		return "INTERNAL_ERROR"
	}
}

// Status はエラー種別に対応する HTTP ステータスを返します。
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrPersistenceFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthFailure), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
