// Package logging はアプリケーション全体で使う構造化ロガーを提供します。
package logging

import "context"

// Logger はコンテキスト付きの構造化ロガーです。
//
// 可変長引数はキーと値の組として解釈されます。
//
//	log.Info(ctx, "server started", "addr", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With は指定したキーと値を常に付与する子ロガーを返します。
	With(args ...any) Logger
}
