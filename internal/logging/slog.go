package logging

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger は log/slog をラップした Logger 実装です。
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger は既存の slog.Logger から SlogLogger を作成します。
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New は出力先とモードに応じたロガーを作成します。
// release モードでは JSON、それ以外ではテキスト形式で出力します。
func New(w io.Writer, release bool) *SlogLogger {
	var h slog.Handler
	if release {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return NewSlogLogger(slog.New(h))
}

// Nop は何も出力しないロガーを返します。テストで使用します。
func Nop() *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
