package layout

import (
	"context"
	"log/slog"
)

// nopHandler 丢弃所有日志；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NopLogger 返回静默的 logger。
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// OrNop 在 l 为空时返回静默 logger。
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return NopLogger()
	}
	return l
}
