// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init 设置全局日志级别与服务名字段。由 bootstrap 在启动时调用一次。
func Init(serviceName, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	base = zerolog.New(os.Stdout).Level(lvl).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个带有当前链路 trace_id/span_id 字段的 logger。
// 没有有效 Span 时退化为普通 logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &base
	}
	l := base.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}

// L 返回不绑定上下文的全局 logger。
func L() *zerolog.Logger {
	return &base
}
