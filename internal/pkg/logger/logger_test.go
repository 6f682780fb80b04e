package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

// 链式调用本身就是回归点：返回值必须可寻址才能调 zerolog 的指针方法。
func TestChainedCallsCompileAndRun(t *testing.T) {
	L().Debug().Str("k", "v").Msg("plain entry")
	Ctx(context.Background()).Info().Int("n", 1).Msg("context entry")
}

func TestCtxFallsBackWithoutSpan(t *testing.T) {
	assert.Same(t, L(), Ctx(context.Background()))
}

func TestCtxStampsTraceFields(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l := Ctx(ctx)
	assert.NotSame(t, L(), l, "a valid span gets its own trace-scoped logger")
	l.Info().Msg("trace-scoped entry")
}
