package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// HeaderTraceID 是跨进程透传 trace_id 的请求头。
const HeaderTraceID = "X-Trace-Id"

type traceIDKey struct{}
type spanIDKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	return stringValue(ctx, traceIDKey{})
}

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey{}, spanID)
}

func SpanIDFrom(ctx context.Context) (string, bool) {
	return stringValue(ctx, spanIDKey{})
}

// EnsureTraceID 沿用上游传来的 trace_id，没有就新生成一个。
func EnsureTraceID(ctx context.Context, upstream string) (context.Context, string) {
	if upstream != "" {
		return WithTraceID(ctx, upstream), upstream
	}
	if tid, ok := TraceIDFrom(ctx); ok {
		return ctx, tid
	}
	tid := NewTraceID()
	if tid == "" {
		return ctx, ""
	}
	return WithTraceID(ctx, tid), tid
}

// NewTraceID 生成 16 字节随机 trace_id（hex）。
func NewTraceID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

func stringValue(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(key).(string)
	return s, ok && s != ""
}
