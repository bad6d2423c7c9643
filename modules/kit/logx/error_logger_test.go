package logx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"PlayerHub/modules/kit/errx"
	"PlayerHub/modules/kit/tracex"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	cause := errors.New("server selection timeout")
	e := errx.NewSys("SYS_INTERNAL", "服务器内部错误").
		WithData("player_id", "p1").
		WithCause(cause)

	meta := BuildErrorLog(fmt.Errorf("service: %w", e))
	if meta.Error == "" {
		t.Fatalf("期望 meta.Error 非空")
	}
	if meta.Code != "SYS_INTERNAL" {
		t.Fatalf("期望 meta.Code=SYS_INTERNAL, got=%q", meta.Code)
	}
	if meta.Msg == "" {
		t.Fatalf("期望 meta.Msg 非空")
	}
	if meta.Data == nil || meta.Data["player_id"] != "p1" {
		t.Fatalf("期望 meta.Data 包含 player_id=p1, got=%v", meta.Data)
	}
	if len(meta.CauseChain) < 2 {
		t.Fatalf("期望 meta.CauseChain 至少两层, got=%v", meta.CauseChain)
	}
	if meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("期望 meta.Origin/meta.Stack 非空 origin=%q stack=%q", meta.Origin, meta.Stack)
	}
}

func TestReportSysError_输出ERROR并带trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ctx := tracex.WithTraceID(context.Background(), "t-1")
	err := errx.ErrUnavailable.WithCause(errors.New("connection refused"))
	ReportSysErrorWithLoggerContext(ctx, l, NewSysLog("player get", err))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望输出 1 条日志, got=%d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("期望 ERROR 级别, got=%v", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "t-1" {
		t.Fatalf("期望带上 trace_id, got=%v", fields)
	}
	if fields["error_code"] != string(errx.CodeUnavailable) {
		t.Fatalf("期望 error_code=%s, got=%v", errx.CodeUnavailable, fields["error_code"])
	}
}

func TestReportAccess_按级别输出(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))
	ctx := context.Background()

	ReportAccessWithLoggerContext(ctx, l, "GET /api/players", 0, AccessOK)
	ReportAccessWithLoggerContext(ctx, l, "GET /api/players/:id", 101, AccessRejected)
	ReportAccessWithLoggerContext(ctx, l, "GET /api/players", 500, AccessFailed)

	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	entries := logs.All()
	if len(entries) != len(want) {
		t.Fatalf("期望 %d 条, got=%d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Fatalf("第 %d 条级别不符: got=%v want=%v", i, e.Level, want[i])
		}
	}
}

func TestReport_nil_logger不panic(t *testing.T) {
	ReportSysErrorWithLoggerContext(context.Background(), nil, NewSysLog("x", errors.New("y")))
	ReportBizWithLoggerContext(context.Background(), nil, NewBizLog("x", "r", "m"))
	ReportAccessWithLoggerContext(context.Background(), nil, "x", 0, AccessOK)
}
