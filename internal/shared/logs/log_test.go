package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PlayerHub/internal/shared/serverconfig"

	"go.uber.org/zap/zapcore"
)

func TestInit_写入JSON文件(t *testing.T) {
	file := filepath.Join(t.TempDir(), "player.log")
	if err := Init("player-test", serverconfig.LogConfig{FileDir: file, Level: "debug"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = Init("nop", serverconfig.LogConfig{Level: "error"}) })

	Info("player created")
	Sync()

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, `"msg":"player created"`) {
		t.Fatalf("期望文件内为 JSON 日志, got=%s", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("期望文件日志不含 ANSI 颜色, got=%q", line)
	}
}

func TestNew_非法级别回退info(t *testing.T) {
	l := New("x", serverconfig.LogConfig{Level: "verbose"})
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("期望回退到 info 级别")
	}
}
