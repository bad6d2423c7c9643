package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := NewBiz("PLAYER_NOT_FOUND", "x").WithData("player_id", "p1").WithCause(errors.New("cause1"))
	e2 := NewBiz("PLAYER_NOT_FOUND", "x2").WithData("player_id", "p2").WithCause(errors.New("cause2"))
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true（只按 code 判断语义），e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("ITEM_NOT_FOUND", "")) {
		t.Fatalf("期望不同 code 不匹配")
	}
}

func TestError_业务错误不捕获栈_但保留cause链(t *testing.T) {
	cause := errors.New("no documents")
	err := NewBiz("PLAYER_NOT_FOUND", "玩家不存在").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("期望业务错误不捕获栈，got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("期望 cause 链不丢，err=%v", err)
	}
}

func TestError_系统错误捕获一次栈_且不重复捕获(t *testing.T) {
	cause := errors.New("server selection timeout")
	sys := NewSys("SYS_DB_UNAVAILABLE", "系统不可用").WithCause(cause)
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("期望系统错误捕获栈（发生/转换处），got=%v", got)
	}

	sys2 := ErrUnavailable.WithCause(sys)
	if got := sys2.Stack(); got != nil {
		t.Fatalf("期望上层系统错误不重复捕获栈（cause 链里已有栈），got=%v", got)
	}
}

func TestError_Data_防止外部map污染(t *testing.T) {
	m := map[string]any{"k": "v"}
	err := NewBiz("BIZ_X", "").WithDataMap(m)
	m["k"] = "mutated"
	if got := err.Data()["k"]; got != "v" {
		t.Fatalf("期望构造时复制 data；got=%v", got)
	}
}

func TestCodeOf_沿错误链取码(t *testing.T) {
	base := NewBiz("ITEM_NOT_FOUND", "")
	wrapped := fmt.Errorf("repo: %w", base)
	if got := CodeOf(wrapped); got != "ITEM_NOT_FOUND" {
		t.Fatalf("期望 CodeOf 穿透 fmt.Errorf 包装，got=%q", got)
	}
	if !IsBiz(wrapped) {
		t.Fatalf("期望 IsBiz(wrapped)==true")
	}
	if IsBiz(ErrUnavailable.WithCause(errors.New("x"))) {
		t.Fatalf("期望系统错误 IsBiz==false")
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("期望普通错误没有 code，got=%q", got)
	}
}
