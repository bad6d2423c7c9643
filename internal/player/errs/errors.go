package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown Kind = "unknown"
	// KindInfra 存储/网络等基础设施失败。
	KindInfra Kind = "infra"
	// KindDecode 存储里的文档无法解码成实体。
	KindDecode Kind = "decode"
)

// Error 记录失败发生的位置和关键参数，cause 原样保留，errors.Is 可穿透。
type Error struct {
	Op    string         // 发生位置：repo.player.Get / repo.player.UpdateItem
	Kind  Kind           // 粗分类
	Meta  map[string]any // 关键参数（player_id, item_id...）
	Cause error          // 根因（必须保留）
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Data 暴露 meta 给 logx.BuildErrorLog。
func (e *Error) Data() map[string]any { return e.Meta }

// Wrap 统一包装入口；cause 为 nil 时返回 nil。
func Wrap(op string, kind Kind, cause error, meta map[string]any) error {
	if cause == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Cause: cause, Meta: meta}
}

// KindOf 返回错误链上第一个 *Error 的分类。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
