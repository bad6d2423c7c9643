package app

import (
	"context"
	"errors"

	"PlayerHub/internal/player/entity"
	"PlayerHub/modules/kit/errx"
)

var (
	// ErrUnavailable 表示存储不可用。
	ErrUnavailable = errx.ErrUnavailable
	// ErrTimeout 表示存储调用超时或请求被取消。
	ErrTimeout = errx.ErrTimeout
)

// InvalidArgument 参数错误，reason 写入 data.reason。
func InvalidArgument(reason Reason) error {
	return entity.ErrInvalidArgument.WithReason(reason)
}

// classify 业务错误原样返回；其余统一转成系统类错误并保留 cause。
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errx.IsBiz(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout.WithReason(ReasonStoreTimeout).WithCause(err)
	}
	return ErrUnavailable.WithReason(ReasonStoreUnavailable).WithCause(err)
}

// GetErrorReasonCode 取错误链上的 reason code（没有则返回空）。
func GetErrorReasonCode(err error) string {
	var rp interface{ Reason() string }
	if !errors.As(err, &rp) {
		return ""
	}
	return rp.Reason()
}

// GetErrorMessage 取错误链上的对外提示。
func GetErrorMessage(err error) string {
	var mp interface{ Msg() string }
	if !errors.As(err, &mp) {
		return ""
	}
	return mp.Msg()
}
