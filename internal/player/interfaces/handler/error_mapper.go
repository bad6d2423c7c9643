package handler

import (
	"context"
	"errors"
	nethttp "net/http"

	"PlayerHub/internal/player/app"
	"PlayerHub/internal/player/entity"
	"PlayerHub/internal/shared/transport"
	"PlayerHub/modules/kit/errx"
	"PlayerHub/modules/kit/logx"
)

const (
	msgBusy        = "系统繁忙，请稍后重试"
	msgUnavailable = "存储暂不可用，请稍后重试"
)

// bizMapping 业务错误到 HTTP 状态码/业务码的映射，按顺序匹配。
var bizMapping = []struct {
	err    error
	status int
	code   int
}{
	{entity.ErrInvalidArgument, nethttp.StatusBadRequest, transport.InvalidParam},
	{entity.ErrPlayerNotFound, nethttp.StatusNotFound, transport.PlayerNotFound},
	{entity.ErrItemNotFound, nethttp.StatusNotFound, transport.ItemNotFound},
	{entity.ErrPlayerExists, nethttp.StatusConflict, transport.AlreadyExists},
	{entity.ErrItemExists, nethttp.StatusConflict, transport.AlreadyExists},
	{entity.ErrVersionConflict, nethttp.StatusConflict, transport.VersionConflict},
}

// HandleError 把服务层错误翻译成 HTTP 状态码、业务码和对外提示，并记录一次日志：
// 业务拒绝走 biz 日志（INFO），技术错误走 sys 日志（ERROR，带 cause 链和栈）。
func HandleError(ctx context.Context, log logx.Logger, action string, err error) (status, code int, msg string) {
	if err == nil {
		return nethttp.StatusOK, transport.OK, ""
	}

	reason := app.GetErrorReasonCode(err)
	if reason == "" {
		reason = string(errx.CodeOf(err))
	}
	transport.SetErrorReason(ctx, reason)

	if errx.IsBiz(err) {
		status, code = nethttp.StatusInternalServerError, transport.SystemError
		for _, m := range bizMapping {
			if errors.Is(err, m.err) {
				status, code = m.status, m.code
				break
			}
		}
		msg = app.ReasonMessage(reason)
		if msg == "" {
			msg = app.GetErrorMessage(err)
		}
		logx.ReportBizWithLoggerContext(ctx, log, logx.NewBizLog(action, reason, msg))
		return status, code, msg
	}

	logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog(action, err))
	if errors.Is(err, app.ErrUnavailable) || errors.Is(err, app.ErrTimeout) {
		return nethttp.StatusServiceUnavailable, transport.StoreUnavailable, msgUnavailable
	}
	return nethttp.StatusInternalServerError, transport.SystemError, msgBusy
}
