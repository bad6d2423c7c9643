package transport

import "PlayerHub/modules/kit/logx"

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 对外业务码，写在响应体 code 字段。
const (
	OK           = 0
	InvalidParam = 4

	PlayerNotFound  = 101
	ItemNotFound    = 102
	AlreadyExists   = 103
	VersionConflict = 104

	SystemError      = 500
	StoreUnavailable = 503
)

// AccessLevel 系统类错误记 ERROR，其余失败记 WARN。
func (c BizCode) AccessLevel() logx.AccessLevel {
	switch c {
	case OK:
		return logx.AccessOK
	case SystemError, StoreUnavailable:
		return logx.AccessFailed
	default:
		return logx.AccessRejected
	}
}
