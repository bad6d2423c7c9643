package errx

// 跨服务统一的系统类错误码。
//
// 约束：
// - 只用于“系统/技术类错误”归一化（告警、观测、排障）
// - 业务域错误码（例如 PLAYER_NOT_FOUND）由各业务包自行定义，不放在 kit 里

const (
	// CodeInternal 服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 依赖不可用（MongoDB/下游/网络异常等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 请求或依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeReqParamError 请求参数错误。
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"
)

// 系统类哨兵错误：通过 WithData/WithCause 派生新对象，不要直接修改。
var (
	ErrInternal    = NewSys(CodeInternal, "服务器内部错误")
	ErrUnavailable = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout     = NewSys(CodeTimeout, "请求超时")
	ErrReqParamERR = NewBiz(CodeReqParamError, "请求参数错误")
)
