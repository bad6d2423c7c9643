package app

type Reason struct {
	Code    string
	Message string
}

func (r Reason) ReasonCode() string {
	return r.Code
}

func NewReason(c, m string) Reason {
	return Reason{
		Code:    c,
		Message: m,
	}
}

var (
	// 参数校验失败 reason，挂在 ErrInvalidArgument 的 data.reason 上。
	ReasonInvalidPlayerID = NewReason("INVALID_PLAYER_ID", "玩家 id 不是合法的 UUID")
	ReasonInvalidItemID   = NewReason("INVALID_ITEM_ID", "道具 id 不是合法的 UUID")
	ReasonEmptyName       = NewReason("EMPTY_NAME", "名字不能为空")
	ReasonNameTooLong     = NewReason("NAME_TOO_LONG", "名字过长")
	ReasonEmptyTag        = NewReason("EMPTY_TAG", "标签不能为空")
	ReasonNegativeLevel   = NewReason("NEGATIVE_LEVEL", "道具等级不能为负数")
	ReasonInvalidBody     = NewReason("INVALID_BODY", "请求体格式有误")
	ReasonInvalidQuery    = NewReason("INVALID_QUERY", "查询参数有误")
)

var (
	// 存储技术错误 reason。
	ReasonStoreUnavailable = NewReason("STORE_UNAVAILABLE", "存储不可用")
	ReasonStoreTimeout     = NewReason("STORE_TIMEOUT", "存储超时")
)

var reasonMessages = map[string]string{}

func init() {
	for _, r := range []Reason{
		ReasonInvalidPlayerID, ReasonInvalidItemID, ReasonEmptyName, ReasonNameTooLong,
		ReasonEmptyTag, ReasonNegativeLevel, ReasonInvalidBody, ReasonInvalidQuery,
		ReasonStoreUnavailable, ReasonStoreTimeout,
	} {
		reasonMessages[r.Code] = r.Message
	}
}

// ReasonMessage 按 reason code 取提示文案，未登记返回空。
func ReasonMessage(code string) string {
	return reasonMessages[code]
}
