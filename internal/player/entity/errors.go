package entity

import "PlayerHub/modules/kit/errx"

// 玩家域错误码：PlayerNotFound（聚合不存在）与 ItemNotFound（聚合存在、元素不存在）必须区分。
const (
	CodePlayerNotFound  errx.Code = "PLAYER_NOT_FOUND"
	CodeItemNotFound    errx.Code = "PLAYER_ITEM_NOT_FOUND"
	CodePlayerExists    errx.Code = "PLAYER_EXISTS"
	CodeItemExists      errx.Code = "PLAYER_ITEM_EXISTS"
	CodeVersionConflict errx.Code = "PLAYER_VERSION_CONFLICT"
	CodeInvalidArgument errx.Code = errx.CodeReqParamError
)

var (
	ErrPlayerNotFound  = errx.NewBiz(CodePlayerNotFound, "玩家不存在")
	ErrItemNotFound    = errx.NewBiz(CodeItemNotFound, "道具不存在")
	ErrPlayerExists    = errx.NewBiz(CodePlayerExists, "玩家已存在")
	ErrItemExists      = errx.NewBiz(CodeItemExists, "道具已存在")
	ErrVersionConflict = errx.NewBiz(CodeVersionConflict, "玩家数据已被修改")
	ErrInvalidArgument = errx.ErrReqParamERR
)
