package service

import (
	"errors"
	"fmt"
)

// Kind 服务层错误分类，HTTP 层据此映射状态码.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindNotFound
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// 对外暴露的错误信息.
const (
	MsgUnauthorized       = "Unauthorized"
	MsgMissingName        = "Missing name"
	MsgMissingType        = "Missing type"
	MsgMissingData        = "Missing data"
	MsgInvalidData        = "Invalid data"
	MsgParentNotFound     = "Parent not found"
	MsgParentNotFolder    = "Parent is not a folder"
	MsgNotFound           = "Not found"
	MsgFolderHasNoContent = "A folder doesn't have content"
	MsgInvalidSize        = "Invalid size"
	MsgInternal           = "Internal server error"
)

// Error 服务层类型化错误.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Field != "":
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Field, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// MissingField 必填字段缺失.
func MissingField(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// InvalidField 字段取值非法.
func InvalidField(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// InvalidReference 引用的记录不存在或不满足约束.
func InvalidReference(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// NotFound 记录不存在、不属于调用者或不可见，三者对调用者不做区分.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Msg: MsgNotFound}
}

// BadRequest 请求合法但不可执行.
func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Msg: msg}
}

// Unauthorized 令牌缺失、未知或过期.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Msg: MsgUnauthorized}
}

// Internal 存储或 I/O 故障.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: op, Err: err}
}

// KindOf 返回错误分类，非 *Error 一律视为 Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// PublicMessage 返回可以直接展示给调用者的信息.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}

	return MsgInternal
}
