package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 错误分类 ──
//
// 业务层只返回以下四类错误，Handler 按类别映射 HTTP 状态码。
// 具体错误通过 New/Newf 构造，errors.Is 同时匹配具体错误与其类别。

var (
	ErrNotFound   = errors.New("资源不存在")
	ErrValidation = errors.New("参数或状态校验失败")
	ErrConflict   = errors.New("并发冲突")
	ErrForbidden  = errors.New("无权限执行该操作")
)

// AppError 带类别的业务错误
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string { return e.Message }

// Is 使 errors.Is(err, ErrValidation) 等按类别匹配
func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap 暴露类别，便于 errors.Is 链式判断
func (e *AppError) Unwrap() error { return e.Kind }

// New 构造指定类别的业务错误
func New(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Newf 构造带格式化消息的业务错误
func Newf(kind error, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf 返回错误所属类别，无法识别时返回 nil
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrForbidden} {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, ErrOptimisticLock) {
		return ErrConflict
	}
	return nil
}
