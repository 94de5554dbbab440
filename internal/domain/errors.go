package domain

import (
	"errors"
	"fmt"
)

// 错误分类：
// - ValidationError 请求非法（阁楼上限、房间总数上限、必填字段缺失）
// - NotFoundError   引用的实体不存在
// - ConflictError   违反 at-most-once 关系（重复指派、重复解除）
// - StorageError    底层存储失败
// 所有错误直接返回调用方，不做自动重试

// ValidationError 请求校验失败
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError 创建 ValidationError
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError 实体不存在
type NotFoundError struct {
	Entity string // "project" / "room" / "item" / "teammate" / "artisan"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError 关系冲突（已指派/未指派）
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError 存储层失败（包装底层错误）
type StorageError struct {
	Op  string // 出错的存储操作，如 "save room"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation 判断是否为 ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound 判断是否为 NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict 判断是否为 ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsStorage 判断是否为 StorageError
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
