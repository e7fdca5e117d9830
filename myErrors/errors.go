package myErrors

import (
	"errors"
	"fmt"
)

// ErrCacheMiss 表示在缓存层未找到对应的键值
var ErrCacheMiss = errors.New("cache: key not found (miss)")

// ErrQuotaExceeded 表示用户持有的帖子数量已达到配置的上限。
// 在调用任何远程写入之前由服务层校验并返回，属于校验类错误。
var ErrQuotaExceeded = errors.New("listing: per-user quota exceeded")

// ErrDeleteFailed 表示远程删除帖子记录失败。
// 与 commonerrors.ErrRepoNotFound (删除目标不存在) 区分开，
// 便于调用方分别渲染 "帖子不存在" 与 "删除失败，请重试"。
var ErrDeleteFailed = errors.New("listing: remote delete failed")

// ErrStaleFeed 表示信息流的一次加载结果因筛选条件已变更而被丢弃。
// 仅在内部用于标记被取代的请求，不应透出给调用方作为失败。
var ErrStaleFeed = errors.New("feed: result superseded by newer filter")

// ValidationError 表示调用方提交的数据未通过必填/形状校验。
// 该类错误在发起任何远程调用之前同步产生 (参见服务层 CreateListing / UpdateListing)。
type ValidationError struct {
	Field  string // 未通过校验的字段名
	Reason string // 校验失败原因
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// NewValidationError 构造一个字段校验错误。
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError 判断 err 链上是否存在校验错误。
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
