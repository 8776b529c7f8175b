package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型，携带错误代码（Code）与模块（Module）
//   - 预期内的降级（策略无数据 / 冷启动 / 超时）与真正的故障走同一套
//     类型，但通过 Code 区分，调用方用 IsXXX 判定
//   - 支持 errors.Is / errors.As 链式匹配，可包裹底层原因
type DomainError struct {
	Module  string // 模块名称（如 "retrieval", "strategy"）
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string
	Cause   error // 底层原因，可为 nil
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is 使同一 (Module, Code) 的 DomainError 在 errors.Is 下相等，
// 这样哨兵值（如 ErrStrategyUnavailable）可以匹配携带 Cause 的实例。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// Wrap 返回一个携带底层原因的副本，Module/Code 不变，
// 因此 errors.Is(wrapped, sentinel) 仍然成立。
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Module: e.Module, Code: e.Code, Message: e.Message, Cause: cause}
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// WrapDomainError 在 NewDomainError 基础上附带底层原因。
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message, Cause: cause}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 数据源不可用 / 降级
	ErrorCodeInvalidInput = "INVALID_INPUT" // 请求不满足最低输入要求
	ErrorCodeInternal     = "INTERNAL"      // 内部错误
)

// 模块名称常量
const (
	ModuleRetrieval = "retrieval" // 检索端口
	ModuleStrategy  = "strategy"  // 策略打分
	ModuleFusion    = "fusion"    // 融合引擎
)

// 哨兵错误：策略与融合层的预期分支都落在这几个值上。
var (
	// ErrTrackNotFound 表示曲目在检索存储中不存在。
	ErrTrackNotFound = NewDomainError(ModuleRetrieval, ErrorCodeNotFound, "retrieval: track not found")

	// ErrUserNotFound 表示用户画像不存在。
	ErrUserNotFound = NewDomainError(ModuleRetrieval, ErrorCodeNotFound, "retrieval: user not found")

	// ErrRetrievalUnavailable 表示检索存储瞬时故障。
	// 策略层会把它降级为 ErrStrategyUnavailable，绝不中断整次融合。
	ErrRetrievalUnavailable = NewDomainError(ModuleRetrieval, ErrorCodeUnavailable, "retrieval: store unavailable")

	// ErrStrategyUnavailable 是预期内的非致命条件：冷启动、无历史、
	// 检索失败或超时。策略返回它 + 空候选列表，不抛向公共契约。
	ErrStrategyUnavailable = NewDomainError(ModuleStrategy, ErrorCodeUnavailable, "strategy: unavailable")

	// ErrInvalidRequest 表示既无 userID 也无种子曲目，在分发任何策略
	// 之前直接返回调用方。
	ErrInvalidRequest = NewDomainError(ModuleFusion, ErrorCodeInvalidInput, "fusion: userID and seed tracks both absent")
)

// StrategyUnavailable 将任意原因包装为策略降级错误。
func StrategyUnavailable(cause error) error {
	return WrapDomainError(ModuleStrategy, ErrorCodeUnavailable, "strategy: unavailable", cause)
}

// IsNotFound 检查错误是否为资源不存在。
func IsNotFound(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrorCodeNotFound
	}
	return false
}

// IsStrategyUnavailable 检查错误是否为策略降级（预期内，非致命）。
func IsStrategyUnavailable(err error) bool {
	return errors.Is(err, ErrStrategyUnavailable)
}

// IsInvalidRequest 检查错误是否为非法请求。
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
