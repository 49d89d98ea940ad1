package services

import "errors"

// 核心操作的错误分类。控制器按类别映射到HTTP状态码，
// 调用方用 errors.Is 判断。
var (
	// ErrValidation 输入违反调用契约（坐标越界、人数非正等）
	ErrValidation = errors.New("validation error")
	// ErrNotFound 工单/机构/人员/分队不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("invalid state")
	// ErrMismatchedAssignee 接受/拒绝方不是当前被分配的机构
	ErrMismatchedAssignee = errors.New("mismatched assignee")
	// ErrWindowExpired 接受窗口已过期
	ErrWindowExpired = errors.New("acceptance window expired")
	// ErrStorage 存储层故障，原样向上传播，核心不做重试
	ErrStorage = errors.New("storage error")
)
