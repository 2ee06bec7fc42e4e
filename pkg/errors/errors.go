package errors

import "errors"

// ErrOptimisticLock 条件更新未命中：记录已被其他操作修改或状态已变化
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
