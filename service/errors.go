package service

import "errors"

// 业务错误哨兵。handler 层据此映射 response 业务码：
// - ErrNotFound   -> CodeNotFound
// - ErrForbidden  -> CodePermissionDeny
// 其余错误一律按内部错误处理。
var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("operation not allowed")
)
