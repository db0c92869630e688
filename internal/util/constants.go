package util

// 上下文键
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

const TokenBlacklistPrefix = "auth:blacklist:"
