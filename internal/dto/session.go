package dto

// Session 请求级会话上下文
// 由 JWT 中间件从 Token 声明构造，随请求传入各 Service，不可变、不跨请求共享
type Session struct {
	UserID string
	Role   string
	ClubID string
}
