package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres 唯一约束冲突的 SQLSTATE
const pgUniqueViolation = "23505"

// IsUniqueViolation 判断错误是否为唯一约束冲突。
// 并发写入撞上部分唯一索引时，落败方收到的是驱动层错误而非业务错误，
// 服务层据此改走"读回已存在记录"的路径
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
