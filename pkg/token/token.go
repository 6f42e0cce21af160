package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// 不透明令牌生成
// 邀请码令牌与识别凭证（QR）payload 均基于 crypto/rand 高熵随机数，
// 熵足够大时碰撞概率可忽略，由调用方决定是否做唯一性校验。

const (
	// InviteTokenBytes 邀请码令牌随机字节数（256 bit）
	InviteTokenBytes = 32
	// CredentialRandBytes 识别凭证随机部分字节数
	CredentialRandBytes = 24
)

// NewInviteToken 生成 URL 安全的邀请码令牌
func NewInviteToken() (string, error) {
	b := make([]byte, InviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("生成邀请码令牌失败: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewCredentialData 生成识别凭证 payload
// 格式: IMSCAA-<club前缀>-<user前缀>-<48位十六进制随机数>
// 前缀取 UUID 前 8 位，便于扫码端快速定位归属；随机部分保证全局唯一
func NewCredentialData(clubID, userID string) (string, error) {
	b := make([]byte, CredentialRandBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("生成识别凭证失败: %w", err)
	}
	return fmt.Sprintf("IMSCAA-%s-%s-%s", shortID(clubID), shortID(userID), hex.EncodeToString(b)), nil
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
