package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bloodlink-next/internal/models"
)

const sessionStateCacheTTL = 5 * time.Minute

// SessionState 会话快照
// 缓存键使用令牌摘要而非令牌本身，避免明文令牌落入缓存键空间
// 注销或过期清理后以删除键的方式失效
type SessionState struct {
	AdminID    uint   `json:"admin_id"`
	HospitalID uint   `json:"hospital_id"`
	Username   string `json:"username"`
	IsSuper    bool   `json:"is_super"`
	ExpiresAt  int64  `json:"expires_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

func sessionStateKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}

// BuildSessionState 从会话与管理员模型构建快照
func BuildSessionState(session *models.Session, admin *models.Admin) *SessionState {
	if session == nil || admin == nil {
		return nil
	}
	return &SessionState{
		AdminID:    session.AdminID,
		HospitalID: session.HospitalID,
		Username:   admin.Username,
		IsSuper:    admin.IsSuper,
		ExpiresAt:  session.ExpiresAt.Unix(),
		UpdatedAt:  time.Now().Unix(),
	}
}

// GetSessionState 获取会话快照
func GetSessionState(ctx context.Context, token string) (*SessionState, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	var state SessionState
	hit, err := GetJSON(ctx, sessionStateKey(token), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetSessionState 写入会话快照
func SetSessionState(ctx context.Context, token string, state *SessionState) error {
	if token == "" || state == nil {
		return nil
	}
	return SetJSON(ctx, sessionStateKey(token), state, sessionStateCacheTTL)
}

// DelSessionState 删除会话快照
func DelSessionState(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return Del(ctx, sessionStateKey(token))
}
