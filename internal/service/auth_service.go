package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bloodlink-next/internal/cache"
	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/fallback"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionTokenBytes = 32

// AuthService 认证与会话服务
// 凭据校验走双路径：历史明文精确比对与 bcrypt 哈希比对，命中明文后
// 在登录链路上原地迁移为哈希，管理员身份保持不变
type AuthService struct {
	cfg         *config.Config
	guard       *store.Guard
	adminRepo   repository.AdminRepository
	sessionRepo repository.SessionRepository

	// 回退模式下的进程内会话表
	demoMu       sync.Mutex
	demoSessions map[string]demoSession
}

type demoSession struct {
	identity  Identity
	expiresAt time.Time
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, guard *store.Guard, adminRepo repository.AdminRepository, sessionRepo repository.SessionRepository) *AuthService {
	return &AuthService{
		cfg:          cfg,
		guard:        guard,
		adminRepo:    adminRepo,
		sessionRepo:  sessionRepo,
		demoSessions: make(map[string]demoSession),
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// verifyCredential 双路径凭据校验
// 返回值 migrate 表示存储的是历史明文、需要在登录链路上迁移为哈希
func verifyCredential(stored, password string) (ok bool, migrate bool) {
	if stored == "" {
		return false, false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, true
}

func generateToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *AuthService) sessionTTL() time.Duration {
	hours := 24
	if s.cfg != nil && s.cfg.Session.TTLHours > 0 {
		hours = s.cfg.Session.TTLHours
	}
	return time.Duration(hours) * time.Hour
}

// Login 校验凭据并签发不透明会话令牌
func (s *AuthService) Login(ctx context.Context, username, password string) (*Identity, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if s.guard.FallbackMode() {
		return s.loginFallback(username, password)
	}

	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		// 对齐时序，避免用户名存在性探测
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4P1Gp0sP6uU0kQy0nHqQd6y0o5a"), []byte(password))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	ok, migrate := verifyCredential(admin.Credential, password)
	if !ok {
		logger.Warnw("admin_login_failed", "username", username)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if migrate {
		if hash, hashErr := s.HashPassword(password); hashErr == nil {
			if upErr := s.adminRepo.UpdateCredential(ctx, admin.ID, hash); upErr != nil {
				logger.Warnw("credential_migrate_failed", "admin_id", admin.ID, "error", upErr)
			} else {
				logger.Infow("credential_migrated", "admin_id", admin.ID)
			}
		}
	}

	session, token, err := s.createSession(ctx, admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		logger.Warnw("admin_last_login_update_failed", "admin_id", admin.ID, "error", err)
	}
	if err := cache.SetSessionState(ctx, token, cache.BuildSessionState(session, admin)); err != nil {
		logger.Warnw("session_cache_write_failed", "admin_id", admin.ID, "error", err)
	}

	identity := identityOf(admin)
	credentialPath := "hash"
	if migrate {
		credentialPath = "legacy_plain"
	}
	logger.Infow("admin_login_succeeded",
		"admin_id", admin.ID,
		"hospital_id", admin.HospitalID,
		"credential_path", credentialPath,
	)
	return identity, token, session.ExpiresAt, nil
}

// createSession 生成令牌并落库；令牌唯一键冲突时重新生成
func (s *AuthService) createSession(ctx context.Context, admin *models.Admin) (*models.Session, string, error) {
	expiresAt := time.Now().Add(s.sessionTTL())
	for attempt := 0; attempt < 3; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, "", err
		}
		session := &models.Session{
			Token:      token,
			AdminID:    admin.ID,
			HospitalID: admin.HospitalID,
			ExpiresAt:  expiresAt,
		}
		err = s.sessionRepo.Create(ctx, session)
		if err == nil {
			return session, token, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warnw("session_token_collision", "admin_id", admin.ID)
			continue
		}
		return nil, "", err
	}
	return nil, "", ErrConflict
}

func (s *AuthService) loginFallback(username, password string) (*Identity, string, time.Time, error) {
	admin := fallback.FindAdmin(username)
	if admin == nil || subtle.ConstantTimeCompare([]byte(admin.Credential), []byte(password)) != 1 {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, err := generateToken()
	if err != nil {
		return nil, "", time.Time{}, err
	}
	identity := Identity{
		AdminID:    admin.ID,
		HospitalID: admin.HospitalID,
		Username:   admin.Username,
		IsSuper:    admin.IsSuper,
	}
	expiresAt := time.Now().Add(s.sessionTTL())

	s.demoMu.Lock()
	s.demoSessions[token] = demoSession{identity: identity, expiresAt: expiresAt}
	s.demoMu.Unlock()

	logger.Infow("admin_login_succeeded",
		"admin_id", admin.ID,
		"hospital_id", admin.HospitalID,
		"credential_path", "demo",
	)
	return &identity, token, expiresAt, nil
}

// Validate 解析会话令牌为主体信息；无效或过期返回 ErrUnauthorized
func (s *AuthService) Validate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}

	if s.guard.FallbackMode() {
		return s.validateFallback(token)
	}

	now := time.Now()
	if state, hit, err := cache.GetSessionState(ctx, token); err == nil && hit {
		if state.ExpiresAt <= now.Unix() {
			_ = cache.DelSessionState(ctx, token)
			return nil, ErrUnauthorized
		}
		return &Identity{
			AdminID:    state.AdminID,
			HospitalID: state.HospitalID,
			Username:   state.Username,
			IsSuper:    state.IsSuper,
		}, nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(now) {
		if session != nil {
			if delErr := s.sessionRepo.DeleteByToken(ctx, token); delErr != nil {
				logger.Warnw("session_expired_cleanup_failed", "error", delErr)
			}
		}
		return nil, ErrUnauthorized
	}

	admin, err := s.adminRepo.GetByID(ctx, session.AdminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrUnauthorized
	}

	if err := cache.SetSessionState(ctx, token, cache.BuildSessionState(session, admin)); err != nil {
		logger.Warnw("session_cache_write_failed", "admin_id", admin.ID, "error", err)
	}
	return identityOf(admin), nil
}

func (s *AuthService) validateFallback(token string) (*Identity, error) {
	s.demoMu.Lock()
	defer s.demoMu.Unlock()
	session, ok := s.demoSessions[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	if !session.expiresAt.After(time.Now()) {
		delete(s.demoSessions, token)
		return nil, ErrUnauthorized
	}
	identity := session.identity
	return &identity, nil
}

// Logout 撤销会话；令牌不存在也视为成功（幂等）
func (s *AuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	if s.guard.FallbackMode() {
		s.demoMu.Lock()
		delete(s.demoSessions, token)
		s.demoMu.Unlock()
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return err
	}
	if err := cache.DelSessionState(ctx, token); err != nil {
		logger.Warnw("session_cache_delete_failed", "error", err)
	}
	return nil
}

// PurgeExpired 清理过期会话，返回清理数量
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	now := time.Now()

	if s.guard.FallbackMode() {
		s.demoMu.Lock()
		var purged int64
		for token, session := range s.demoSessions {
			if !session.expiresAt.After(now) {
				delete(s.demoSessions, token)
				purged++
			}
		}
		s.demoMu.Unlock()
		return purged, nil
	}

	return s.sessionRepo.DeleteExpired(ctx, now)
}

// ChangePassword 修改当前管理员密码
// 旧密码按双路径校验，新密码统一落为 bcrypt 哈希
func (s *AuthService) ChangePassword(ctx context.Context, identity *Identity, oldPassword, newPassword string) error {
	if identity == nil || identity.AdminID == 0 {
		return ErrUnauthorized
	}
	if s.guard.FallbackMode() {
		return NewValidationError("password changes are disabled in demo mode")
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	admin, err := s.adminRepo.GetByID(ctx, identity.AdminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}
	if ok, _ := verifyCredential(admin.Credential, oldPassword); !ok {
		return ErrInvalidPassword
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.adminRepo.UpdateCredential(ctx, admin.ID, hash); err != nil {
		return err
	}
	logger.Infow("admin_password_changed", "admin_id", admin.ID)
	return nil
}

func identityOf(admin *models.Admin) *Identity {
	return &Identity{
		AdminID:    admin.ID,
		HospitalID: admin.HospitalID,
		Username:   admin.Username,
		IsSuper:    admin.IsSuper,
	}
}
