package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Hospital{}, &models.Admin{}, &models.Session{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.Session.TTLHours = 24
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true}
	guard := store.NewGuard(db, store.Config{})
	svc := NewAuthService(cfg, guard, repository.NewAdminRepository(guard), repository.NewSessionRepository(guard))
	return svc, db
}

func createTestAdmin(t *testing.T, db *gorm.DB, username, credential string, hospitalID uint, isSuper bool) *models.Admin {
	t.Helper()
	admin := &models.Admin{
		Username:   username,
		Credential: credential,
		HospitalID: hospitalID,
		IsSuper:    isSuper,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(hash)
}

func TestAuthServiceLoginHashPath(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "alice", bcryptHash(t, "secret9pass"), 1, false)

	identity, token, expiresAt, err := svc.Login(ctx, "alice", "secret9pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if identity.AdminID != admin.ID || identity.HospitalID != 1 {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 char token, got %d", len(token))
	}
	if !expiresAt.After(time.Now().Add(23 * time.Hour)) {
		t.Fatalf("expected ~24h ttl, got %v", expiresAt)
	}

	resolved, err := svc.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if resolved.AdminID != admin.ID || resolved.Username != "alice" {
		t.Fatalf("unexpected resolved identity: %+v", resolved)
	}
}

func TestAuthServiceLoginLegacyPlainMigrates(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "bob", "plainpass7", 1, false)

	if _, _, _, err := svc.Login(ctx, "bob", "plainpass7"); err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}

	var updated models.Admin
	if err := db.First(&updated, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if !strings.HasPrefix(updated.Credential, "$2") {
		t.Fatalf("expected credential migrated to bcrypt, got %q", updated.Credential)
	}
	if updated.ID != admin.ID {
		t.Fatalf("identity changed during migration")
	}

	// 迁移后同一口令仍然有效
	if _, _, _, err := svc.Login(ctx, "bob", "plainpass7"); err != nil {
		t.Fatalf("post-migration login failed: %v", err)
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	createTestAdmin(t, db, "carol", bcryptHash(t, "rightpass1"), 1, false)

	if _, _, _, err := svc.Login(ctx, "carol", "wrongpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthServiceValidateExpiredSession(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "dave", bcryptHash(t, "secret9pass"), 2, false)

	session := &models.Session{
		Token:      strings.Repeat("a", 64),
		AdminID:    admin.ID,
		HospitalID: admin.HospitalID,
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Session{}).Where("token = ?", session.Token).Count(&count).Error; err != nil {
		t.Fatalf("count sessions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected expired session cleaned up, found %d rows", count)
	}
}

func TestAuthServiceLogoutIdempotent(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	createTestAdmin(t, db, "erin", bcryptHash(t, "secret9pass"), 1, false)

	_, token, _, err := svc.Login(ctx, "erin", "secret9pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("second logout should be idempotent: %v", err)
	}
	if _, err := svc.Validate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestAuthServicePurgeExpired(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "frank", bcryptHash(t, "secret9pass"), 1, false)

	now := time.Now()
	sessions := []models.Session{
		{Token: strings.Repeat("b", 64), AdminID: admin.ID, HospitalID: 1, ExpiresAt: now.Add(-time.Hour)},
		{Token: strings.Repeat("c", 64), AdminID: admin.ID, HospitalID: 1, ExpiresAt: now.Add(time.Hour)},
	}
	for i := range sessions {
		if err := db.Create(&sessions[i]).Error; err != nil {
			t.Fatalf("create session failed: %v", err)
		}
	}

	purged, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged session, got %d", purged)
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "grace", bcryptHash(t, "oldpass99"), 1, false)
	identity := &Identity{AdminID: admin.ID, HospitalID: 1, Username: "grace"}

	if err := svc.ChangePassword(ctx, identity, "wrongpass9", "newpass123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, identity, "oldpass99", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, identity, "oldpass99", "newpass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "grace", "newpass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "grace", "oldpass99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected, got %v", err)
	}
}

func TestAuthServiceFallbackLogin(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.TTLHours = 24
	guard := store.NewGuard(nil, store.Config{})
	svc := NewAuthService(cfg, guard, nil, nil)
	ctx := context.Background()

	identity, token, _, err := svc.Login(ctx, "demo", "demo123")
	if err != nil {
		t.Fatalf("demo login failed: %v", err)
	}
	if !identity.IsSuper {
		t.Fatalf("demo admin should be super")
	}

	resolved, err := svc.Validate(ctx, token)
	if err != nil {
		t.Fatalf("demo validate failed: %v", err)
	}
	if resolved.Username != "demo" {
		t.Fatalf("unexpected demo identity: %+v", resolved)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("demo logout failed: %v", err)
	}
	if _, err := svc.Validate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after demo logout, got %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "demo", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad demo password, got %v", err)
	}
}
