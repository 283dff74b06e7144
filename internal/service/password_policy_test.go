package service

import (
	"errors"
	"testing"

	"github.com/bloodlink-next/internal/config"
)

func TestValidatePassword(t *testing.T) {
	policy := config.PasswordPolicyConfig{
		MinLength:     8,
		RequireLower:  true,
		RequireNumber: true,
	}

	if err := validatePassword(policy, "goodpass1"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
	if err := validatePassword(policy, "short1"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword for short password, got %v", err)
	}
	if err := validatePassword(policy, "nonumbers"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword without digit, got %v", err)
	}
	if err := validatePassword(policy, "12345678"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword without lowercase, got %v", err)
	}

	// 空策略不做任何校验
	if err := validatePassword(config.PasswordPolicyConfig{}, "x"); err != nil {
		t.Fatalf("empty policy should accept anything, got %v", err)
	}
}
