package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupGuardTest(t *testing.T, cfg Config) *Guard {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	return NewGuard(db, cfg)
}

func TestExecuteSuccessUpdatesStatus(t *testing.T) {
	guard := setupGuardTest(t, Config{})

	err := guard.Execute(context.Background(), "noop", func(tx *gorm.DB) error {
		return tx.Exec("SELECT 1").Error
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	status := guard.CurrentStatus(context.Background())
	if !status.Connected {
		t.Fatalf("expected connected status after success, got %+v", status)
	}
}

func TestExecutePassesThroughDomainErrors(t *testing.T) {
	guard := setupGuardTest(t, Config{MaxAttempts: 3})

	err := guard.Execute(context.Background(), "lookup", func(tx *gorm.DB) error {
		return gorm.ErrRecordNotFound
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("domain error should pass through unchanged, got %v", err)
	}
	if errors.Is(err, ErrConnection) {
		t.Fatalf("domain error must not be classified as connection failure")
	}
}

func TestExecuteRetriesTransientThenClassifies(t *testing.T) {
	guard := setupGuardTest(t, Config{MaxAttempts: 3, RetryBackoff: time.Millisecond})

	attempts := 0
	err := guard.Execute(context.Background(), "flaky", func(tx *gorm.DB) error {
		attempts++
		return errors.New("connection reset by peer")
	})
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ConnError, got %v", err)
	}
	var connErr *ConnError
	if !errors.As(err, &connErr) || !strings.Contains(connErr.Error(), "connection reset") {
		t.Fatalf("ConnError should carry underlying message, got %v", err)
	}

	status := guard.CurrentStatus(context.Background())
	if status.LastError == "" {
		t.Fatalf("expected last error to be recorded")
	}
}

func TestExecuteDoesNotRetryStoreAuthFailure(t *testing.T) {
	guard := setupGuardTest(t, Config{MaxAttempts: 3, RetryBackoff: time.Millisecond})

	attempts := 0
	err := guard.Execute(context.Background(), "auth", func(tx *gorm.DB) error {
		attempts++
		return errors.New("pq: password authentication failed for user")
	})
	if attempts != 1 {
		t.Fatalf("auth failure should not be retried, got %d attempts", attempts)
	}
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("auth failure should still surface as ConnError, got %v", err)
	}
}

func TestCurrentStatusThrottlesProbes(t *testing.T) {
	guard := setupGuardTest(t, Config{CheckInterval: time.Hour})

	first := guard.CurrentStatus(context.Background())
	if !first.Connected {
		t.Fatalf("expected in-memory sqlite to be reachable, got %+v", first)
	}

	// 在节流窗口内应复用上一次结论
	second := guard.CurrentStatus(context.Background())
	if !second.LastChecked.Equal(first.LastChecked) {
		t.Fatalf("status probe should be throttled: first=%v second=%v", first.LastChecked, second.LastChecked)
	}
}

func TestNilDBEntersFallbackAndFailsExecute(t *testing.T) {
	guard := NewGuard(nil, Config{})

	if !guard.FallbackMode() {
		t.Fatalf("nil db should enable fallback mode")
	}
	err := guard.Execute(context.Background(), "noop", func(tx *gorm.DB) error { return nil })
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("execute without db should fail with ConnError, got %v", err)
	}

	guard.SetFallbackMode(false)
	if guard.FallbackMode() {
		t.Fatalf("fallback flag should be settable independently")
	}
}
