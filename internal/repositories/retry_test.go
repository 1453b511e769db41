package repositories

import (
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"gorm.io/gorm"
)

func disableRetryBackoff(t *testing.T) {
	t.Helper()
	restore := retryBackoff
	retryBackoff = 0
	t.Cleanup(func() { retryBackoff = restore })
}

func TestWithRetryExhaustsAttemptsOnTransientError(t *testing.T) {
	db := newTestDB(t)
	disableRetryBackoff(t)

	attempts := 0
	err := withRetry(db, func() error {
		attempts++
		return driver.ErrBadConn
	})
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("withRetry = %v, want driver.ErrBadConn", err)
	}
	if attempts != maxRetries {
		t.Errorf("attempts = %d, want %d", attempts, maxRetries)
	}
}

func TestWithRetryDoesNotRetryTerminalErrors(t *testing.T) {
	db := newTestDB(t)
	disableRetryBackoff(t)

	for _, terminal := range []error{gorm.ErrDuplicatedKey, gorm.ErrRecordNotFound} {
		attempts := 0
		err := withRetry(db, func() error {
			attempts++
			return terminal
		})
		if !errors.Is(err, terminal) {
			t.Fatalf("withRetry = %v, want %v", err, terminal)
		}
		if attempts != 1 {
			t.Errorf("%v: attempts = %d, want 1", terminal, attempts)
		}
	}
}

func TestWithRetryRecoversAfterTransientFailure(t *testing.T) {
	db := newTestDB(t)
	disableRetryBackoff(t)

	attempts := 0
	err := withRetry(db, func() error {
		attempts++
		if attempts == 1 {
			return io.EOF
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry = %v, want nil", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
