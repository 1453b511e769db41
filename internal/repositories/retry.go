package repositories

import (
	"database/sql/driver"
	"errors"
	"io"
	"log"
	"net"
	"syscall"
	"time"

	"gorm.io/gorm"
)

const maxRetries = 3

var retryBackoff = time.Second

// withRetry re-runs a single-statement operation on connectivity failures,
// up to maxRetries attempts with a fixed backoff, pinging the pool between
// attempts to force a reconnect. Multi-statement batches must not go
// through here: re-running a partially applied batch risks duplicate side
// effects.
func withRetry(db *gorm.DB, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		log.Printf("Database connection lost, retrying... (%d/%d): %v", attempt, maxRetries, err)
		time.Sleep(retryBackoff)
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			if pingErr := sqlDB.Ping(); pingErr != nil {
				log.Printf("Database reconnect failed: %v", pingErr)
			}
		}
	}
	return err
}

// isTransient classifies connectivity failures. Constraint violations and
// missing rows are terminal and must not be retried.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
