package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Advisory lock class for slot bookings, so the keys cannot collide with any
// other advisory lock user in the same database.
const SlotLockClassID = 4217

type SlotLocker interface {
	AcquireSlotLock(ctx context.Context, tx *gorm.DB, slotStart time.Time, timeout time.Duration) error
}

type slotLocker struct{}

func NewSlotLocker() SlotLocker {
	return &slotLocker{}
}

// AcquireSlotLock serializes concurrent booking attempts for one slot. Slots
// are projections rather than rows, so there is nothing to SELECT ... FOR
// UPDATE; instead a transaction-scoped advisory lock keyed by the slot's start
// hour is taken. The lock is released automatically at commit or rollback.
// If the lock cannot be acquired within timeout, Postgres aborts the wait with
// SQLSTATE 55P03, which the service maps to a retryable busy condition.
func (l *slotLocker) AcquireSlotLock(ctx context.Context, tx *gorm.DB, slotStart time.Time, timeout time.Duration) error {
	ms := timeout.Milliseconds()
	if ms <= 0 {
		ms = 1000
	}
	// SET LOCAL scopes the timeout to this transaction only.
	if err := tx.WithContext(ctx).Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)).Error; err != nil {
		return err
	}
	key := SlotLockKey(slotStart)
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?, ?)", SlotLockClassID, key).Error
}

// SlotLockKey maps a slot start to a 32-bit advisory lock key. Slot starts sit
// on hour boundaries, so hours-since-epoch identifies the slot uniquely.
func SlotLockKey(slotStart time.Time) int32 {
	return int32(slotStart.UTC().Unix() / 3600)
}
