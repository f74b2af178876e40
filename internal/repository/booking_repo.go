package repository

import (
	"context"
	"time"

	"appointment-scheduler/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindActiveByUserAndSlot(ctx context.Context, tx *gorm.DB, userID string, slotStart time.Time) (*models.Booking, error)
	CountActive(ctx context.Context, tx *gorm.DB, slotStart, slotEnd time.Time) (int64, error)
	CountActiveInRange(ctx context.Context, from, to time.Time) (map[time.Time]int64, error)
	TransitionStatus(ctx context.Context, tx *gorm.DB, bookingID uint, to models.BookingStatus, allowedFrom ...models.BookingStatus) (bool, error)
	FindInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]models.Booking, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindActiveByUserAndSlot(ctx context.Context, tx *gorm.DB, userID string, slotStart time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("user_id = ? AND slot_start = ? AND status <> ?", userID, slotStart, models.StatusCancelled).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountActive returns the number of capacity-consuming bookings for one slot.
// Callers that need the count to stay stable until their insert commits must
// pass a tx that already holds the slot's serializing lock.
func (r *bookingRepository) CountActive(ctx context.Context, tx *gorm.DB, slotStart, slotEnd time.Time) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("slot_start = ? AND slot_end = ? AND status <> ?", slotStart, slotEnd, models.StatusCancelled).
		Count(&count).Error
	return count, err
}

// CountActiveInRange groups active booking counts by slot start for every slot
// touched in [from, to). One query serves a whole availability view.
func (r *bookingRepository) CountActiveInRange(ctx context.Context, from, to time.Time) (map[time.Time]int64, error) {
	var rows []struct {
		SlotStart time.Time
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("slot_start, COUNT(*) AS total").
		Where("slot_start >= ? AND slot_start < ? AND status <> ?", from, to, models.StatusCancelled).
		Group("slot_start").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[time.Time]int64, len(rows))
	for _, row := range rows {
		counts[row.SlotStart.UTC()] = row.Total
	}
	return counts, nil
}

// TransitionStatus moves the booking to the target status only if its current
// status is one of allowedFrom, in a single compare-and-swap UPDATE. It
// reports false when no row matched, meaning a concurrent transition won the
// race; callers re-read and decide. A blind status write would let a delayed
// confirm resurrect a cancelled booking whose capacity unit was already
// rebooked.
func (r *bookingRepository) TransitionStatus(ctx context.Context, tx *gorm.DB, bookingID uint, to models.BookingStatus, allowedFrom ...models.BookingStatus) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status IN ?", bookingID, allowedFrom).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *bookingRepository) FindInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).
		Where("slot_start >= ? AND slot_start < ?", from, to)
	if !includeCancelled {
		q = q.Where("status <> ?", models.StatusCancelled)
	}
	if err := q.Order("slot_start ASC, created_at ASC, id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
