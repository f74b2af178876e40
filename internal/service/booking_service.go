package service

import (
	"context"
	"errors"
	"log"
	"time"

	"appointment-scheduler/internal/models"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/schedule"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrInvalidSlot      = errors.New("slot time is not a bookable slot")
	ErrCapacityExceeded = errors.New("slot is fully booked")
	ErrDuplicateBooking = errors.New("user already has an active booking for this slot")
	ErrSlotBusy         = errors.New("slot is busy, retry later")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// Publisher emits booking lifecycle events for the notification and payment
// collaborators. A nil Publisher disables publishing.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type BookingService interface {
	Book(ctx context.Context, userID string, slotStart, slotEnd time.Time) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID uint) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID uint) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
}

type bookingService struct {
	sched       schedule.DailySchedule
	repo        repository.BookingRepository
	locker      repository.SlotLocker
	publisher   Publisher
	lockTimeout time.Duration
}

func NewBookingService(sched schedule.DailySchedule, repo repository.BookingRepository, locker repository.SlotLocker, publisher Publisher, lockTimeout time.Duration) BookingService {
	return &bookingService{
		sched:       sched,
		repo:        repo,
		locker:      locker,
		publisher:   publisher,
		lockTimeout: lockTimeout,
	}
}

// Book claims one unit of capacity on the slot [slotStart, slotEnd). The
// count-then-insert runs inside a single transaction that holds the slot's
// advisory lock, so two concurrent requests can never both observe a free
// unit and both insert past the capacity limit. Nothing but the duplicate
// check, the count and the insert happens under the lock.
func (s *bookingService) Book(ctx context.Context, userID string, slotStart, slotEnd time.Time) (*models.Booking, error) {
	slotStart = slotStart.UTC()
	slotEnd = slotEnd.UTC()

	// Preconditions are checked before any mutation.
	if !s.sched.IsValidSlotTime(slotStart) {
		return nil, ErrInvalidSlot
	}
	if !slotEnd.Equal(s.sched.SlotEndFor(slotStart)) {
		return nil, ErrInvalidSlot
	}
	if slotStart.Before(time.Now().UTC()) {
		// Past slots are never bookable.
		return nil, ErrInvalidSlot
	}

	var result *models.Booking

	err := s.repo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Serialize concurrent attempts for this slot.
		if err := s.locker.AcquireSlotLock(ctx, tx, slotStart, s.lockTimeout); err != nil {
			return translatePgError(err)
		}

		// 2. One active booking per user per slot.
		_, err := s.repo.FindActiveByUserAndSlot(ctx, tx, userID, slotStart)
		if err == nil {
			return ErrDuplicateBooking
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 3. Count active bookings; the lock keeps this stable until commit.
		active, err := s.repo.CountActive(ctx, tx, slotStart, slotEnd)
		if err != nil {
			return err
		}
		if active >= int64(s.sched.DefaultCapacity) {
			return ErrCapacityExceeded
		}

		// 4. Insert. The partial unique index backstops the duplicate check.
		booking := &models.Booking{
			UserID:    userID,
			SlotStart: slotStart,
			SlotEnd:   slotEnd,
			Status:    models.StatusPending,
		}
		if err := s.repo.Create(ctx, tx, booking); err != nil {
			return translatePgError(err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("booking.created", result)
	return result, nil
}

// Cancel transitions the booking to CANCELLED, freeing one unit of capacity
// for the next Book call. Cancelling an already-cancelled booking is a no-op
// success. The transition is a compare-and-swap, so CANCELLED is terminal no
// matter how Cancel interleaves with Confirm.
func (s *bookingService) Cancel(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == models.StatusCancelled {
		return booking, nil
	}

	swapped, err := s.repo.TransitionStatus(ctx, s.repo.GetDB(), bookingID, models.StatusCancelled,
		models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	booking.Status = models.StatusCancelled
	if !swapped {
		// A concurrent Cancel got there first; idempotent success, no event.
		return booking, nil
	}

	s.publish("booking.cancelled", booking)
	return booking, nil
}

// Confirm transitions a PENDING booking to CONFIRMED. The payment collaborator
// calls this once payment settles. Confirming an already-confirmed booking is
// a no-op success; a cancelled booking cannot be confirmed — the swap only
// fires on PENDING, so a cancel that lands between the read and the write
// stays CANCELLED and its freed capacity unit stays freed.
func (s *bookingService) Confirm(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	switch booking.Status {
	case models.StatusConfirmed:
		return booking, nil
	case models.StatusCancelled:
		return nil, ErrAlreadyCancelled
	}

	swapped, err := s.repo.TransitionStatus(ctx, s.repo.GetDB(), bookingID, models.StatusConfirmed,
		models.StatusPending)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost the race; re-read to report what actually happened.
		booking, err = s.repo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
		if booking.Status == models.StatusConfirmed {
			return booking, nil
		}
		return nil, ErrAlreadyCancelled
	}
	booking.Status = models.StatusConfirmed

	s.publish("booking.confirmed", booking)
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// publish runs after commit; a broker failure must not fail the booking.
func (s *bookingService) publish(routingKey string, booking *models.Booking) {
	if s.publisher == nil || booking == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, booking); err != nil {
		log.Printf("[BookingService] publish %s for booking %d failed: %v", routingKey, booking.ID, err)
	}
}

// translatePgError maps Postgres failure modes onto the service taxonomy:
// lock_timeout expiry (55P03) means contention on the slot's advisory lock,
// a unique violation (23505) means the partial index caught a duplicate that
// raced past the in-transaction check.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return ErrSlotBusy
		case "23505":
			return ErrDuplicateBooking
		}
	}
	return err
}
