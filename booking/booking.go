// Package booking decides whether a reservation may be committed.
//
// Every admission runs under the per-session lock and inside one database
// transaction, so the existence, expiry, duplicate and capacity checks see the
// same state the insert commits against.
package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gym_booking/apperror"
	"gym_booking/constants"
	"gym_booking/database"
	"gym_booking/locker"
	"gym_booking/model"
	"gym_booking/notify"
	"gym_booking/policy"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Mailer sends the confirmation for a committed reservation.
type Mailer interface {
	SendReservationConfirmation(account model.Account, session model.Session, r model.Reservation) error
}

type Controller struct {
	store       *database.Store
	locker      locker.Locker
	notifier    notify.Notifier
	clock       clockwork.Clock
	lockTimeout time.Duration
	validate    *validator.Validate
	mailer      Mailer
}

func NewController(store *database.Store, l locker.Locker, n notify.Notifier, clock clockwork.Clock, lockTimeout time.Duration) *Controller {
	if n == nil {
		n = notify.Nop{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Controller{
		store:       store,
		locker:      l,
		notifier:    n,
		clock:       clock,
		lockTimeout: lockTimeout,
		validate:    validator.New(),
	}
}

// WithMailer enables confirmation emails for accepted bookings.
func (c *Controller) WithMailer(m Mailer) *Controller {
	c.mailer = m
	return c
}

func newCode() string {
	return "RSV-" + strings.ToUpper(uuid.NewString()[:8])
}

func (c *Controller) lock(ctx context.Context, sessionID uint) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()
	unlock, err := c.locker.Lock(lockCtx, sessionID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInfrastructure, "session is busy, try again", err)
	}
	return unlock, nil
}

// AttemptBooking reserves a seat in sessionID for actor.
func (c *Controller) AttemptBooking(ctx context.Context, actor model.Actor, sessionID uint, note string) (*model.Reservation, error) {
	if err := policy.Authorize(actor, policy.CreateReservation); err != nil {
		return nil, err
	}
	input := model.CreateReservationInput{SessionId: sessionID, Note: note}
	if err := c.validate.Struct(input); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}

	unlock, err := c.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		reservation *model.Reservation
		session     *model.Session
		booked      int64
	)
	err = c.store.Transaction(ctx, func(tx *database.Store) error {
		session, err = tx.LockSession(ctx, sessionID)
		if errors.Is(err, database.ErrNotFound) {
			return apperror.NotFound(constants.SESSION_NOT_FOUND)
		}
		if err != nil {
			return apperror.Infrastructure(err)
		}

		now := c.clock.Now()
		if session.StateAt(now) != model.SessionScheduled {
			return apperror.Expired(constants.SESSION_EXPIRED)
		}

		exists, err := tx.HasReservation(ctx, sessionID, actor.ID)
		if err != nil {
			return apperror.Infrastructure(err)
		}
		if exists {
			return apperror.DuplicateBooking(constants.RESERVATION_DUPLICATE)
		}

		booked, err = tx.CountReservations(ctx, sessionID)
		if err != nil {
			return apperror.Infrastructure(err)
		}
		if booked >= int64(session.Capacity) {
			return apperror.CapacityExceeded(constants.SESSION_FULL)
		}

		reservation = &model.Reservation{
			Code:      newCode(),
			SessionId: sessionID,
			AccountId: actor.ID,
			CreatedAt: now,
		}
		if note != "" {
			reservation.Note = &note
		}
		if err := tx.InsertReservation(ctx, reservation); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return apperror.DuplicateBooking(constants.RESERVATION_DUPLICATE)
			}
			return apperror.Infrastructure(err)
		}
		booked++
		return nil
	})
	if err != nil {
		return nil, err
	}

	reservation.Session = *session
	c.publish(ctx, notify.Event{
		Type:          notify.EventBooked,
		SessionID:     sessionID,
		ReservationID: reservation.ID,
		Booked:        booked,
		Capacity:      session.Capacity,
		At:            reservation.CreatedAt,
	})
	c.confirm(ctx, *reservation)
	return reservation, nil
}

// CancelBooking removes a reservation. Customers may cancel only their own.
func (c *Controller) CancelBooking(ctx context.Context, actor model.Actor, reservationID uint) error {
	r, err := c.GetReservation(ctx, actor, reservationID)
	if err != nil {
		return err
	}

	unlock, err := c.lock(ctx, r.SessionId)
	if err != nil {
		return err
	}
	defer unlock()

	var booked int64
	err = c.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.DeleteReservation(ctx, r.ID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperror.NotFound(constants.RESERVATION_NOT_FOUND)
			}
			return apperror.Infrastructure(err)
		}
		booked, err = tx.CountReservations(ctx, r.SessionId)
		if err != nil {
			return apperror.Infrastructure(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ctx, notify.Event{
		Type:          notify.EventCancelled,
		SessionID:     r.SessionId,
		ReservationID: r.ID,
		Booked:        booked,
		Capacity:      r.Session.Capacity,
		At:            c.clock.Now(),
	})
	return nil
}

// ListReservations returns every reservation for staff and the actor's own
// otherwise, newest first.
func (c *Controller) ListReservations(ctx context.Context, actor model.Actor) ([]model.Reservation, error) {
	var owner *uint
	if !policy.Can(actor.Role, policy.ViewAllReservations) {
		owner = &actor.ID
	}
	reservations, err := c.store.ListReservations(ctx, owner)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return reservations, nil
}

func (c *Controller) GetReservation(ctx context.Context, actor model.Actor, reservationID uint) (*model.Reservation, error) {
	if reservationID == 0 {
		return nil, apperror.Validation(constants.DATA_INPUT_IS_NOT_NUMBER)
	}
	r, err := c.store.GetReservation(ctx, reservationID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.NotFound(constants.RESERVATION_NOT_FOUND)
	}
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	if !policy.CanActOnReservation(actor, r.AccountId) {
		return nil, apperror.Forbidden(constants.RESERVATION_FORBIDDEN)
	}
	return r, nil
}

func (c *Controller) publish(ctx context.Context, ev notify.Event) {
	if err := c.notifier.Publish(ctx, ev); err != nil {
		log.Printf("booking: publish %s for session %d: %v", ev.Type, ev.SessionID, err)
	}
}

func (c *Controller) confirm(ctx context.Context, r model.Reservation) {
	if c.mailer == nil {
		return
	}
	account, err := c.store.GetAccount(ctx, r.AccountId)
	if err != nil {
		log.Printf("booking: load account %d for confirmation: %v", r.AccountId, err)
		return
	}
	go func() {
		if err := c.mailer.SendReservationConfirmation(*account, r.Session, r); err != nil {
			log.Printf("booking: confirmation for %s failed: %v", r.Code, err)
		}
	}()
}
