// Package session manages the lifecycle of bookable classes.
package session

import (
	"context"
	"errors"
	"log"
	"time"

	"gym_booking/apperror"
	"gym_booking/constants"
	"gym_booking/database"
	"gym_booking/helper"
	"gym_booking/locker"
	"gym_booking/model"
	"gym_booking/notify"
	"gym_booking/policy"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/jonboulle/clockwork"
)

const DefaultUpcomingLimit = 3

type Manager struct {
	store       *database.Store
	locker      locker.Locker
	notifier    notify.Notifier
	clock       clockwork.Clock
	lockTimeout time.Duration
	validate    *validator.Validate
}

func NewManager(store *database.Store, l locker.Locker, n notify.Notifier, clock clockwork.Clock, lockTimeout time.Duration) *Manager {
	if n == nil {
		n = notify.Nop{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Manager{
		store:       store,
		locker:      l,
		notifier:    n,
		clock:       clock,
		lockTimeout: lockTimeout,
		validate:    validator.New(),
	}
}

func (m *Manager) lock(ctx context.Context, id uint) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()
	unlock, err := m.locker.Lock(lockCtx, id)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInfrastructure, "session is busy, try again", err)
	}
	return unlock, nil
}

func (m *Manager) checkTrainer(ctx context.Context, store *database.Store, trainerID *uint) error {
	if trainerID == nil {
		return nil
	}
	_, err := store.GetTrainer(ctx, *trainerID)
	if errors.Is(err, database.ErrNotFound) {
		return apperror.Validation(constants.TRAINER_NOT_FOUND)
	}
	if err != nil {
		return apperror.Infrastructure(err)
	}
	return nil
}

func (m *Manager) validateInput(input any) error {
	if err := m.validate.Struct(input); err != nil {
		return apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}
	return nil
}

func (m *Manager) Create(ctx context.Context, actor model.Actor, input model.CreateSessionInput) (*model.SessionResponse, error) {
	if err := policy.Authorize(actor, policy.ManageSessions); err != nil {
		return nil, err
	}
	if err := m.validateInput(input); err != nil {
		return nil, err
	}

	var session model.Session
	err := m.store.Transaction(ctx, func(tx *database.Store) error {
		if err := m.checkTrainer(ctx, tx, input.TrainerId); err != nil {
			return err
		}
		slug, err := helper.GenerateUniqueSessionSlug(ctx, tx, input.Title, 0)
		if err != nil {
			return apperror.Infrastructure(err)
		}
		if err := copier.Copy(&session, &input); err != nil {
			return apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
		}
		session.Slug = slug
		if err := tx.CreateSession(ctx, &session); err != nil {
			return apperror.Infrastructure(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := model.NewSessionResponse(session, 0, m.clock.Now())
	return &resp, nil
}

// Update applies the non-nil fields of input. The merged session must still
// satisfy every creation rule, and capacity may not drop below the seats
// already booked.
func (m *Manager) Update(ctx context.Context, actor model.Actor, id uint, input model.UpdateSessionInput) (*model.SessionResponse, error) {
	if err := policy.Authorize(actor, policy.ManageSessions); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, apperror.Validation(constants.DATA_INPUT_IS_NOT_NUMBER)
	}
	if err := m.validateInput(input); err != nil {
		return nil, err
	}

	unlock, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		merged model.Session
		booked int64
	)
	err = m.store.Transaction(ctx, func(tx *database.Store) error {
		current, err := tx.LockSession(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return apperror.NotFound(constants.SESSION_NOT_FOUND)
		}
		if err != nil {
			return apperror.Infrastructure(err)
		}

		merged = *current
		if input.Title != nil {
			merged.Title = *input.Title
		}
		if input.StartTime != nil {
			merged.StartTime = *input.StartTime
		}
		if input.EndTime != nil {
			merged.EndTime = *input.EndTime
		}
		if input.Capacity != nil {
			merged.Capacity = *input.Capacity
		}
		if input.TrainerId != nil {
			merged.TrainerId = input.TrainerId
		}
		if input.ClearTrainer {
			merged.TrainerId = nil
		}
		merged.Trainer = nil

		if err := m.validateInput(model.CreateSessionInput{
			Title:     merged.Title,
			StartTime: merged.StartTime,
			EndTime:   merged.EndTime,
			Capacity:  merged.Capacity,
			TrainerId: merged.TrainerId,
		}); err != nil {
			return err
		}
		if input.TrainerId != nil {
			if err := m.checkTrainer(ctx, tx, merged.TrainerId); err != nil {
				return err
			}
		}

		booked, err = tx.CountReservations(ctx, id)
		if err != nil {
			return apperror.Infrastructure(err)
		}
		if int64(merged.Capacity) < booked {
			return apperror.Validation("capacity cannot be lower than the number of existing reservations")
		}

		if merged.Title != current.Title {
			merged.Slug, err = helper.GenerateUniqueSessionSlug(ctx, tx, merged.Title, id)
			if err != nil {
				return apperror.Infrastructure(err)
			}
		}
		if err := tx.SaveSession(ctx, &merged); err != nil {
			return apperror.Infrastructure(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	m.publish(ctx, notify.Event{Type: notify.EventUpdated, SessionID: id, Booked: booked, Capacity: merged.Capacity, At: now})
	resp := model.NewSessionResponse(merged, booked, now)
	return &resp, nil
}

// Delete removes the session together with its reservations.
func (m *Manager) Delete(ctx context.Context, actor model.Actor, id uint) error {
	if err := policy.Authorize(actor, policy.ManageSessions); err != nil {
		return err
	}
	if id == 0 {
		return apperror.Validation(constants.DATA_INPUT_IS_NOT_NUMBER)
	}

	unlock, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	removed, err := m.store.DeleteSessionCascade(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return apperror.NotFound(constants.SESSION_NOT_FOUND)
	}
	if err != nil {
		return apperror.Infrastructure(err)
	}
	log.Printf("session %d deleted with %d reservations", id, removed)

	m.publish(ctx, notify.Event{Type: notify.EventRemoved, SessionID: id, At: m.clock.Now()})
	return nil
}

func (m *Manager) Get(ctx context.Context, id uint) (*model.SessionResponse, error) {
	session, err := m.store.GetSession(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.NotFound(constants.SESSION_NOT_FOUND)
	}
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	booked, err := m.store.CountReservations(ctx, id)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	resp := model.NewSessionResponse(*session, booked, m.clock.Now())
	return &resp, nil
}

// List returns one page of sessions ordered by start time with the total
// number of matches.
func (m *Manager) List(ctx context.Context, filter model.FilterSessionInput) ([]model.SessionResponse, int64, error) {
	now := m.clock.Now()
	var from *time.Time
	if filter.Upcoming {
		from = &now
	}
	sessions, total, err := m.store.ListSessions(ctx, filter, from)
	if err != nil {
		return nil, 0, apperror.Infrastructure(err)
	}
	rows, err := m.withCounts(ctx, sessions, now)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Upcoming returns the next sessions that have not started yet.
func (m *Manager) Upcoming(ctx context.Context, limit int) ([]model.SessionResponse, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	now := m.clock.Now()
	sessions, err := m.store.UpcomingSessions(ctx, now, limit)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return m.withCounts(ctx, sessions, now)
}

func (m *Manager) withCounts(ctx context.Context, sessions []model.Session, now time.Time) ([]model.SessionResponse, error) {
	ids := make([]uint, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	counts, err := m.store.CountReservationsBySession(ctx, ids)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	rows := make([]model.SessionResponse, len(sessions))
	for i, s := range sessions {
		rows[i] = model.NewSessionResponse(s, counts[s.ID], now)
	}
	return rows, nil
}

func (m *Manager) publish(ctx context.Context, ev notify.Event) {
	if err := m.notifier.Publish(ctx, ev); err != nil {
		log.Printf("session: publish %s for session %d: %v", ev.Type, ev.SessionID, err)
	}
}
