package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"gym_booking/model"
	"gym_booking/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store wraps every query the booking core runs. A Store handed to a
// Transaction callback is bound to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Join(ErrDuplicate, err)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func (s *Store) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// forUpdate adds a row lock where the dialect supports one. SQLite has no row
// locks and relies on the per-session locker instead.
func (s *Store) forUpdate(q *gorm.DB) *gorm.DB {
	if s.isPostgres() {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// ---- sessions ----

func (s *Store) GetSession(ctx context.Context, id uint) (*model.Session, error) {
	var session model.Session
	if err := s.db.WithContext(ctx).Preload("Trainer").First(&session, id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// LockSession loads the session row, holding a row lock on PostgreSQL until
// the surrounding transaction ends.
func (s *Store) LockSession(ctx context.Context, id uint) (*model.Session, error) {
	var session model.Session
	q := s.forUpdate(s.db.WithContext(ctx).Model(&model.Session{}))
	if err := q.Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	session.StartTime = session.StartTime.UTC()
	session.EndTime = session.EndTime.UTC()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error)
}

func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	session.StartTime = session.StartTime.UTC()
	session.EndTime = session.EndTime.UTC()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(session).Error)
}

func (s *Store) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&model.Session{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListSessions returns one page of sessions ordered by start time, plus the
// total matching count. from, when set, keeps only sessions starting after it.
func (s *Store) ListSessions(ctx context.Context, filter model.FilterSessionInput, from *time.Time) ([]model.Session, int64, error) {
	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.Session{})
		if filter.TrainerId != nil {
			q = q.Where("trainer_id = ?", *filter.TrainerId)
		}
		if from != nil {
			q = q.Where("start_time > ?", from.UTC())
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.Session
	q := utils.ApplyPagination(scoped().Preload("Trainer").Order("start_time ASC").Order("id ASC"), filter.Limit, filter.Page)
	if err := q.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *Store) UpcomingSessions(ctx context.Context, now time.Time, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.WithContext(ctx).
		Preload("Trainer").
		Where("start_time > ?", now.UTC()).
		Order("start_time ASC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// FindExpiredSessionIDs returns ids of sessions whose end time is before now.
func (s *Store) FindExpiredSessionIDs(ctx context.Context, now time.Time) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("end_time < ?", now.UTC()).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteSessionCascade removes the session and its reservations atomically
// and returns how many reservations went with it.
func (s *Store) DeleteSessionCascade(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.LockSession(ctx, id); err != nil {
			return err
		}
		var err error
		removed, err = tx.deleteSessionRows(ctx, id)
		return err
	})
	return removed, err
}

// DeleteExpiredSessionCascade deletes the session only if it is still
// expired at now. It reports false when the session is gone or was moved
// into the future since it was listed.
func (s *Store) DeleteExpiredSessionCascade(ctx context.Context, id uint, now time.Time) (bool, int64, error) {
	var (
		deleted bool
		removed int64
	)
	err := s.Transaction(ctx, func(tx *Store) error {
		session, err := tx.LockSession(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !session.EndTime.Before(now) {
			return nil
		}
		removed, err = tx.deleteSessionRows(ctx, id)
		if err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, removed, err
}

func (s *Store) deleteSessionRows(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("session_id = ?", id).Delete(&model.Reservation{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := s.db.WithContext(ctx).Delete(&model.Session{}, id).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// ---- reservations ----

func (s *Store) CountReservations(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reservation{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// CountReservationsBySession returns booked counts keyed by session id.
// Sessions without reservations are absent from the map.
func (s *Store) CountReservationsBySession(ctx context.Context, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		SessionId uint
		Total     int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("session_id, COUNT(*) AS total").
		Where("session_id IN ?", ids).
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SessionId] = row.Total
	}
	return counts, nil
}

func (s *Store) HasReservation(ctx context.Context, sessionID, accountID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("session_id = ? AND account_id = ?", sessionID, accountID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) InsertReservation(ctx context.Context, r *model.Reservation) error {
	r.CreatedAt = r.CreatedAt.UTC()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error)
}

func (s *Store) GetReservation(ctx context.Context, id uint) (*model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).Preload("Session").Preload("Account").First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) DeleteReservation(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Reservation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReservations returns reservations newest first. A nil accountID lists
// every account's reservations.
func (s *Store) ListReservations(ctx context.Context, accountID *uint) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Preload("Session").Preload("Account")
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}
	var reservations []model.Reservation
	err := q.Order("created_at DESC").Order("id DESC").Find(&reservations).Error
	return reservations, err
}

// ---- trainers ----

func (s *Store) ListTrainers(ctx context.Context) ([]model.Trainer, error) {
	var trainers []model.Trainer
	err := s.db.WithContext(ctx).Order("name ASC").Find(&trainers).Error
	return trainers, err
}

func (s *Store) GetTrainer(ctx context.Context, id uint) (*model.Trainer, error) {
	var trainer model.Trainer
	if err := s.db.WithContext(ctx).First(&trainer, id).Error; err != nil {
		return nil, translate(err)
	}
	return &trainer, nil
}

func (s *Store) CreateTrainer(ctx context.Context, trainer *model.Trainer) error {
	return translate(s.db.WithContext(ctx).Create(trainer).Error)
}

func (s *Store) SaveTrainer(ctx context.Context, trainer *model.Trainer) error {
	return translate(s.db.WithContext(ctx).Save(trainer).Error)
}

// DeleteTrainer removes the trainer and clears it from every session.
func (s *Store) DeleteTrainer(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetTrainer(ctx, id); err != nil {
			return err
		}
		if err := tx.db.WithContext(ctx).Model(&model.Session{}).
			Where("trainer_id = ?", id).
			Update("trainer_id", nil).Error; err != nil {
			return err
		}
		return tx.db.WithContext(ctx).Delete(&model.Trainer{}, id).Error
	})
}

// ---- accounts ----

func (s *Store) ListAccounts(ctx context.Context, pagination model.Pagination) ([]model.Account, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var accounts []model.Account
	q := s.db.WithContext(ctx).Order("id ASC")
	if err := utils.ApplyPagination(q, pagination.Limit, pagination.Page).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (s *Store) GetAccount(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *model.Account) error {
	return translate(s.db.WithContext(ctx).Create(account).Error)
}

// UpdateAccountProfile writes the self-editable fields of an account. A
// username clash surfaces as ErrDuplicate.
func (s *Store) UpdateAccountProfile(ctx context.Context, id uint, input model.UpdateProfileInput) error {
	res := s.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(map[string]any{
		"username":   input.Username,
		"first_name": input.FirstName,
		"last_name":  input.LastName,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateAccountRole(ctx context.Context, id uint, role model.Role) error {
	res := s.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
