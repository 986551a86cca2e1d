package model

import "time"

const MaxReservationNoteLength = 255

// Reservation binds one account to one session. The composite unique index
// backs the one-booking-per-account rule at the storage level.
type Reservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	SessionId uint      `gorm:"not null;uniqueIndex:idx_reservation_session_account,priority:1" json:"sessionId"`
	AccountId uint      `gorm:"not null;uniqueIndex:idx_reservation_session_account,priority:2;index" json:"accountId"`
	Note      *string   `gorm:"size:255" json:"note"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	Session   Session   `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE" json:"-"`
	Account   Account   `gorm:"foreignKey:AccountId;constraint:OnDelete:CASCADE" json:"-"`
}

type CreateReservationInput struct {
	SessionId uint   `json:"sessionId" validate:"required,gt=0"`
	Note      string `json:"note" validate:"max=255"`
}

type ReservationResponse struct {
	ID           uint      `json:"id"`
	Code         string    `json:"code"`
	SessionId    uint      `json:"sessionId"`
	SessionTitle string    `json:"sessionTitle"`
	SessionStart time.Time `json:"sessionStart"`
	AccountId    uint      `json:"accountId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Note         *string   `json:"note"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewReservationResponse flattens a reservation with its preloaded session and account.
func NewReservationResponse(r Reservation) ReservationResponse {
	return ReservationResponse{
		ID:           r.ID,
		Code:         r.Code,
		SessionId:    r.SessionId,
		SessionTitle: r.Session.Title,
		SessionStart: r.Session.StartTime,
		AccountId:    r.AccountId,
		Username:     r.Account.Username,
		Email:        r.Account.Email,
		Note:         r.Note,
		CreatedAt:    r.CreatedAt,
	}
}
