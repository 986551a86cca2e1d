package model

import "time"

const (
	MinSessionCapacity = 1
	MaxSessionCapacity = 1000
)

type SessionState string

const (
	SessionScheduled SessionState = "scheduled"
	SessionExpired   SessionState = "expired"
)

// Session is a bookable class. Reservations reference it and are removed with it.
type Session struct {
	DTO
	Slug      string    `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	StartTime time.Time `gorm:"not null;index" json:"startTime"`
	EndTime   time.Time `gorm:"not null;index" json:"endTime"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	TrainerId *uint     `json:"trainerId"`
	Trainer   *Trainer  `gorm:"foreignKey:TrainerId;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"trainer,omitempty"`
}

// StateAt reports whether the session still accepts bookings at now.
func (s Session) StateAt(now time.Time) SessionState {
	if s.EndTime.After(now) {
		return SessionScheduled
	}
	return SessionExpired
}

type SessionResponse struct {
	Session
	Booked    int64        `json:"booked"`
	Available int64        `json:"available"`
	State     SessionState `json:"state"`
}

func NewSessionResponse(s Session, booked int64, now time.Time) SessionResponse {
	available := int64(s.Capacity) - booked
	if available < 0 {
		available = 0
	}
	return SessionResponse{
		Session:   s,
		Booked:    booked,
		Available: available,
		State:     s.StateAt(now),
	}
}

type CreateSessionInput struct {
	Title     string    `json:"title" validate:"required,min=3,max=100"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Capacity  int       `json:"capacity" validate:"required,min=1,max=1000"`
	TrainerId *uint     `json:"trainerId" validate:"omitempty,gt=0"`
}

type UpdateSessionInput struct {
	Title        *string    `json:"title" validate:"omitempty,min=3,max=100"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Capacity     *int       `json:"capacity" validate:"omitempty,min=1,max=1000"`
	TrainerId    *uint      `json:"trainerId" validate:"omitempty,gt=0"`
	ClearTrainer bool       `json:"clearTrainer"`
}

type FilterSessionInput struct {
	Pagination
	TrainerId *uint `query:"trainerId"`
	Upcoming  bool  `query:"upcoming"`
}
