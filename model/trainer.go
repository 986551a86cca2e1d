package model

type Trainer struct {
	DTO
	Name           string  `gorm:"size:100;not null" json:"name"`
	Specialization string  `gorm:"size:150;not null" json:"specialization"`
	PhotoPath      *string `gorm:"size:255" json:"photoPath"`
}

type UpdateTrainerInput struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,min=3,max=150"`
	PhotoPath      *string `json:"photoPath" validate:"omitempty,max=255"`
}

type CreateTrainerInput struct {
	Name           string  `json:"name" validate:"required,min=2,max=100"`
	Specialization string  `json:"specialization" validate:"required,min=3,max=150"`
	PhotoPath      *string `json:"photoPath" validate:"omitempty,max=255"`
}
