package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTrainer  Role = "trainer"
	RoleCustomer Role = "customer"
)

var Roles = []Role{RoleAdmin, RoleTrainer, RoleCustomer}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to gym staff (admin or trainer).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTrainer
}

type Account struct {
	DTO
	Username  string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Role      Role   `gorm:"size:20;not null;default:customer" json:"role"`
}

// UpdateProfileInput holds the fields an account may change about itself.
// Email and role are not part of it.
type UpdateProfileInput struct {
	Username  string `json:"username" validate:"required,min=2,max=100"`
	FirstName string `json:"firstName" validate:"required,min=2,max=100"`
	LastName  string `json:"lastName" validate:"required,min=2,max=100"`
}

type ChangeRoleInput struct {
	Role Role `json:"role" validate:"required,oneof=admin trainer customer"`
}
