package model

type UserRole string

const (
	RoleLearner UserRole = "learner"
	RoleAdmin   UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	Name  string   `gorm:"size:255;not null" json:"name"`
	Email string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role  UserRole `gorm:"size:20;not null;default:'learner'" json:"role"`
}

func (User) TableName() string {
	return "scorm_users"
}
