package model

import "time"

// User represents an account that owns stress entries.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:255;not null;uniqueIndex:ix_users_username_unique"`
	Name         string     `json:"name" gorm:"size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime:false"`

	// Relations
	Stresses []Stress `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name.
func (User) TableName() string {
	return "users"
}

// UserProjection is the public view of a User.
type UserProjection struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Projection strips everything but the public identity fields.
func (u *User) Projection() UserProjection {
	return UserProjection{ID: u.ID, Username: u.Username, Name: u.Name}
}
