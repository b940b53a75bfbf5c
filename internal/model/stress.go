package model

import "time"

// StressStatus is the lifecycle state of a stress entry.
type StressStatus string

const (
	StressStatusActive      StressStatus = "active"
	StressStatusResolved    StressStatus = "resolved"
	StressStatusSnoozed     StressStatus = "snoozed"
	StressStatusMaintenance StressStatus = "maintenance"
)

// Valid reports whether s belongs to the closed status set.
func (s StressStatus) Valid() bool {
	switch s {
	case StressStatusActive, StressStatusResolved, StressStatusSnoozed, StressStatusMaintenance:
		return true
	}
	return false
}

// Stress is one tracked source of stress owned by a user.
// Every row has at least one StrengthReading; the first one is written
// in the same transaction as the entry.
type Stress struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	UserID      uint         `json:"-" gorm:"not null;index:ix_stress_user"`
	Title       string       `json:"title" gorm:"size:255;not null"`
	Description *string      `json:"description" gorm:"size:2000"`
	Status      StressStatus `json:"status" gorm:"size:32;not null;default:'active'"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at" gorm:"autoUpdateTime:false"`

	// Relations
	Strengths []StrengthReading `json:"-" gorm:"foreignKey:StressID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name.
func (Stress) TableName() string {
	return "stress"
}

// StressSummary is a stress entry annotated with its current strength.
type StressSummary struct {
	ID              uint         `json:"id"`
	Title           string       `json:"title"`
	Description     *string      `json:"description"`
	Status          StressStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       *time.Time   `json:"updated_at"`
	CurrentStrength int          `json:"current_strength"`
	LastStrengthAt  time.Time    `json:"last_strength_at"`
}

// StressDetail is a stress entry with its full history, oldest first.
type StressDetail struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      StressStatus      `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at"`
	History     []StrengthReading `json:"history"`
}

// NewStressSummary builds the list projection of s.
func NewStressSummary(s *Stress, current int, at time.Time) StressSummary {
	return StressSummary{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		CurrentStrength: current,
		LastStrengthAt:  at,
	}
}

// NewStressDetail builds the detail projection of s.
func NewStressDetail(s *Stress, history []StrengthReading) StressDetail {
	if history == nil {
		history = []StrengthReading{}
	}
	return StressDetail{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		History:     history,
	}
}
