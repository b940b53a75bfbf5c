package model

import "time"

const (
	// MinStrength and MaxStrength bound every reading.
	MinStrength = 0
	MaxStrength = 10

	// SourceManual is recorded when the client does not name a source.
	SourceManual = "manual"
	// NoteInitial marks the reading written together with its entry.
	NoteInitial = "initial"
)

// StrengthReading is one immutable point in a stress entry's history.
type StrengthReading struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	StressID uint      `json:"-" gorm:"not null;index:ix_strength_stress_ts,priority:1"`
	Strength int       `json:"strength" gorm:"not null"`
	Note     *string   `json:"note" gorm:"size:1000"`
	Source   *string   `json:"source" gorm:"size:32"`
	TS       time.Time `json:"ts" gorm:"column:ts;not null;index:ix_strength_stress_ts,priority:2"`
}

// TableName pins the table name.
func (StrengthReading) TableName() string {
	return "stress_strength"
}

// LatestStrength is the most recent reading of one entry.
type LatestStrength struct {
	StressID uint      `json:"stress_id" gorm:"column:stress_id"`
	Strength int       `json:"strength" gorm:"column:strength"`
	TS       time.Time `json:"ts" gorm:"column:ts"`
}

// ValidStrength reports whether v is inside the allowed range.
func ValidStrength(v int) bool {
	return v >= MinStrength && v <= MaxStrength
}
