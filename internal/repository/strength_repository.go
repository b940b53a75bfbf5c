package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kairos/internal/model"
)

// StrengthRepository is the append-only ledger of strength readings.
type StrengthRepository interface {
	Append(ctx context.Context, reading *model.StrengthReading) error
	History(ctx context.Context, stressID uint) ([]model.StrengthReading, error)
	LatestFor(ctx context.Context, stressIDs []uint) (map[uint]model.LatestStrength, error)
	DeleteByStress(ctx context.Context, stressID uint) error
}

type strengthRepository struct {
	db *gorm.DB
}

// NewStrengthRepository creates a new strength ledger.
func NewStrengthRepository(db *gorm.DB) StrengthRepository {
	return &strengthRepository{db: db}
}

// Append stores a reading and assigns its timestamp. The timestamp never
// goes below the newest reading already stored for the same entry, so
// history order and insertion order agree even if the clock steps back.
func (r *strengthRepository) Append(ctx context.Context, reading *model.StrengthReading) error {
	db := r.db.WithContext(ctx)

	ts := db.NowFunc().UTC().Truncate(time.Millisecond)
	var newest model.StrengthReading
	err := db.Select("ts").
		Where("stress_id = ?", reading.StressID).
		Order("ts DESC").
		Limit(1).
		Find(&newest).Error
	if err != nil {
		return err
	}
	if newest.TS.After(ts) {
		ts = newest.TS
	}

	reading.ID = 0
	reading.TS = ts
	return db.Create(reading).Error
}

// History returns every reading of an entry, oldest first.
func (r *strengthRepository) History(ctx context.Context, stressID uint) ([]model.StrengthReading, error) {
	var readings []model.StrengthReading
	if err := r.db.WithContext(ctx).
		Where("stress_id = ?", stressID).
		Order("ts ASC").Order("id ASC").
		Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// LatestFor returns, per entry id, the reading with the greatest ts.
// It runs as one grouped query over the whole id set. Entries without
// readings are absent from the result; on equal timestamps either
// reading may win.
func (r *strengthRepository) LatestFor(ctx context.Context, stressIDs []uint) (map[uint]model.LatestStrength, error) {
	out := make(map[uint]model.LatestStrength, len(stressIDs))
	if len(stressIDs) == 0 {
		return out, nil
	}

	db := r.db.WithContext(ctx)
	newest := db.Model(&model.StrengthReading{}).
		Select("stress_id, MAX(ts) AS max_ts").
		Where("stress_id IN ?", stressIDs).
		Group("stress_id")

	var rows []model.LatestStrength
	if err := db.Table("stress_strength AS ss").
		Select("ss.stress_id, ss.strength, ss.ts").
		Joins("JOIN (?) AS latest ON ss.stress_id = latest.stress_id AND ss.ts = latest.max_ts", newest).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.StressID] = row
	}
	return out, nil
}

// DeleteByStress removes all readings of an entry.
func (r *strengthRepository) DeleteByStress(ctx context.Context, stressID uint) error {
	return r.db.WithContext(ctx).
		Where("stress_id = ?", stressID).
		Delete(&model.StrengthReading{}).Error
}
