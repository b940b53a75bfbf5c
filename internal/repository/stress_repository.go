package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kairos/internal/model"
)

// StressRepository defines stress entry persistence operations.
// Every lookup by id is scoped to the owning user.
type StressRepository interface {
	Create(ctx context.Context, stress *model.Stress) error
	FindOwned(ctx context.Context, userID, id uint) (*model.Stress, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Stress, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Touch(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

type stressRepository struct {
	db *gorm.DB
}

// NewStressRepository creates a new stress repository.
func NewStressRepository(db *gorm.DB) StressRepository {
	return &stressRepository{db: db}
}

// Create creates a new stress entry.
func (r *stressRepository) Create(ctx context.Context, stress *model.Stress) error {
	return r.db.WithContext(ctx).Create(stress).Error
}

// FindOwned finds an entry by id that belongs to userID.
// Missing and foreign entries both yield ErrNotFound.
func (r *stressRepository) FindOwned(ctx context.Context, userID, id uint) (*model.Stress, error) {
	var stress model.Stress
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&stress).Error; err != nil {
		return nil, notFound(err)
	}
	return &stress, nil
}

// ListByUser lists a user's entries, newest first.
func (r *stressRepository) ListByUser(ctx context.Context, userID uint) ([]model.Stress, error) {
	var stresses []model.Stress
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&stresses).Error; err != nil {
		return nil, err
	}
	return stresses, nil
}

// UpdateFields writes the given columns of an entry.
func (r *stressRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Stress{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Touch sets updated_at without changing any other column.
func (r *stressRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Stress{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

// Delete removes the entry row. Its readings must be gone already or
// be removed by the foreign key cascade.
func (r *stressRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Stress{}, id).Error
}
