package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	apperrors "kairos/internal/errors"
	"kairos/internal/metrics"
	"kairos/internal/model"
	"kairos/internal/repository"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 2000
	maxStatusLen      = 32
	maxNoteLen        = 1000
	maxSourceLen      = 32
)

// CreateStressInput carries the fields of a new stress entry.
type CreateStressInput struct {
	Title       string
	Description *string
	Strength    int
}

// PatchStressInput carries a partial update; nil fields are left alone.
type PatchStressInput struct {
	Title       *string
	Description *string
	Status      *string
}

// AppendStrengthInput carries a new reading.
type AppendStrengthInput struct {
	Strength int
	Note     *string
	Source   *string
}

// StressService exposes stress entries and their strength history.
// Every operation is scoped to the acting user; entries of other users
// behave as if they did not exist.
type StressService interface {
	Create(ctx context.Context, user *model.User, in CreateStressInput) (*model.StressSummary, error)
	List(ctx context.Context, user *model.User) ([]model.StressSummary, error)
	Get(ctx context.Context, user *model.User, id uint) (*model.StressDetail, error)
	Patch(ctx context.Context, user *model.User, id uint, in PatchStressInput) (*model.StressDetail, error)
	Delete(ctx context.Context, user *model.User, id uint) error
	AppendStrength(ctx context.Context, user *model.User, id uint, in AppendStrengthInput) (*model.StrengthReading, error)
}

type stressService struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewStressService creates a new stress service.
func NewStressService(store repository.Store, log *zap.Logger) StressService {
	return &stressService{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the entry and its seed reading in one transaction.
func (s *stressService) Create(ctx context.Context, user *model.User, in CreateStressInput) (*model.StressSummary, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateStrength(in.Strength); err != nil {
		return nil, err
	}
	var description *string
	if in.Description != nil && *in.Description != "" {
		if utf8.RuneCountInString(*in.Description) > maxDescriptionLen {
			return nil, apperrors.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
		}
		d := *in.Description
		description = &d
	}

	stress := &model.Stress{
		UserID:      user.ID,
		Title:       title,
		Description: description,
		Status:      model.StressStatusActive,
	}
	seed := &model.StrengthReading{
		Strength: in.Strength,
		Note:     strPtr(model.NoteInitial),
		Source:   strPtr(model.SourceManual),
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Stresses().Create(ctx, stress); err != nil {
			return fmt.Errorf("create stress: %w", err)
		}
		seed.StressID = stress.ID
		if err := tx.Strengths().Append(ctx, seed); err != nil {
			return fmt.Errorf("create seed reading: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StressCreated()
	s.log.Info("stress created",
		zap.Uint("user_id", user.ID),
		zap.Uint("stress_id", stress.ID),
		zap.Int("strength", seed.Strength),
	)
	summary := model.NewStressSummary(stress, seed.Strength, seed.TS)
	return &summary, nil
}

// List returns the user's entries with their current strength, the most
// recently measured first.
func (s *stressService) List(ctx context.Context, user *model.User) ([]model.StressSummary, error) {
	var summaries []model.StressSummary
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		stresses, err := tx.Stresses().ListByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("list stresses: %w", err)
		}
		summaries, err = currentState(ctx, tx.Strengths(), stresses)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Get returns one entry with its full history, oldest reading first.
func (s *stressService) Get(ctx context.Context, user *model.User, id uint) (*model.StressDetail, error) {
	var detail model.StressDetail
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		stress, err := tx.Stresses().FindOwned(ctx, user.ID, id)
		if err != nil {
			return err
		}
		history, err := tx.Strengths().History(ctx, stress.ID)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		detail = model.NewStressDetail(stress, history)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Patch changes only the supplied fields.
func (s *stressService) Patch(ctx context.Context, user *model.User, id uint, in PatchStressInput) (*model.StressDetail, error) {
	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	var description *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			if utf8.RuneCountInString(d) > maxDescriptionLen {
				return nil, apperrors.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
			}
			description = &d
		}
		fields["description"] = description
	}
	if in.Status != nil {
		if err := validateStatus(*in.Status); err != nil {
			return nil, err
		}
		fields["status"] = model.StressStatus(*in.Status)
	}

	var detail model.StressDetail
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		stress, err := tx.Stresses().FindOwned(ctx, user.ID, id)
		if err != nil {
			return err
		}

		if len(fields) > 0 {
			now := s.now()
			fields["updated_at"] = now
			if err := tx.Stresses().UpdateFields(ctx, stress.ID, fields); err != nil {
				return fmt.Errorf("update stress: %w", err)
			}
			if v, ok := fields["title"].(string); ok {
				stress.Title = v
			}
			if in.Description != nil {
				stress.Description = description
			}
			if v, ok := fields["status"].(model.StressStatus); ok {
				stress.Status = v
			}
			stress.UpdatedAt = &now
		}

		history, err := tx.Strengths().History(ctx, stress.ID)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		detail = model.NewStressDetail(stress, history)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stress patched", zap.Uint("user_id", user.ID), zap.Uint("stress_id", id), zap.Int("fields", len(fields)))
	return &detail, nil
}

// Delete removes an entry and every reading it owns.
func (s *stressService) Delete(ctx context.Context, user *model.User, id uint) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		stress, err := tx.Stresses().FindOwned(ctx, user.ID, id)
		if err != nil {
			return err
		}
		if err := tx.Strengths().DeleteByStress(ctx, stress.ID); err != nil {
			return fmt.Errorf("delete readings: %w", err)
		}
		if err := tx.Stresses().Delete(ctx, stress.ID); err != nil {
			return fmt.Errorf("delete stress: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("stress deleted", zap.Uint("user_id", user.ID), zap.Uint("stress_id", id))
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperrors.NewValidationError("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return apperrors.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	return nil
}

func validateStrength(strength int) error {
	if !model.ValidStrength(strength) {
		return apperrors.NewValidationError("strength", fmt.Sprintf("must be between %d and %d", model.MinStrength, model.MaxStrength))
	}
	return nil
}

func validateStatus(status string) error {
	if len(status) > maxStatusLen || !model.StressStatus(status).Valid() {
		return apperrors.NewValidationError("status", "must be one of active, resolved, snoozed, maintenance")
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
