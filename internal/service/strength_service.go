package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	apperrors "kairos/internal/errors"
	"kairos/internal/metrics"
	"kairos/internal/model"
	"kairos/internal/repository"
)

// AppendStrength adds a reading to the ledger of an owned entry and
// touches the entry's updated_at with the reading's timestamp.
func (s *stressService) AppendStrength(ctx context.Context, user *model.User, id uint, in AppendStrengthInput) (*model.StrengthReading, error) {
	if err := validateStrength(in.Strength); err != nil {
		return nil, err
	}

	var note *string
	if in.Note != nil && strings.TrimSpace(*in.Note) != "" {
		if utf8.RuneCountInString(*in.Note) > maxNoteLen {
			return nil, apperrors.NewValidationError("note", fmt.Sprintf("must be at most %d characters", maxNoteLen))
		}
		n := *in.Note
		note = &n
	}
	source := model.SourceManual
	if in.Source != nil && *in.Source != "" {
		if utf8.RuneCountInString(*in.Source) > maxSourceLen {
			return nil, apperrors.NewValidationError("source", fmt.Sprintf("must be at most %d characters", maxSourceLen))
		}
		source = *in.Source
	}

	reading := &model.StrengthReading{
		Strength: in.Strength,
		Note:     note,
		Source:   &source,
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		stress, err := tx.Stresses().FindOwned(ctx, user.ID, id)
		if err != nil {
			return err
		}
		reading.StressID = stress.ID
		if err := tx.Strengths().Append(ctx, reading); err != nil {
			return fmt.Errorf("append reading: %w", err)
		}
		if err := tx.Stresses().Touch(ctx, stress.ID, reading.TS); err != nil {
			return fmt.Errorf("touch stress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReadingAppended()
	s.log.Info("strength appended",
		zap.Uint("user_id", user.ID),
		zap.Uint("stress_id", id),
		zap.Int("strength", reading.Strength),
	)
	return reading, nil
}
