package service

import (
	"context"
	"fmt"
	"sort"

	"kairos/internal/model"
	"kairos/internal/repository"
)

// currentState annotates stresses with their latest reading using one
// batched ledger query and orders them by that reading's time, newest
// first. Ties keep the incoming (creation) order. An entry without any
// reading falls back to strength 0 at its creation time.
func currentState(ctx context.Context, ledger repository.StrengthRepository, stresses []model.Stress) ([]model.StressSummary, error) {
	ids := make([]uint, 0, len(stresses))
	for _, s := range stresses {
		ids = append(ids, s.ID)
	}

	latest, err := ledger.LatestFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("latest strengths: %w", err)
	}

	out := make([]model.StressSummary, 0, len(stresses))
	for i := range stresses {
		s := &stresses[i]
		current, at := 0, s.CreatedAt
		if l, ok := latest[s.ID]; ok {
			current, at = l.Strength, l.TS
		}
		out = append(out, model.NewStressSummary(s, current, at))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastStrengthAt.After(out[j].LastStrengthAt)
	})
	return out, nil
}
