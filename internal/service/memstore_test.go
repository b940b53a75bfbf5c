package service

import (
	"context"
	"sort"
	"time"

	apperrors "kairos/internal/errors"
	"kairos/internal/model"
	"kairos/internal/repository"
)

// memStore is an in-memory Store used by scenario tests. Transactions
// snapshot the whole state and restore it when fn fails.
type memStore struct {
	st  *memState
	now func() time.Time
}

type memState struct {
	users     map[uint]model.User
	stresses  map[uint]model.Stress
	readings  []model.StrengthReading
	nextUser  uint
	nextEntry uint
	nextRead  uint
}

func (s *memState) clone() *memState {
	cp := &memState{
		users:     make(map[uint]model.User, len(s.users)),
		stresses:  make(map[uint]model.Stress, len(s.stresses)),
		readings:  append([]model.StrengthReading(nil), s.readings...),
		nextUser:  s.nextUser,
		nextEntry: s.nextEntry,
		nextRead:  s.nextRead,
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.stresses {
		cp.stresses[k] = v
	}
	return cp
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		st: &memState{
			users:    map[uint]model.User{},
			stresses: map[uint]model.Stress{},
		},
		now: now,
	}
}

func (m *memStore) Users() repository.UserRepository         { return memUsers{m} }
func (m *memStore) Stresses() repository.StressRepository    { return memStresses{m} }
func (m *memStore) Strengths() repository.StrengthRepository { return memStrengths{m} }

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	saved := m.st.clone()
	if err := fn(ctx, m); err != nil {
		m.st = saved
		return err
	}
	return nil
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *model.User) error {
	for _, u := range r.m.st.users {
		if u.Username == user.Username {
			return apperrors.ErrUserAlreadyExists
		}
	}
	r.m.st.nextUser++
	user.ID = r.m.st.nextUser
	user.CreatedAt = r.m.now()
	r.m.st.users[user.ID] = *user
	return nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.m.st.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type memStresses struct{ m *memStore }

func (r memStresses) Create(_ context.Context, stress *model.Stress) error {
	r.m.st.nextEntry++
	stress.ID = r.m.st.nextEntry
	stress.CreatedAt = r.m.now()
	r.m.st.stresses[stress.ID] = *stress
	return nil
}

func (r memStresses) FindOwned(_ context.Context, userID, id uint) (*model.Stress, error) {
	s, ok := r.m.st.stresses[id]
	if !ok || s.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r memStresses) ListByUser(_ context.Context, userID uint) ([]model.Stress, error) {
	var out []model.Stress
	for _, s := range r.m.st.stresses {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r memStresses) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	s := r.m.st.stresses[id]
	for k, v := range fields {
		switch k {
		case "title":
			s.Title = v.(string)
		case "description":
			s.Description = v.(*string)
		case "status":
			s.Status = v.(model.StressStatus)
		case "updated_at":
			at := v.(time.Time)
			s.UpdatedAt = &at
		}
	}
	r.m.st.stresses[id] = s
	return nil
}

func (r memStresses) Touch(_ context.Context, id uint, at time.Time) error {
	s := r.m.st.stresses[id]
	s.UpdatedAt = &at
	r.m.st.stresses[id] = s
	return nil
}

func (r memStresses) Delete(_ context.Context, id uint) error {
	delete(r.m.st.stresses, id)
	return nil
}

type memStrengths struct{ m *memStore }

func (r memStrengths) Append(_ context.Context, reading *model.StrengthReading) error {
	ts := r.m.now().UTC().Truncate(time.Millisecond)
	for _, rd := range r.m.st.readings {
		if rd.StressID == reading.StressID && rd.TS.After(ts) {
			ts = rd.TS
		}
	}
	r.m.st.nextRead++
	reading.ID = r.m.st.nextRead
	reading.TS = ts
	r.m.st.readings = append(r.m.st.readings, *reading)
	return nil
}

func (r memStrengths) History(_ context.Context, stressID uint) ([]model.StrengthReading, error) {
	var out []model.StrengthReading
	for _, rd := range r.m.st.readings {
		if rd.StressID == stressID {
			out = append(out, rd)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TS.Equal(out[j].TS) {
			return out[i].TS.Before(out[j].TS)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memStrengths) LatestFor(_ context.Context, stressIDs []uint) (map[uint]model.LatestStrength, error) {
	want := make(map[uint]bool, len(stressIDs))
	for _, id := range stressIDs {
		want[id] = true
	}
	out := map[uint]model.LatestStrength{}
	for _, rd := range r.m.st.readings {
		if !want[rd.StressID] {
			continue
		}
		if cur, ok := out[rd.StressID]; ok && cur.TS.After(rd.TS) {
			continue
		}
		out[rd.StressID] = model.LatestStrength{StressID: rd.StressID, Strength: rd.Strength, TS: rd.TS}
	}
	return out, nil
}

func (r memStrengths) DeleteByStress(_ context.Context, stressID uint) error {
	kept := r.m.st.readings[:0]
	for _, rd := range r.m.st.readings {
		if rd.StressID != stressID {
			kept = append(kept, rd)
		}
	}
	r.m.st.readings = kept
	return nil
}

// stepClock advances by step on every read.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}
