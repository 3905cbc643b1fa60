package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/logo-playground/api/internal/program"
)

// ProgramStore is an in-memory program repository. The store mutex makes each
// patch application atomic against a single snapshot, so concurrent updates
// cannot interleave field-wise.
type ProgramStore struct {
	mu       sync.RWMutex
	programs map[int64]program.Program
	nextID   int64
}

func NewProgramStore() *ProgramStore {
	return &ProgramStore{
		programs: make(map[int64]program.Program),
		nextID:   1,
	}
}

func (s *ProgramStore) Create(ctx context.Context, params program.CreateParams) (*program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	prog := program.Program{
		ID:          s.nextID,
		Title:       params.Title,
		Code:        params.Code,
		Description: params.Description,
		Visibility:  params.Visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.programs[prog.ID] = prog

	copied := prog
	return &copied, nil
}

func (s *ProgramStore) GetByID(ctx context.Context, id int64) (*program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prog, ok := s.programs[id]
	if !ok {
		return nil, program.ErrNotFound
	}
	return &prog, nil
}

func (s *ProgramStore) Update(ctx context.Context, id int64, patch program.Patch) (*program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, ok := s.programs[id]
	if !ok {
		return nil, program.ErrNotFound
	}

	patch.Apply(&prog)
	prog.UpdatedAt = time.Now()
	s.programs[id] = prog

	copied := prog
	return &copied, nil
}

func (s *ProgramStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[id]; !ok {
		return program.ErrNotFound
	}
	delete(s.programs, id)
	return nil
}

func (s *ProgramStore) List(ctx context.Context, params program.ListParams) (*program.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]program.Program, 0, len(s.programs))
	for _, prog := range s.programs {
		if params.Visibility != nil && prog.Visibility != *params.Visibility {
			continue
		}
		matched = append(matched, prog)
	}

	// created_at descending, id ascending as the tie-breaker
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	// Pages past the end come back empty. Comparing via division keeps the
	// offset arithmetic from overflowing on huge page numbers.
	total := len(matched)
	start := total
	if params.Page-1 <= total/params.Limit {
		start = (params.Page - 1) * params.Limit
		if start > total {
			start = total
		}
	}
	end := total
	if params.Limit < total-start {
		end = start + params.Limit
	}

	items := make([]program.Program, end-start)
	copy(items, matched[start:end])

	return &program.Page{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}
