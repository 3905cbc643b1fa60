package program

import (
	"context"
)

// Service orchestrates validated input into repository calls. Validation is
// all-or-nothing and runs before any mutation begins.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the request, applies defaults (visibility private,
// description null), and persists the program.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Program, error) {
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	params := CreateParams{
		Title:       *req.Title,
		Code:        *req.Code,
		Description: req.Description,
		Visibility:  VisibilityPrivate,
	}
	if req.Visibility != nil {
		params.Visibility = Visibility(*req.Visibility)
	}

	return s.repo.Create(ctx, params)
}

// Get returns the program with the given id, visibility notwithstanding.
func (s *Service) Get(ctx context.Context, id int64) (*Program, error) {
	return s.repo.GetByID(ctx, id)
}

// Update validates the supplied fields and applies the patch atomically.
// An empty patch is legal and still refreshes updated_at.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Program, error) {
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the program. Deleting an absent id yields ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns one page of programs. Only the "public" filter value narrows
// the listing; any other value (or none) returns all visibility tiers.
func (s *Service) List(ctx context.Context, page, limit int, visibility string) (*Page, error) {
	params := ListParams{Page: page, Limit: limit}
	if visibility == string(VisibilityPublic) {
		public := VisibilityPublic
		params.Visibility = &public
	}
	return s.repo.List(ctx, params)
}
