package program

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("program not found")

// CreateParams carries a validated, normalized program to persist. Visibility
// and description defaults have already been applied by the service.
type CreateParams struct {
	Title       string
	Code        string
	Description *string
	Visibility  Visibility
}

// ListParams selects a page of the visibility-scoped listing.
type ListParams struct {
	Page       int
	Limit      int
	Visibility *Visibility // nil means all tiers
}

// Page is one page of the ordered listing, with the totals clients need for
// pagination controls.
type Page struct {
	Items []Program
	Total int
	Page  int
	Limit int
}

// LastPage returns the number of the final page, at least 1.
func (p *Page) LastPage() int {
	if p.Total == 0 {
		return 1
	}
	last := (p.Total + p.Limit - 1) / p.Limit
	if last < 1 {
		last = 1
	}
	return last
}

// Repository owns persisted program artifacts. Implementations must order
// listings by created_at descending with id ascending as the tie-breaker, and
// must apply patches atomically against a single snapshot of the artifact.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Program, error)
	GetByID(ctx context.Context, id int64) (*Program, error)
	Update(ctx context.Context, id int64, patch Patch) (*Program, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) (*Page, error)
}
