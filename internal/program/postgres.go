package program

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/uptrace/bun"

	"github.com/logo-playground/api/internal/database"
)

// PostgresRepository implements Repository on top of bun/Postgres.
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new program and returns it with assigned id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, params CreateParams) (*Program, error) {
	dbProg := &database.Program{
		Title:       params.Title,
		Code:        params.Code,
		Description: params.Description,
		Visibility:  string(params.Visibility),
	}

	_, err := r.db.NewInsert().
		Model(dbProg).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	return mapDBProgramToModel(dbProg), nil
}

// GetByID retrieves a program by id. No visibility filtering applies to
// direct reads; only listings are visibility-scoped.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Program, error) {
	dbProg := new(database.Program)
	err := r.db.NewSelect().
		Model(dbProg).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return mapDBProgramToModel(dbProg), nil
}

// Update applies the patch atomically: the row is locked for the duration of
// the transaction, so two concurrent patches can never interleave field-wise.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch Patch) (*Program, error) {
	var updated *Program

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		dbProg := new(database.Program)
		err := tx.NewSelect().
			Model(dbProg).
			Where("id = ?", id).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock program: %w", err)
		}

		prog := mapDBProgramToModel(dbProg)
		patch.Apply(prog)
		prog.UpdatedAt = time.Now()

		_, err = tx.NewUpdate().
			Model((*database.Program)(nil)).
			Set("title = ?", prog.Title).
			Set("code = ?", prog.Code).
			Set("description = ?", prog.Description).
			Set("visibility = ?", string(prog.Visibility)).
			Set("updated_at = ?", prog.UpdatedAt).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update program: %w", err)
		}

		updated = prog
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a program irreversibly.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.Program)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// List returns one page ordered by created_at descending, id ascending for
// equal timestamps. Out-of-range pages come back empty, not as an error.
func (r *PostgresRepository) List(ctx context.Context, params ListParams) (*Page, error) {
	var dbProgs []database.Program

	query := r.db.NewSelect().
		Model(&dbProgs).
		OrderExpr("created_at DESC").
		OrderExpr("id ASC").
		Limit(params.Limit).
		Offset(listOffset(params.Page, params.Limit))

	if params.Visibility != nil {
		query = query.Where("visibility = ?", string(*params.Visibility))
	}

	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	items := make([]Program, 0, len(dbProgs))
	for i := range dbProgs {
		items = append(items, *mapDBProgramToModel(&dbProgs[i]))
	}

	return &Page{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// listOffset computes the row offset for a page without overflowing on huge
// page numbers. A saturated offset is past every row, so the page comes back
// empty rather than as an error.
func listOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// mapDBProgramToModel converts database model to domain model
func mapDBProgramToModel(dbp *database.Program) *Program {
	return &Program{
		ID:          dbp.ID,
		Title:       dbp.Title,
		Code:        dbp.Code,
		Description: dbp.Description,
		Visibility:  Visibility(dbp.Visibility),
		CreatedAt:   dbp.CreatedAt,
		UpdatedAt:   dbp.UpdatedAt,
	}
}
