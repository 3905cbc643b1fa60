package program_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logo-playground/api/internal/memstore"
	"github.com/logo-playground/api/internal/program"
	"github.com/logo-playground/api/internal/validation"
)

func str(s string) *string { return &s }

func newService() *program.Service {
	return program.NewService(memstore.NewProgramStore())
}

func mustCreate(t *testing.T, service *program.Service, req program.CreateRequest) *program.Program {
	t.Helper()
	prog, err := service.Create(context.Background(), req)
	require.NoError(t, err)
	return prog
}

func TestServiceCreate_Defaults(t *testing.T) {
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title: str("square"),
		Code:  str("repeat 4 [fd 10 rt 90]"),
	})

	assert.Equal(t, program.VisibilityPrivate, prog.Visibility)
	assert.Nil(t, prog.Description)
	assert.False(t, prog.CreatedAt.IsZero())
	assert.Equal(t, prog.CreatedAt, prog.UpdatedAt)
}

func TestServiceCreate_ValidationReportsAllFields(t *testing.T) {
	service := newService()

	_, err := service.Create(context.Background(), program.CreateRequest{
		Title:      str(""),
		Visibility: str("secret"),
	})

	var verr *validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "code")
	assert.Contains(t, verr.Fields, "visibility")
}

func TestServiceCreate_TrimsTitleAndDescription(t *testing.T) {
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title:       str("  spiral  "),
		Code:        str("repeat 36 [fd 5 rt 100]"),
		Description: str("  draws a spiral  "),
	})

	assert.Equal(t, "spiral", prog.Title)
	require.NotNil(t, prog.Description)
	assert.Equal(t, "draws a spiral", *prog.Description)
}

func TestServiceUpdate_PartialPatch(t *testing.T) {
	ctx := context.Background()
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title:       str("square"),
		Code:        str("repeat 4 [fd 10 rt 90]"),
		Description: str("draws a square"),
	})

	patch := program.Patch{
		Visibility: program.Field[program.Visibility]{Set: true, Value: program.VisibilityPublic},
	}
	updated, err := service.Update(ctx, prog.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, program.VisibilityPublic, updated.Visibility)
	assert.Equal(t, "square", updated.Title)
	assert.Equal(t, "repeat 4 [fd 10 rt 90]", updated.Code)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "draws a square", *updated.Description)
}

func TestServiceUpdate_NullClearsDescription(t *testing.T) {
	ctx := context.Background()
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title:       str("square"),
		Code:        str("repeat 4 [fd 10 rt 90]"),
		Description: str("draws a square"),
	})

	patch := program.Patch{
		Description: program.Field[*string]{Set: true, Value: nil},
	}
	updated, err := service.Update(ctx, prog.ID, patch)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	// An absent description on a later patch keeps it cleared.
	updated, err = service.Update(ctx, prog.ID, program.Patch{
		Title: program.Field[*string]{Set: true, Value: str("renamed")},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "renamed", updated.Title)
}

func TestServiceUpdate_EmptyPatchRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title: str("square"),
		Code:  str("repeat 4 [fd 10 rt 90]"),
	})

	time.Sleep(5 * time.Millisecond)
	updated, err := service.Update(ctx, prog.ID, program.Patch{})
	require.NoError(t, err)

	assert.Equal(t, prog.Title, updated.Title)
	assert.True(t, updated.UpdatedAt.After(prog.UpdatedAt))
}

func TestServiceUpdate_NotFound(t *testing.T) {
	service := newService()

	_, err := service.Update(context.Background(), 404, program.Patch{
		Title: program.Field[*string]{Set: true, Value: str("ghost")},
	})
	assert.ErrorIs(t, err, program.ErrNotFound)
}

func TestServiceUpdate_InvalidPatchLeavesProgramUntouched(t *testing.T) {
	ctx := context.Background()
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title: str("square"),
		Code:  str("repeat 4 [fd 10 rt 90]"),
	})

	_, err := service.Update(ctx, prog.ID, program.Patch{
		Title: program.Field[*string]{Set: true, Value: nil},
	})
	var verr *validation.Errors
	require.ErrorAs(t, err, &verr)

	stored, err := service.Get(ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, "square", stored.Title)
	assert.Equal(t, prog.UpdatedAt, stored.UpdatedAt)
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	service := newService()

	prog := mustCreate(t, service, program.CreateRequest{
		Title: str("square"),
		Code:  str("repeat 4 [fd 10 rt 90]"),
	})

	require.NoError(t, service.Delete(ctx, prog.ID))
	assert.ErrorIs(t, service.Delete(ctx, prog.ID), program.ErrNotFound)

	_, err := service.Get(ctx, prog.ID)
	assert.ErrorIs(t, err, program.ErrNotFound)
}

func TestServiceList_OrderingNewestFirst(t *testing.T) {
	ctx := context.Background()
	service := newService()

	for _, title := range []string{"first", "second", "third"} {
		mustCreate(t, service, program.CreateRequest{
			Title: str(title),
			Code:  str("fd 10"),
		})
		time.Sleep(2 * time.Millisecond)
	}

	page, err := service.List(ctx, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, "third", page.Items[0].Title)
	assert.Equal(t, "second", page.Items[1].Title)
	assert.Equal(t, "first", page.Items[2].Title)
}

func TestServiceList_PaginationPartition(t *testing.T) {
	ctx := context.Background()
	service := newService()

	for i := 0; i < 5; i++ {
		mustCreate(t, service, program.CreateRequest{
			Title: str("program"),
			Code:  str("fd 10"),
		})
	}

	seen := make(map[int64]bool)
	sizes := []int{2, 2, 1}
	for pageNum := 1; pageNum <= 3; pageNum++ {
		page, err := service.List(ctx, pageNum, 2, "")
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		assert.Equal(t, 3, page.LastPage())
		require.Len(t, page.Items, sizes[pageNum-1])

		for _, item := range page.Items {
			assert.False(t, seen[item.ID], "program %d appeared on more than one page", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestServiceList_PageBeyondEnd(t *testing.T) {
	ctx := context.Background()
	service := newService()

	mustCreate(t, service, program.CreateRequest{
		Title: str("only"),
		Code:  str("fd 10"),
	})

	page, err := service.List(ctx, 99, 20, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 99, page.Page)
}

func TestServiceList_HugePageNumber(t *testing.T) {
	ctx := context.Background()
	service := newService()

	mustCreate(t, service, program.CreateRequest{
		Title: str("only"),
		Code:  str("fd 10"),
	})

	// A page number near the int limit must not wrap the offset arithmetic.
	page, err := service.List(ctx, 1<<62, 4, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
}

func TestServiceList_PublicFilter(t *testing.T) {
	ctx := context.Background()
	service := newService()

	mustCreate(t, service, program.CreateRequest{
		Title: str("hidden"), Code: str("fd 10"),
	})
	mustCreate(t, service, program.CreateRequest{
		Title: str("shared"), Code: str("fd 10"), Visibility: str("unlisted"),
	})
	visible := mustCreate(t, service, program.CreateRequest{
		Title: str("published"), Code: str("fd 10"), Visibility: str("public"),
	})

	page, err := service.List(ctx, 1, 20, "public")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, visible.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Total)

	// Any value other than "public" does not narrow the listing.
	page, err = service.List(ctx, 1, 20, "private")
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}
