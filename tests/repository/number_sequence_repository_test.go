package repository_test

import (
	"context"
	"testing"

	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceRepository_NextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	// First use creates the sequence row.
	first, err := repo.NextNumber(ctx, "material_request", 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.NextNumber(ctx, "material_request", 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestNumberSequenceRepository_ScopesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	_, err := repo.NextNumber(ctx, "material_request", 2026)
	require.NoError(t, err)
	_, err = repo.NextNumber(ctx, "material_request", 2026)
	require.NoError(t, err)

	// A different year starts its own counter.
	next, err := repo.NextNumber(ctx, "material_request", 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	// So does a different scope within the same year.
	next, err = repo.NextNumber(ctx, "grn", 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestNumberSequenceRepository_CurrentSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	current, err := repo.CurrentSequence(ctx, "material_request", 2026)
	require.NoError(t, err)
	assert.Zero(t, current)

	_, err = repo.NextNumber(ctx, "material_request", 2026)
	require.NoError(t, err)

	current, err = repo.CurrentSequence(ctx, "material_request", 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}
