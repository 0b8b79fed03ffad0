package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
	"github.com/unclebandit/coldmail-tracker/internal/model"
	"github.com/unclebandit/coldmail-tracker/internal/repository"
)

func TestMemoryRepositoryLifecycle(t *testing.T) {
	repo := repository.NewMemoryEmailRepository()
	ctx := context.Background()

	first := &model.Email{Status: model.StatusSent}
	second := &model.Email{Status: model.StatusOpened, Opened: true}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotEmpty(t, first.ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	opened, err := repo.ListByStatus(ctx, "opened")
	require.NoError(t, err)
	require.Len(t, opened, 1)
	assert.Equal(t, second.ID, opened[0].ID)

	notes := "met at conf"
	first.Notes = &notes
	updated, err := repo.Update(ctx, first.ID, model.EmailUpdate{
		Notes:   model.Some(notes),
		Replied: model.Some(true),
		Status:  model.Some(model.StatusReplied),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReplied, updated.Status)
	assert.Equal(t, "met at conf", *updated.Notes)

	cleared, err := repo.Update(ctx, first.ID, model.EmailUpdate{Notes: model.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Notes)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.NoError(t, repo.Delete(ctx, first.ID))

	_, err = repo.GetByID(ctx, first.ID)
	assert.True(t, appErrors.IsNotFound(err))

	_, err = repo.Update(ctx, first.ID, model.EmailUpdate{})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestMemoryRepositoryInjectedError(t *testing.T) {
	repo := repository.NewMemoryEmailRepository()
	repo.Err = errors.New("boom")

	_, err := repo.ListAll(context.Background())
	assert.EqualError(t, err, "boom")
	assert.EqualError(t, repo.Create(context.Background(), &model.Email{}), "boom")
}
