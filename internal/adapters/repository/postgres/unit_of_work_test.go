package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ome/openmicroscopy-sub033/internal/adapters/repository/postgres"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

func TestSQLUnitOfWork_Execute(t *testing.T) {

	// Arrange
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	uow := postgres.NewUnitOfWork(dbConnection)
	records := postgres.NewSQLRecordRepository(dbConnection)
	repoID := uuid.New()

	t.Run("Should commit when no error", func(t *testing.T) {
		defer truncate()

		// Act
		err := uow.Execute(ctx, func(u port.UnitOfWork) error {
			_, err := u.Records().Register(ctx, newRecord(repoID, "", "committed.txt", "text/plain"))
			return err
		})

		// Assert
		require.NoError(t, err)
		rec, err := records.FindRecord(ctx, repoID, "", "committed.txt")
		require.NoError(t, err)
		require.Equal(t, "committed.txt", rec.Name)
	})

	t.Run("Should rollback when error occurs", func(t *testing.T) {
		defer truncate()

		// Act
		err := uow.Execute(ctx, func(u port.UnitOfWork) error {
			_, _ = u.Records().Register(ctx, newRecord(repoID, "", "doomed.txt", "text/plain"))
			return assert.AnError
		})

		// Assert
		require.ErrorIs(t, err, assert.AnError)
		_, err = records.FindRecord(ctx, repoID, "", "doomed.txt")
		require.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Should rollback the whole batch on a late failure", func(t *testing.T) {
		defer truncate()

		// the second insert violates the path constraint; the first one must
		// not survive on its own
		err := uow.Execute(ctx, func(u port.UnitOfWork) error {
			if _, err := u.Records().Register(ctx, newRecord(repoID, "batch", "a.txt", "text/plain")); err != nil {
				return err
			}
			if _, err := u.Records().Register(ctx, newRecord(repoID, "batch", "a.txt", "text/plain")); err != nil {
				return err
			}
			return nil
		})

		require.ErrorIs(t, err, domain.ErrRecordExists)
		ok, err := records.Exists(ctx, repoID, "batch", "a.txt")
		require.NoError(t, err)
		require.False(t, ok)
	})
}
