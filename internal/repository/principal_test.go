package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"memberbase/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPrincipalRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)
	ctx := context.Background()

	t.Run("Success lowercases the address", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "email", "role", "status"}).
			AddRow(1, "member@example.com", "member", "active")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "principals" WHERE email = $1 AND "principals"."deleted_at" IS NULL ORDER BY "principals"."id" LIMIT $2`)).
			WithArgs("member@example.com", 1).
			WillReturnRows(rows)

		p, err := repo.GetByEmail(ctx, "Member@Example.COM")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, models.RoleMember, p.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown address is not an error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "principals" WHERE email = $1`)).
			WithArgs("ghost@example.com", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		p, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "principals" WHERE email = $1`)).
			WithArgs("member@example.com", 1).
			WillReturnError(errors.New("connection timeout"))

		p, err := repo.GetByEmail(ctx, "member@example.com")
		assert.Error(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPrincipalRepository_UpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "principals" SET "status"=$1,"updated_at"=$2 WHERE id = $3 AND "principals"."deleted_at" IS NULL`)).
			WithArgs("approved", sqlmock.AnyArg(), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateStatus(ctx, 5, models.StatusApproved)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No matching row is not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "principals" SET "status"=$1,"updated_at"=$2 WHERE id = $3`)).
			WithArgs("approved", sqlmock.AnyArg(), 99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateStatus(ctx, 99, models.StatusApproved)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPrincipalRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "principals"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "principals_email_key" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.Principal{
		FullName: "Member One",
		Email:    "member@example.com",
		Password: "hashed",
		Role:     models.RoleMember,
		Status:   models.StatusPending,
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
