package pgstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

var userColumns = []string{"id", "name", "email", "password_hash", "access_token", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, name, email, password_hash, access_token, created_at)")).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "hash", "token", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.Create(context.Background(), types.User{
		Name:         "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		AccessToken:  "token",
	})
	require.NoError(t, err)
	assert.Len(t, user.ID, 36)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err = repo.Create(context.Background(), types.User{Name: "alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		want    types.User
		wantErr error
	}{
		{
			name: "found",
			rows: sqlmock.NewRows(userColumns).
				AddRow("6f1c2f5e-8a51-4a47-9f43-0e7d2f1b2c3d", "alice", "alice@example.com", "hash", "token", created),
			want: types.User{
				ID:           "6f1c2f5e-8a51-4a47-9f43-0e7d2f1b2c3d",
				Name:         "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
				AccessToken:  "token",
				CreatedAt:    created,
			},
		},
		{
			name:    "missing",
			rows:    sqlmock.NewRows(userColumns),
			wantErr: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
				WithArgs("alice@example.com").
				WillReturnRows(tt.rows)

			got, err := NewUserRepository(db).GetByEmail(context.Background(), "alice@example.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByAccessToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE access_token = $1")).
		WithArgs("token").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("6f1c2f5e-8a51-4a47-9f43-0e7d2f1b2c3d", "alice", "alice@example.com", "hash", "token", time.Now()))

	user, err := NewUserRepository(db).GetByAccessToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
