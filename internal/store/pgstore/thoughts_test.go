package pgstore

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

const thoughtID = "0b8e7f36-5a7c-4c55-8f0b-2d1c9c8d7e6f"

var thoughtRowColumns = []string{"id", "message", "hearts", "created_at", "user_id"}

func thoughtRow(id, message string, hearts int) []driver.Value {
	return []driver.Value{id, message, hearts, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "author"}
}

func TestWhereClause(t *testing.T) {
	two := 2

	clause, args, ok := whereClause(types.ThoughtQuery{MinHearts: &two, Message: "50%_off"})
	require.True(t, ok)
	assert.Equal(t, " WHERE hearts >= $1 AND message ILIKE $2", clause)
	assert.Equal(t, []any{2, `%50\%\_off%`}, args)

	clause, args, ok = whereClause(types.ThoughtQuery{})
	require.True(t, ok)
	assert.Empty(t, clause)
	assert.Empty(t, args)

	_, _, ok = whereClause(types.ThoughtQuery{ID: "not-a-uuid"})
	assert.False(t, ok)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, " ORDER BY seq", orderClause(types.SortNone))
	assert.Equal(t, " ORDER BY created_at DESC, seq", orderClause(types.SortCreatedAt))
	assert.Equal(t, " ORDER BY created_at DESC, seq", orderClause(types.SortCreatedAtDesc))
	assert.Equal(t, " ORDER BY created_at ASC, seq", orderClause(types.SortCreatedAtAsc))
	assert.Equal(t, " ORDER BY hearts DESC, seq", orderClause(types.SortHearts))
}

func TestThoughtRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	three := 3
	q := types.ThoughtQuery{MinHearts: &three, Sort: types.SortHearts, Page: 2, Limit: 2}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM thoughts WHERE hearts >= $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("FROM thoughts WHERE hearts >= $1 ORDER BY hearts DESC, seq OFFSET $2 LIMIT $3")).
		WithArgs(3, 2, 2).
		WillReturnRows(sqlmock.NewRows(thoughtRowColumns).
			AddRow(thoughtRow(thoughtID, "third thought", 7)...).
			AddRow(thoughtRow("1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f", "fourth thought", 4)...))

	thoughts, total, err := NewThoughtRepository(db).List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, thoughts, 2)
	assert.Equal(t, 7, thoughts[0].Hearts)
	assert.Equal(t, "fourth thought", thoughts[1].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepository_ListMalformedIDIsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	thoughts, total, err := NewThoughtRepository(db).List(context.Background(), types.ThoughtQuery{ID: "xyz", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, thoughts)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepository_GetInvalidID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewThoughtRepository(db).Get(context.Background(), "123")
	assert.ErrorIs(t, err, store.ErrInvalidID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepository_LikeMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SET hearts = hearts + 1 WHERE id = $1")).
		WithArgs(thoughtID).
		WillReturnRows(sqlmock.NewRows(thoughtRowColumns))

	_, err = NewThoughtRepository(db).Like(context.Background(), thoughtID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepository_Update(t *testing.T) {
	msg := "edited message"

	tests := []struct {
		name   string
		update types.ThoughtUpdate
		args   []driver.Value
	}{
		{
			name:   "message only",
			update: types.ThoughtUpdate{Message: &msg},
			args:   []driver.Value{thoughtID, msg, false},
		},
		{
			name:   "unlike only",
			update: types.ThoughtUpdate{Unlike: true},
			args:   []driver.Value{thoughtID, nil, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta("SET message = COALESCE($2, message)")).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows(thoughtRowColumns).AddRow(thoughtRow(thoughtID, msg, 0)...))

			got, err := NewThoughtRepository(db).Update(context.Background(), thoughtID, tt.update)
			require.NoError(t, err)
			assert.Equal(t, thoughtID, got.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestThoughtRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM thoughts WHERE id = $1 RETURNING")).
		WithArgs(thoughtID).
		WillReturnRows(sqlmock.NewRows(thoughtRowColumns).AddRow(thoughtRow(thoughtID, "gone soon", 1)...))

	deleted, err := NewThoughtRepository(db).Delete(context.Background(), thoughtID)
	require.NoError(t, err)
	assert.Equal(t, "gone soon", deleted.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepository_Reset(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	seed := []types.Thought{
		{Message: "first seed", Hearts: 2},
		{Message: "second seed"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM thoughts")).WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO thoughts")).
		WithArgs(sqlmock.AnyArg(), "first seed", 2, sqlmock.AnyArg(), store.PlaceholderUserID).
		WillReturnRows(sqlmock.NewRows(thoughtRowColumns).AddRow(thoughtRow(thoughtID, "first seed", 2)...))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO thoughts")).
		WithArgs(sqlmock.AnyArg(), "second seed", 0, sqlmock.AnyArg(), store.PlaceholderUserID).
		WillReturnRows(sqlmock.NewRows(thoughtRowColumns).AddRow(thoughtRow(thoughtID, "second seed", 0)...))
	mock.ExpectCommit()

	n, err := NewThoughtRepository(db).Reset(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepository_ResetRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM thoughts")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = NewThoughtRepository(db).Reset(context.Background(), []types.Thought{{Message: "never"}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
