package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

const thoughtColumns = `id, message, hearts, created_at, user_id`

// ThoughtRepository handles persistence for thoughts. Unsorted listings
// follow the seq column, which records insertion order.
type ThoughtRepository struct {
	db *sql.DB
}

func NewThoughtRepository(db *sql.DB) *ThoughtRepository {
	return &ThoughtRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThought(row rowScanner) (types.Thought, error) {
	var t types.Thought
	if err := row.Scan(&t.ID, &t.Message, &t.Hearts, &t.CreatedAt, &t.UserID); err != nil {
		return types.Thought{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// whereClause renders q's filters with positional arguments. ok is false
// when the id filter can never match.
func whereClause(q types.ThoughtQuery) (clause string, args []any, ok bool) {
	var conds []string
	if q.ID != "" {
		if checkID(q.ID) != nil {
			return "", nil, false
		}
		args = append(args, q.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if q.MinHearts != nil {
		args = append(args, *q.MinHearts)
		conds = append(conds, fmt.Sprintf("hearts >= $%d", len(args)))
	}
	if q.Message != "" {
		args = append(args, "%"+escapeLike(q.Message)+"%")
		conds = append(conds, fmt.Sprintf("message ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func orderClause(order types.ThoughtSort) string {
	switch {
	case order.Newest():
		return " ORDER BY created_at DESC, seq"
	case order == types.SortCreatedAtAsc:
		return " ORDER BY created_at ASC, seq"
	case order == types.SortHearts:
		return " ORDER BY hearts DESC, seq"
	default:
		return " ORDER BY seq"
	}
}

func (r *ThoughtRepository) List(ctx context.Context, q types.ThoughtQuery) ([]types.Thought, int, error) {
	where, args, ok := whereClause(q)
	if !ok {
		return []types.Thought{}, 0, nil
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM thoughts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + thoughtColumns + ` FROM thoughts` + where + orderClause(q.Sort)
	listArgs := append(args, q.Offset())
	listQuery += fmt.Sprintf(" OFFSET $%d", len(listArgs))
	if q.Limit > 0 {
		listArgs = append(listArgs, q.Limit)
		listQuery += fmt.Sprintf(" LIMIT $%d", len(listArgs))
	}

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	thoughts := make([]types.Thought, 0, q.Limit)
	for rows.Next() {
		t, err := scanThought(rows)
		if err != nil {
			return nil, 0, err
		}
		thoughts = append(thoughts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return thoughts, total, nil
}

func (r *ThoughtRepository) Get(ctx context.Context, id string) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	const query = `SELECT ` + thoughtColumns + ` FROM thoughts WHERE id = $1`
	return r.one(r.db.QueryRowContext(ctx, query, id))
}

func (r *ThoughtRepository) Create(ctx context.Context, thought types.Thought) (types.Thought, error) {
	return insertThought(ctx, r.db, thought)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertThought(ctx context.Context, db rowQuerier, thought types.Thought) (types.Thought, error) {
	thought.ID = uuid.NewString()
	if thought.CreatedAt.IsZero() {
		thought.CreatedAt = time.Now().UTC()
	}
	if thought.UserID == "" {
		thought.UserID = store.PlaceholderUserID
	}

	const query = `
		INSERT INTO thoughts (id, message, hearts, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + thoughtColumns
	t, err := scanThought(db.QueryRowContext(
		ctx,
		query,
		thought.ID,
		thought.Message,
		thought.Hearts,
		thought.CreatedAt,
		thought.UserID,
	))
	if err != nil {
		return types.Thought{}, translate(err)
	}
	return t, nil
}

func (r *ThoughtRepository) Like(ctx context.Context, id string) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	const query = `
		UPDATE thoughts
		SET hearts = hearts + 1
		WHERE id = $1
		RETURNING ` + thoughtColumns
	return r.one(r.db.QueryRowContext(ctx, query, id))
}

// Update applies the message edit and the floored unlike in one statement.
func (r *ThoughtRepository) Update(ctx context.Context, id string, update types.ThoughtUpdate) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	var message sql.NullString
	if update.Message != nil {
		message = sql.NullString{String: *update.Message, Valid: true}
	}

	const query = `
		UPDATE thoughts
		SET message = COALESCE($2, message),
			hearts = CASE WHEN $3 THEN GREATEST(hearts - 1, 0) ELSE hearts END
		WHERE id = $1
		RETURNING ` + thoughtColumns
	return r.one(r.db.QueryRowContext(ctx, query, id, message, update.Unlike))
}

func (r *ThoughtRepository) Delete(ctx context.Context, id string) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	const query = `DELETE FROM thoughts WHERE id = $1 RETURNING ` + thoughtColumns
	return r.one(r.db.QueryRowContext(ctx, query, id))
}

// Reset replaces every thought with seed inside one transaction.
func (r *ThoughtRepository) Reset(ctx context.Context, seed []types.Thought) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM thoughts`); err != nil {
		return 0, fmt.Errorf("clear thoughts: %w", err)
	}
	for i, t := range seed {
		if _, err := insertThought(ctx, tx, t); err != nil {
			return 0, fmt.Errorf("insert seed thought %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(seed), nil
}

func (r *ThoughtRepository) one(row *sql.Row) (types.Thought, error) {
	t, err := scanThought(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Thought{}, store.ErrNotFound
		}
		return types.Thought{}, err
	}
	return t, nil
}
