package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

type thoughtRecord struct {
	seq     int64
	thought types.Thought
}

// ThoughtRepository is the in-memory thought collection. Unsorted listings
// come back in insertion order.
type ThoughtRepository struct {
	s *Store
}

func (r *ThoughtRepository) List(ctx context.Context, q types.ThoughtQuery) ([]types.Thought, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	matched := make([]thoughtRecord, 0, len(r.s.thoughts))
	needle := strings.ToLower(q.Message)
	for _, rec := range r.s.thoughts {
		t := rec.thought
		if q.ID != "" && t.ID != q.ID {
			continue
		}
		if q.MinHearts != nil && t.Hearts < *q.MinHearts {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Message), needle) {
			continue
		}
		matched = append(matched, rec)
	}
	r.s.mu.RUnlock()

	sortRecords(matched, q.Sort)

	total := len(matched)
	start := min(q.Offset(), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}

	thoughts := make([]types.Thought, 0, end-start)
	for _, rec := range matched[start:end] {
		thoughts = append(thoughts, rec.thought)
	}
	return thoughts, total, nil
}

func sortRecords(records []thoughtRecord, order types.ThoughtSort) {
	var less func(a, b thoughtRecord) bool
	switch {
	case order.Newest():
		less = func(a, b thoughtRecord) bool {
			if !a.thought.CreatedAt.Equal(b.thought.CreatedAt) {
				return a.thought.CreatedAt.After(b.thought.CreatedAt)
			}
			return a.seq < b.seq
		}
	case order == types.SortCreatedAtAsc:
		less = func(a, b thoughtRecord) bool {
			if !a.thought.CreatedAt.Equal(b.thought.CreatedAt) {
				return a.thought.CreatedAt.Before(b.thought.CreatedAt)
			}
			return a.seq < b.seq
		}
	case order == types.SortHearts:
		less = func(a, b thoughtRecord) bool {
			if a.thought.Hearts != b.thought.Hearts {
				return a.thought.Hearts > b.thought.Hearts
			}
			return a.seq < b.seq
		}
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

func (r *ThoughtRepository) Get(ctx context.Context, id string) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Thought{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := r.index(id); i >= 0 {
		return r.s.thoughts[i].thought, nil
	}
	return types.Thought{}, store.ErrNotFound
}

func (r *ThoughtRepository) Create(ctx context.Context, thought types.Thought) (types.Thought, error) {
	if err := ctx.Err(); err != nil {
		return types.Thought{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(thought), nil
}

// insert must be called with the write lock held.
func (r *ThoughtRepository) insert(thought types.Thought) types.Thought {
	thought.ID = newID()
	if thought.CreatedAt.IsZero() {
		thought.CreatedAt = time.Now().UTC()
	}
	r.s.seq++
	r.s.thoughts = append(r.s.thoughts, thoughtRecord{seq: r.s.seq, thought: thought})
	return thought
}

func (r *ThoughtRepository) Like(ctx context.Context, id string) (types.Thought, error) {
	return r.mutate(ctx, id, func(t *types.Thought) {
		t.Hearts++
	})
}

func (r *ThoughtRepository) Update(ctx context.Context, id string, update types.ThoughtUpdate) (types.Thought, error) {
	return r.mutate(ctx, id, func(t *types.Thought) {
		if update.Message != nil {
			t.Message = *update.Message
		}
		if update.Unlike && t.Hearts > 0 {
			t.Hearts--
		}
	})
}

func (r *ThoughtRepository) mutate(ctx context.Context, id string, apply func(*types.Thought)) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Thought{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return types.Thought{}, store.ErrNotFound
	}
	apply(&r.s.thoughts[i].thought)
	return r.s.thoughts[i].thought, nil
}

func (r *ThoughtRepository) Delete(ctx context.Context, id string) (types.Thought, error) {
	if err := checkID(id); err != nil {
		return types.Thought{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Thought{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return types.Thought{}, store.ErrNotFound
	}
	deleted := r.s.thoughts[i].thought
	r.s.thoughts = append(r.s.thoughts[:i], r.s.thoughts[i+1:]...)
	return deleted, nil
}

// Reset drops every thought and inserts seed in order.
func (r *ThoughtRepository) Reset(ctx context.Context, seed []types.Thought) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.thoughts = nil
	for _, t := range seed {
		r.insert(t)
	}
	return len(seed), nil
}

// index must be called with the lock held.
func (r *ThoughtRepository) index(id string) int {
	for i, rec := range r.s.thoughts {
		if rec.thought.ID == id {
			return i
		}
	}
	return -1
}
