// Package seed replaces the thought collection with a known dataset and
// exports snapshots of it.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

//go:embed thoughts.json
var bundled []byte

const (
	contentTypeJSON = "application/json"
	exportPageSize  = 100
)

// Entry is one thought in a seed file. Absent fields take their defaults
// when parsed.
type Entry struct {
	Message   string     `json:"message"`
	Hearts    *int       `json:"hearts,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UserID    string     `json:"userId,omitempty"`
}

// Parse decodes a seed file. Order is preserved. Missing hearts become 0,
// missing timestamps become now and missing authors become
// store.PlaceholderUserID.
func Parse(data []byte, now time.Time) ([]types.Thought, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	thoughts := make([]types.Thought, 0, len(entries))
	for i, e := range entries {
		message := strings.TrimSpace(e.Message)
		if n := utf8.RuneCountInString(message); n < types.MinMessageLength || n > types.MaxMessageLength {
			return nil, fmt.Errorf("seed entry %d: message must be %d-%d characters", i, types.MinMessageLength, types.MaxMessageLength)
		}

		t := types.Thought{
			Message:   message,
			CreatedAt: now,
			UserID:    store.PlaceholderUserID,
		}
		if e.Hearts != nil {
			if *e.Hearts < 0 {
				return nil, fmt.Errorf("seed entry %d: hearts must not be negative", i)
			}
			t.Hearts = *e.Hearts
		}
		if e.CreatedAt != nil {
			t.CreatedAt = e.CreatedAt.UTC()
		}
		if e.UserID != "" {
			t.UserID = e.UserID
		}
		thoughts = append(thoughts, t)
	}
	return thoughts, nil
}

// Bundled returns the dataset compiled into the binary.
func Bundled() []byte {
	return bundled
}

// Repository is the slice of the thought store the seeder needs.
type Repository interface {
	List(ctx context.Context, q types.ThoughtQuery) ([]types.Thought, int, error)
	Reset(ctx context.Context, seed []types.Thought) (int, error)
}

// ObjectStore reads and writes whole objects by key.
type ObjectStore interface {
	ReadAll(ctx context.Context, key string) ([]byte, error)
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
}

var errNoObjectStore = errors.New("object storage is not configured")

type Seeder struct {
	repo    Repository
	objects ObjectStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewSeeder builds a Seeder. objects may be nil when only the bundled
// dataset is used.
func NewSeeder(repo Repository, objects ObjectStore, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		repo:    repo,
		objects: objects,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Reset deletes every thought and inserts the dataset stored under key, or
// the bundled dataset when key is empty.
func (s *Seeder) Reset(ctx context.Context, key string) (int, error) {
	data := bundled
	source := "bundled"
	if key != "" {
		if s.objects == nil {
			return 0, errNoObjectStore
		}
		var err error
		data, err = s.objects.ReadAll(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("fetch seed %s: %w", key, err)
		}
		source = key
	}

	thoughts, err := Parse(data, s.now())
	if err != nil {
		return 0, err
	}

	n, err := s.repo.Reset(ctx, thoughts)
	if err != nil {
		return 0, fmt.Errorf("reset thoughts: %w", err)
	}
	s.logger.InfoContext(ctx, "thoughts reseeded", "source", source, "count", n)
	return n, nil
}

// Export writes every thought, oldest first, to key in seed format.
func (s *Seeder) Export(ctx context.Context, key string) (int, error) {
	if s.objects == nil {
		return 0, errNoObjectStore
	}

	var entries []Entry
	for page := 1; ; page++ {
		thoughts, total, err := s.repo.List(ctx, types.ThoughtQuery{
			Sort:  types.SortCreatedAtAsc,
			Page:  page,
			Limit: exportPageSize,
		})
		if err != nil {
			return 0, fmt.Errorf("list thoughts: %w", err)
		}
		for _, t := range thoughts {
			hearts := t.Hearts
			createdAt := t.CreatedAt
			entries = append(entries, Entry{
				Message:   t.Message,
				Hearts:    &hearts,
				CreatedAt: &createdAt,
				UserID:    t.UserID,
			})
		}
		if len(thoughts) == 0 || len(entries) >= total {
			break
		}
	}
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := s.objects.PutBytes(ctx, key, data, contentTypeJSON); err != nil {
		return 0, fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	s.logger.InfoContext(ctx, "thoughts exported", "key", key, "count", len(entries))
	return len(entries), nil
}
