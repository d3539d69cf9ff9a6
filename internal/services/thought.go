package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Idahel/js-project-api/internal/events"
	"github.com/Idahel/js-project-api/types"
)

// ThoughtRepository defines persistence operations for thoughts.
type ThoughtRepository interface {
	List(ctx context.Context, q types.ThoughtQuery) ([]types.Thought, int, error)
	Get(ctx context.Context, id string) (types.Thought, error)
	Create(ctx context.Context, thought types.Thought) (types.Thought, error)
	Like(ctx context.Context, id string) (types.Thought, error)
	Update(ctx context.Context, id string, update types.ThoughtUpdate) (types.Thought, error)
	Delete(ctx context.Context, id string) (types.Thought, error)
	Reset(ctx context.Context, seed []types.Thought) (int, error)
}

// EventPublisher receives thought lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.ThoughtEvent) error
}

// ThoughtService encapsulates thought use-cases and ownership rules.
type ThoughtService struct {
	repo   ThoughtRepository
	events EventPublisher
	logger *slog.Logger
}

func NewThoughtService(repo ThoughtRepository, publisher EventPublisher, logger *slog.Logger) *ThoughtService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ThoughtService{repo: repo, events: publisher, logger: logger}
}

type messageInput struct {
	Message string `json:"message" validate:"min=5,max=140"`
}

func (s *ThoughtService) List(ctx context.Context, q types.ThoughtQuery) (types.ThoughtPage, error) {
	thoughts, total, err := s.repo.List(ctx, q)
	if err != nil {
		return types.ThoughtPage{}, fmt.Errorf("list thoughts: %w", err)
	}
	if thoughts == nil {
		thoughts = []types.Thought{}
	}
	return types.ThoughtPage{
		Thoughts: thoughts,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
		PageSize: len(thoughts),
	}, nil
}

func (s *ThoughtService) Get(ctx context.Context, id string) (types.Thought, error) {
	return s.repo.Get(ctx, id)
}

// Create posts message on behalf of author.
func (s *ThoughtService) Create(ctx context.Context, author types.User, message string) (types.Thought, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return types.Thought{}, err
	}

	created, err := s.repo.Create(ctx, types.Thought{
		Message:   message,
		Hearts:    0,
		CreatedAt: time.Now().UTC(),
		UserID:    author.ID,
	})
	if err != nil {
		return types.Thought{}, fmt.Errorf("create thought: %w", err)
	}
	s.publish(ctx, events.ThoughtCreated, created, author.ID)
	return created, nil
}

// Like adds one heart. Anyone may like a thought.
func (s *ThoughtService) Like(ctx context.Context, id string) (types.Thought, error) {
	liked, err := s.repo.Like(ctx, id)
	if err != nil {
		return types.Thought{}, err
	}
	s.publish(ctx, events.ThoughtLiked, liked, "")
	return liked, nil
}

// Update applies the message edit and the unlike independently. Editing the
// message requires ownership; unliking does not. Every check runs before the
// write, so a rejected request changes nothing.
func (s *ThoughtService) Update(ctx context.Context, caller types.User, id string, update types.ThoughtUpdate) (types.Thought, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Thought{}, err
	}
	if update.Empty() {
		return current, nil
	}

	if update.Message != nil {
		if current.UserID != caller.ID {
			return types.Thought{}, ErrForbidden
		}
		message, err := cleanMessage(*update.Message)
		if err != nil {
			return types.Thought{}, err
		}
		update.Message = &message
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return types.Thought{}, err
	}
	s.publish(ctx, events.ThoughtUpdated, updated, caller.ID)
	return updated, nil
}

// Delete removes a thought owned by caller and returns it.
func (s *ThoughtService) Delete(ctx context.Context, caller types.User, id string) (types.Thought, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Thought{}, err
	}
	if current.UserID != caller.ID {
		return types.Thought{}, ErrForbidden
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return types.Thought{}, err
	}
	s.publish(ctx, events.ThoughtDeleted, deleted, caller.ID)
	return deleted, nil
}

// publish is best-effort: the write already happened.
func (s *ThoughtService) publish(ctx context.Context, kind events.Kind, thought types.Thought, actorID string) {
	err := s.events.Publish(ctx, events.ThoughtEvent{
		Type:       kind,
		Thought:    thought,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish thought event", "type", kind, "thought_id", thought.ID, "error", err)
	}
}

func cleanMessage(raw string) (string, error) {
	in := messageInput{Message: strings.TrimSpace(raw)}
	if err := validateStruct(in); err != nil {
		return "", err
	}
	return in.Message, nil
}
