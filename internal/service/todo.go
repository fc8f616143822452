package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sunho-bae/todo-api/internal/model"
	"github.com/sunho-bae/todo-api/internal/query"
	"github.com/sunho-bae/todo-api/internal/repository"
	"github.com/sunho-bae/todo-api/internal/validate"
)

type CreateTodoInput struct {
	Title       string  `validate:"required,max=100"`
	Description string  `validate:"max=500"`
	Completed   *bool   `validate:"-"`
	DueDate     *string `validate:"-"` // RFC3339, parsed and checked below
	Priority    string  `validate:"omitempty,oneof=low medium high"`
}

type UpdateTodoInput struct {
	Title       *string `validate:"omitempty,max=100"`
	Description *string `validate:"omitempty,max=500"`
	Completed   *bool   `validate:"-"`
	DueDate     *string `validate:"-"`
	Priority    *string `validate:"omitempty,oneof=low medium high"`
}

type TodoService struct {
	repo repository.TodoRepository
}

func NewTodoService(repo repository.TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// parseDueDate parses an RFC3339 string and requires it to be strictly in
// the future. Returns nil for nil input.
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf(`%w: "dueDate" must be in RFC3339 format`, ErrInvalidInput)
	}
	if !t.After(time.Now()) {
		return nil, fmt.Errorf(`%w: "dueDate" must be in the future`, ErrInvalidInput)
	}
	return &t, nil
}

// Create stores a new record owned by userID. Ownership comes exclusively
// from the resolved identity; the input carries no owner field at all.
func (s *TodoService) Create(ctx context.Context, userID string, input CreateTodoInput) (model.Todo, error) {
	if err := validate.Struct(input); err != nil {
		return model.Todo{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return model.Todo{}, err
	}

	todo := model.Todo{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     dueDate,
		Priority:    model.Priority(input.Priority),
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	created, err := s.repo.Create(ctx, todo)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	return created, nil
}

func (s *TodoService) GetByID(ctx context.Context, userID, todoID string) (model.Todo, error) {
	if !validID(todoID) {
		return model.Todo{}, ErrNotFound
	}

	todo, err := s.repo.GetByID(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// Update applies only the fields present in input, after an owner-scoped
// resolve. A record owned by someone else surfaces as ErrNotFound, same as
// a missing one.
func (s *TodoService) Update(ctx context.Context, userID, todoID string, input UpdateTodoInput) (model.Todo, error) {
	if !validID(todoID) {
		return model.Todo{}, ErrNotFound
	}

	if err := validate.Struct(input); err != nil {
		return model.Todo{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetByID(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to get todo for update: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return model.Todo{}, fmt.Errorf(`%w: "title" is not allowed to be empty`, ErrInvalidInput)
		}
		existing.Title = *input.Title
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Completed != nil {
		existing.Completed = *input.Completed
	}
	if input.DueDate != nil {
		dueDate, err := parseDueDate(input.DueDate)
		if err != nil {
			return model.Todo{}, err
		}
		existing.DueDate = dueDate
	}
	if input.Priority != nil {
		existing.Priority = model.Priority(*input.Priority)
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}

	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	if !validID(todoID) {
		return ErrNotFound
	}

	err := s.repo.Delete(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// List executes a query plan and shapes the paging envelope.
func (s *TodoService) List(ctx context.Context, plan query.Plan) (model.TodoPage, error) {
	todos, total, err := s.repo.List(ctx, plan)
	if err != nil {
		return model.TodoPage{}, fmt.Errorf("failed to list todos: %w", err)
	}

	pages := 0
	if total > 0 {
		pages = (total + plan.Limit - 1) / plan.Limit
	}

	return model.TodoPage{
		Data:  todos,
		Page:  plan.Page,
		Limit: plan.Limit,
		Total: total,
		Pages: pages,
	}, nil
}

// validID rejects identifiers that cannot be record keys before any query
// runs. A malformed ID maps to not-found, not to a 400, so it cannot be
// told apart from someone else's record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
