package repository

import (
	"context"

	"github.com/sunho-bae/todo-api/internal/model"
	"github.com/sunho-bae/todo-api/internal/query"
)

// TodoRepository is the only component allowed to translate logical queries
// into storage queries. Every method carries the owning user's ID, either
// as an explicit parameter or inside the plan, so an unscoped read or write
// cannot be expressed.
type TodoRepository interface {
	Create(ctx context.Context, todo model.Todo) (model.Todo, error)
	GetByID(ctx context.Context, userID, todoID string) (model.Todo, error)
	Update(ctx context.Context, todo model.Todo) (model.Todo, error)
	Delete(ctx context.Context, userID, todoID string) error
	List(ctx context.Context, plan query.Plan) ([]model.Todo, int, error)
}
