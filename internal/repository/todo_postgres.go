package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sunho-bae/todo-api/internal/model"
	"github.com/sunho-bae/todo-api/internal/query"
)

const todoColumns = "id, user_id, title, description, completed, due_date, priority, created_at, updated_at"

type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

// Create stores the record with todo.UserID as its owner. Callers set
// UserID from the authenticated identity; candidate input never reaches
// this field.
func (r *PostgresTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	q := `
		INSERT INTO todos (id, user_id, title, description, completed, due_date, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, q,
		uuid.NewString(), todo.UserID, todo.Title, todo.Description,
		todo.Completed, todo.DueDate, nullablePriority(todo.Priority),
	)

	return scanTodo(row)
}

// GetByID looks up by record key AND owner in a single query. A record that
// exists but belongs to someone else is indistinguishable from one that
// does not exist.
func (r *PostgresTodoRepository) GetByID(ctx context.Context, userID, todoID string) (model.Todo, error) {
	q := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	row := r.db.QueryRowContext(ctx, q, todoID, userID)
	return scanTodo(row)
}

func (r *PostgresTodoRepository) Update(ctx context.Context, todo model.Todo) (model.Todo, error) {
	q := `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, due_date = $4, priority = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, q,
		todo.Title, todo.Description, todo.Completed, todo.DueDate,
		nullablePriority(todo.Priority), todo.ID, todo.UserID,
	)

	return scanTodo(row)
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	q := `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, q, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// List executes the plan's filtered, sorted page and counts the total
// matching the same filters.
func (r *PostgresTodoRepository) List(ctx context.Context, plan query.Plan) ([]model.Todo, int, error) {
	where, args := buildWhere(plan)

	countQuery := `SELECT COUNT(*) FROM todos ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	listQuery := fmt.Sprintf("SELECT %s FROM todos %s%s LIMIT $%d OFFSET $%d",
		todoColumns, where, buildOrderBy(plan.Sort), len(args)+1, len(args)+2)
	args = append(args, plan.Limit, plan.Skip)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodoFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, total, nil
}

// buildWhere renders the plan's filters. The owner clause is always first
// and unconditional.
func buildWhere(plan query.Plan) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{plan.UserID}

	if plan.Completed != nil {
		args = append(args, *plan.Completed)
		clauses = append(clauses, fmt.Sprintf("completed = $%d", len(args)))
	}
	if plan.Priority != "" {
		args = append(args, plan.Priority)
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// buildOrderBy renders the plan's sort keys in order. Column names come
// from the query package's allow-list, never from raw client input.
func buildOrderBy(keys []query.SortKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		dir := " ASC"
		if k.Desc {
			dir = " DESC"
		}
		parts = append(parts, k.Column+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func nullablePriority(p model.Priority) sql.NullString {
	if p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(p), Valid: true}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	var dueDate sql.NullTime
	var priority sql.NullString
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&dueDate, &priority, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if priority.Valid {
		t.Priority = model.Priority(priority.String)
	}
	return t, nil
}

func scanTodoFromRows(rows *sql.Rows) (model.Todo, error) {
	var t model.Todo
	var dueDate sql.NullTime
	var priority sql.NullString
	err := rows.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&dueDate, &priority, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to scan todo row: %w", err)
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if priority.Valid {
		t.Priority = model.Priority(priority.String)
	}
	return t, nil
}

// ensure compile-time interface compliance
var _ TodoRepository = (*PostgresTodoRepository)(nil)
