package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sunho-bae/todo-api/internal/http/handler"
	"github.com/sunho-bae/todo-api/internal/middleware"
	"github.com/sunho-bae/todo-api/internal/model"
	"github.com/sunho-bae/todo-api/internal/query"
	"github.com/sunho-bae/todo-api/internal/service"
)

const todoID = "2b1f8d64-0c3a-4c4e-9f6a-1d2e3f4a5b6c"

type mockTodoRepo struct {
	createFn  func(ctx context.Context, todo model.Todo) (model.Todo, error)
	getByIDFn func(ctx context.Context, userID, todoID string) (model.Todo, error)
	updateFn  func(ctx context.Context, todo model.Todo) (model.Todo, error)
	deleteFn  func(ctx context.Context, userID, todoID string) error
	listFn    func(ctx context.Context, plan query.Plan) ([]model.Todo, int, error)
}

func (m *mockTodoRepo) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	return m.createFn(ctx, todo)
}
func (m *mockTodoRepo) GetByID(ctx context.Context, userID, todoID string) (model.Todo, error) {
	return m.getByIDFn(ctx, userID, todoID)
}
func (m *mockTodoRepo) Update(ctx context.Context, todo model.Todo) (model.Todo, error) {
	return m.updateFn(ctx, todo)
}
func (m *mockTodoRepo) Delete(ctx context.Context, userID, todoID string) error {
	return m.deleteFn(ctx, userID, todoID)
}
func (m *mockTodoRepo) List(ctx context.Context, plan query.Plan) ([]model.Todo, int, error) {
	return m.listFn(ctx, plan)
}

// authedRequest builds a request with a resolved identity, the way the auth
// middleware leaves it for handlers.
func authedRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.SetUserID(req.Context(), userID))
}

func TestTodoHandler_Create(t *testing.T) {
	var stored model.Todo
	repo := &mockTodoRepo{
		createFn: func(ctx context.Context, todo model.Todo) (model.Todo, error) {
			todo.ID = todoID
			todo.CreatedAt = time.Now()
			todo.UpdatedAt = todo.CreatedAt
			stored = todo
			return todo, nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	req := authedRequest(http.MethodPost, "/api/todos", `{"title":"Test Todo","description":"Test Description"}`, "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if stored.UserID != "user-1" {
		t.Errorf("expected stored owner=user-1, got %q", stored.UserID)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["title"] != "Test Todo" {
		t.Errorf("expected title echoed, got %v", body["title"])
	}
	for _, key := range []string{"user", "userId", "owner"} {
		if _, ok := body[key]; ok {
			t.Errorf("owner field %q leaked into response", key)
		}
	}
}

// Owner-like fields in the body are dropped at decode time; the stored
// owner is always the authenticated caller.
func TestTodoHandler_CreateIgnoresOwnerField(t *testing.T) {
	var stored model.Todo
	repo := &mockTodoRepo{
		createFn: func(ctx context.Context, todo model.Todo) (model.Todo, error) {
			stored = todo
			return todo, nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	req := authedRequest(http.MethodPost, "/api/todos",
		`{"title":"x","user":"intruder","owner":"intruder","userId":"intruder"}`, "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if stored.UserID != "user-1" {
		t.Errorf("expected owner=user-1, got %q", stored.UserID)
	}
}

func TestTodoHandler_CreateValidation(t *testing.T) {
	repo := &mockTodoRepo{
		createFn: func(ctx context.Context, todo model.Todo) (model.Todo, error) {
			t.Error("repository called despite validation failure")
			return todo, nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing title", `{"description":"x"}`, `"title" is required`},
		{"past due date", `{"title":"x","dueDate":"2020-01-01T00:00:00Z"}`, `"dueDate" must be in the future`},
		{"bad json", `{"title":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodPost, "/api/todos", tt.body, "user-1")
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var body handler.MessageResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, body.Message)
			}
		})
	}
}

func TestTodoHandler_GetNotFound(t *testing.T) {
	repo := &mockTodoRepo{
		getByIDFn: func(ctx context.Context, userID, id string) (model.Todo, error) {
			t.Error("repository called for malformed id")
			return model.Todo{}, nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	// Malformed identifier: 404, indistinguishable from a missing record
	req := authedRequest(http.MethodGet, "/api/todos/not-a-uuid", "", "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body handler.MessageResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Message != "todo not found" {
		t.Errorf("expected message 'todo not found', got %q", body.Message)
	}
}

func TestTodoHandler_List(t *testing.T) {
	var captured query.Plan
	repo := &mockTodoRepo{
		listFn: func(ctx context.Context, plan query.Plan) ([]model.Todo, int, error) {
			captured = plan
			return []model.Todo{{ID: "a", Title: "Todo 1"}, {ID: "b", Title: "Todo 2"}}, 2, nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	req := authedRequest(http.MethodGet, "/api/todos?completed=true&priority=high&sortBy=-dueDate", "", "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if captured.UserID != "user-1" {
		t.Errorf("expected plan owner=user-1, got %q", captured.UserID)
	}
	if captured.Completed == nil || !*captured.Completed {
		t.Error("expected completed filter in plan")
	}
	if captured.Priority != "high" {
		t.Errorf("expected priority filter, got %q", captured.Priority)
	}
	if len(captured.Sort) != 1 || captured.Sort[0].Column != "due_date" || !captured.Sort[0].Desc {
		t.Errorf("expected sort due_date DESC, got %+v", captured.Sort)
	}

	var page model.TodoPage
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(page.Data) != 2 || page.Total != 2 || page.Page != 1 || page.Limit != 10 || page.Pages != 1 {
		t.Errorf("unexpected page envelope: %+v", page)
	}
}

func TestTodoHandler_Update(t *testing.T) {
	repo := &mockTodoRepo{
		getByIDFn: func(ctx context.Context, userID, id string) (model.Todo, error) {
			return model.Todo{ID: todoID, UserID: userID, Title: "Old"}, nil
		},
		updateFn: func(ctx context.Context, todo model.Todo) (model.Todo, error) {
			return todo, nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	req := authedRequest(http.MethodPut, "/api/todos/"+todoID, `{"title":"New","completed":true}`, "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["title"] != "New" {
		t.Errorf("expected title=New, got %v", body["title"])
	}
	if body["completed"] != true {
		t.Errorf("expected completed=true, got %v", body["completed"])
	}
}

func TestTodoHandler_Delete(t *testing.T) {
	repo := &mockTodoRepo{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return nil
		},
	}
	h := handler.NewTodoHandler(service.NewTodoService(repo))

	req := authedRequest(http.MethodDelete, "/api/todos/"+todoID, "", "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestTodoHandler_MethodNotAllowed(t *testing.T) {
	h := handler.NewTodoHandler(service.NewTodoService(&mockTodoRepo{}))

	req := authedRequest(http.MethodPatch, "/api/todos", "", "user-1")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
