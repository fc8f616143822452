package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sunho-bae/todo-api/internal/middleware"
)

func TestGetUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if got := middleware.GetUserID(req); got != "" {
		t.Errorf("expected empty userID on bare request, got %q", got)
	}

	ctx := middleware.SetUserID(req.Context(), "user-1")
	req = req.WithContext(ctx)

	if got := middleware.GetUserID(req); got != "user-1" {
		t.Errorf("expected userID=user-1, got %q", got)
	}
}
