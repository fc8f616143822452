package http

import (
	"net/http"

	"github.com/sunho-bae/todo-api/internal/http/handler"
	"github.com/sunho-bae/todo-api/internal/service"
)

func NewRouter(todoSvc *service.TodoService, authSvc *service.AuthService) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/health", handler.NewHealthHandler())

	todoHandler := handler.NewTodoHandler(todoSvc)
	mux.Handle("/api/todos", todoHandler)
	mux.Handle("/api/todos/", todoHandler)

	mux.Handle("/api/auth/", handler.NewAuthHandler(authSvc))

	// Anything else falls through to a JSON 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
	})

	return mux
}
