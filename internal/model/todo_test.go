package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sunho-bae/todo-api/internal/model"
)

func TestPriority_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		priority model.Priority
		want     bool
	}{
		{"low", model.PriorityLow, true},
		{"medium", model.PriorityMedium, true},
		{"high", model.PriorityHigh, true},
		{"empty", model.Priority(""), false},
		{"invalid", model.Priority("urgent"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.priority.IsValid(); got != tt.want {
				t.Errorf("Priority(%q).IsValid() = %v, want %v", tt.priority, got, tt.want)
			}
		})
	}
}

// The owner must never serialize back to a client, on any code path that
// encodes the record.
func TestTodo_OwnerNotSerialized(t *testing.T) {
	todo := model.Todo{
		ID:     "todo-1",
		UserID: "user-1",
		Title:  "Buy groceries",
	}

	data, err := json.Marshal(todo)
	if err != nil {
		t.Fatalf("failed to marshal todo: %v", err)
	}

	if strings.Contains(string(data), "user-1") {
		t.Errorf("owner leaked into JSON: %s", data)
	}
}
