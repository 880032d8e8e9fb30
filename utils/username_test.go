package utils

import (
	"context"
	"fmt"
	"testing"
)

func takenSet(names ...string) UsernameTakenFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(ctx context.Context, username string) (bool, error) {
		return set[username], nil
	}
}

func TestGenerateUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		taken []string
		want  string
	}{
		{"simple", "Jane Doe", nil, "jane_doe"},
		{"collapses whitespace", "  Jane   Doe ", nil, "jane_doe"},
		{"first collision", "Jane Doe", []string{"jane_doe"}, "jane_doe_1"},
		{"multiple collisions", "Jane Doe", []string{"jane_doe", "jane_doe_1", "jane_doe_2"}, "jane_doe_3"},
		{"empty name falls back", "   ", nil, "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateUsername(context.Background(), tt.input, takenSet(tt.taken...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GenerateUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateUsernameLookupError(t *testing.T) {
	lookupErr := fmt.Errorf("connection refused")
	_, err := GenerateUsername(context.Background(), "Jane", func(ctx context.Context, username string) (bool, error) {
		return false, lookupErr
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
