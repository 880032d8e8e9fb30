package utils

import (
	"context"
	"fmt"
	"strings"
)

// UsernameTakenFunc reports whether a candidate username is already in use.
type UsernameTakenFunc func(ctx context.Context, username string) (bool, error)

// GenerateUsername derives a unique username from a display name:
// lowercased, whitespace collapsed to underscores, then a numeric suffix
// appended until the candidate is free.
func GenerateUsername(ctx context.Context, name string, taken UsernameTakenFunc) (string, error) {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.Join(strings.Fields(base), "_")
	if base == "" {
		base = "user"
	}

	username := base
	for counter := 1; ; counter++ {
		exists, err := taken(ctx, username)
		if err != nil {
			return "", fmt.Errorf("check username %q: %w", username, err)
		}
		if !exists {
			return username, nil
		}
		username = fmt.Sprintf("%s_%d", base, counter)
	}
}
