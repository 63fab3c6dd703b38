package repository

import (
	"context"

	"exercise-tracker/internal/domain"
)

// ExerciseRepository stores exercise entries. Entries are append-only.
type ExerciseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, exercise *domain.Exercise) error
	// ListByUser returns the user's exercises in insertion order, filtered by
	// the inclusive date range first and then truncated to the limit.
	ListByUser(ctx context.Context, userID string, query domain.LogQuery) ([]domain.Exercise, error)
}
