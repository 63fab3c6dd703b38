package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"exercise-tracker/internal/domain"
	"exercise-tracker/internal/repository"
)

// NewExercise is the validated input of AddExercise. Date is raw user input.
type NewExercise struct {
	Description string
	Duration    int
	Date        string
}

// LoggedExercise is an exercise merged with its owner's username.
type LoggedExercise struct {
	Exercise domain.Exercise
	Username string
}

// ExerciseService records exercises and answers log queries.
type ExerciseService interface {
	AddExercise(ctx context.Context, userID string, in NewExercise) (*LoggedExercise, error)
	GetLog(ctx context.Context, userID string, query domain.LogQuery) (*domain.ExerciseLog, error)
}

type exerciseService struct {
	users     UserService
	exercises repository.ExerciseRepository
	now       func() time.Time
}

func NewExerciseService(users UserService, exercises repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		users:     users,
		exercises: exercises,
		now:       time.Now,
	}
}

func (s *exerciseService) AddExercise(ctx context.Context, userID string, in NewExercise) (*LoggedExercise, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.NewValidationError("description is required")
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return nil, domain.NewValidationError("description too long, not greater than %d", domain.MaxDescriptionLength)
	}
	if in.Duration < domain.MinDuration {
		return nil, domain.NewValidationError("duration too short, at least %d minute", domain.MinDuration)
	}

	now := s.now().UTC()
	exercise := domain.Exercise{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Description: description,
		Duration:    in.Duration,
		Date:        domain.ParseExerciseDate(in.Date, now),
		CreatedAt:   now,
	}
	if err := s.exercises.Create(ctx, &exercise); err != nil {
		return nil, err
	}

	return &LoggedExercise{Exercise: exercise, Username: user.Username}, nil
}

func (s *exerciseService) GetLog(ctx context.Context, userID string, query domain.LogQuery) (*domain.ExerciseLog, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exercises.ListByUser(ctx, user.ID, query)
	if err != nil {
		return nil, err
	}

	return &domain.ExerciseLog{User: *user, Exercises: exercises}, nil
}
