package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"exercise-tracker/internal/domain"
	"exercise-tracker/internal/repository"
)

const createExercisesTable = `
CREATE TABLE IF NOT EXISTS exercises (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	duration INTEGER NOT NULL CHECK (duration >= 1),
	date TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_exercises_user_date ON exercises(user_id, date);
`

type ExerciseRepository struct {
	db *sql.DB
}

func NewExerciseRepository(db *sql.DB) repository.ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createExercisesTable); err != nil {
		return fmt.Errorf("create exercises table: %w", err)
	}
	return nil
}

func (r *ExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO exercises (id, user_id, description, duration, date, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date.Format(domain.DateLayout),
		exercise.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exercise: %w", err)
	}
	return nil
}

func (r *ExerciseRepository) ListByUser(ctx context.Context, userID string, query domain.LogQuery) ([]domain.Exercise, error) {
	stmt, args, err := buildLogQuery(userID, query).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build log query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	exercises := []domain.Exercise{}
	for rows.Next() {
		var (
			ex   domain.Exercise
			date string
		)
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Description, &ex.Duration, &date, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		parsed, ok := domain.ParseDate(date)
		if !ok {
			return nil, fmt.Errorf("exercise %s has malformed date %q", ex.ID, date)
		}
		ex.Date = parsed
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// buildLogQuery filters on the stored YYYY-MM-DD strings, which sort the
// same way as the dates they encode.
func buildLogQuery(userID string, query domain.LogQuery) sq.SelectBuilder {
	b := sq.Select("id", "user_id", "description", "duration", "date", "created_at").
		From("exercises").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("seq ASC")

	if query.From != nil {
		b = b.Where(sq.GtOrEq{"date": query.From.Format(domain.DateLayout)})
	}
	if query.To != nil {
		b = b.Where(sq.LtOrEq{"date": query.To.Format(domain.DateLayout)})
	}
	if query.Limit > 0 {
		b = b.Limit(uint64(query.Limit))
	}
	return b
}
