package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"exercise-tracker/internal/domain"
	"exercise-tracker/internal/storage"
)

// ErrExportsDisabled is returned when no export bucket is configured.
var ErrExportsDisabled = errors.New("log exports are not configured")

// ExportService snapshots exercise logs to object storage.
type ExportService interface {
	ExportLog(ctx context.Context, userID string, query domain.LogQuery) (string, error)
	ListExports(ctx context.Context, userID string) ([]storage.ObjectInfo, error)
}

type ExportOptions struct {
	Bucket    string
	KeyPrefix string
}

type exportService struct {
	users     UserService
	exercises ExerciseService
	storage   storage.Service
	opts      ExportOptions
	now       func() time.Time
}

// NewExportService returns a service whose calls fail with ErrExportsDisabled
// when store is nil or no bucket is set.
func NewExportService(users UserService, exercises ExerciseService, store storage.Service, opts ExportOptions) ExportService {
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	return &exportService{
		users:     users,
		exercises: exercises,
		storage:   store,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *exportService) enabled() bool {
	return s.storage != nil && s.opts.Bucket != ""
}

func (s *exportService) ExportLog(ctx context.Context, userID string, query domain.LogQuery) (string, error) {
	if !s.enabled() {
		return "", ErrExportsDisabled
	}

	log, err := s.exercises.GetLog(ctx, userID, query)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(NewLogReport(*log))
	if err != nil {
		return "", fmt.Errorf("encode log report: %w", err)
	}

	key := path.Join(s.userPrefix(log.User.ID), s.now().UTC().Format("20060102T150405.000000000Z")+".json")
	location, err := s.storage.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("upload log report: %w", err)
	}
	return location, nil
}

func (s *exportService) ListExports(ctx context.Context, userID string) ([]storage.ObjectInfo, error) {
	if !s.enabled() {
		return nil, ErrExportsDisabled
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.storage.ListObjects(ctx, s.opts.Bucket, s.userPrefix(user.ID)+"/")
}

func (s *exportService) userPrefix(userID string) string {
	return path.Join(s.opts.KeyPrefix, userID)
}
