package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exercise-tracker/internal/repository/sqlite"
	"exercise-tracker/internal/service"
	"exercise-tracker/internal/storage"
)

type memoryStorage struct {
	keys []string
}

func (m *memoryStorage) PutObject(_ context.Context, bucket, key string, body io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "s3://" + bucket + "/" + key, nil
}

func (m *memoryStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for _, k := range m.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: 1})
		}
	}
	return out, nil
}

func setupRouter(t *testing.T, store storage.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	exerciseRepo := sqlite.NewExerciseRepository(db)
	require.NoError(t, sqlite.InitAll(ctx, userRepo, exerciseRepo))

	users := service.NewUserService(userRepo)
	exercises := service.NewExerciseService(users, exerciseRepo)
	exports := service.NewExportService(users, exercises, store, service.ExportOptions{Bucket: "logs", KeyPrefix: "exports"})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	NewHandler(users, exercises, exports, logger).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, r *gin.Engine, username string) UserResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/users", `{"username":"`+username+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func TestCreateUser_DuplicateIsBadRequest(t *testing.T) {
	r := setupRouter(t, nil)

	user := createUser(t, r, "alice")
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	w := doJSON(t, r, http.MethodPost, "/api/users", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username already taken")
}

func TestCreateUser_FormBody(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(url.Values{"username": {"formy"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"formy"`)

	w = doJSON(t, r, http.MethodPost, "/api/users", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers(t *testing.T) {
	r := setupRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	createUser(t, r, "a")
	createUser(t, r, "b")

	w = doJSON(t, r, http.MethodGet, "/api/users", "")
	var users []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].Username)
	assert.Equal(t, "b", users[1].Username)
}

func TestAddExercise(t *testing.T) {
	r := setupRouter(t, nil)
	user := createUser(t, r, "runner")

	w := doJSON(t, r, http.MethodPost, "/api/users/"+user.ID+"/exercises", `{"description":"run","duration":30,"date":"2023-06-15"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ExerciseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, "runner", resp.Username)
	assert.Equal(t, "run", resp.Description)
	assert.Equal(t, 30, resp.Duration)
	assert.Equal(t, "Thu June 15 2023", resp.Date)
	assert.NotEmpty(t, resp.ExerciseID)
}

func TestAddExercise_Errors(t *testing.T) {
	r := setupRouter(t, nil)
	user := createUser(t, r, "errs")

	w := doJSON(t, r, http.MethodPost, "/api/users/unknown/exercises", `{"description":"run","duration":30}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	bad := []string{
		`{"duration":30}`,
		`{"description":"` + strings.Repeat("a", 26) + `","duration":30}`,
		`{"description":"run","duration":0}`,
		`{"description":"run"}`,
		`not json`,
	}
	for _, body := range bad {
		w := doJSON(t, r, http.MethodPost, "/api/users/"+user.ID+"/exercises", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestGetLog(t *testing.T) {
	r := setupRouter(t, nil)
	user := createUser(t, r, "logger")

	for _, d := range []string{"2023-01-01", "2023-06-15", "2023-12-31"} {
		w := doJSON(t, r, http.MethodPost, "/api/users/"+user.ID+"/exercises", `{"description":"run","duration":30,"date":"`+d+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var log service.LogReport
	w := doJSON(t, r, http.MethodGet, "/api/users/"+user.ID+"/logs?from=2023-02-01&to=2023-07-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	assert.Equal(t, 1, log.Count)
	require.Len(t, log.Log, 1)
	assert.Equal(t, "Thu June 15 2023", log.Log[0].Date)
	assert.Equal(t, "run", log.Log[0].Description)
	assert.Equal(t, 30, log.Log[0].Duration)

	w = doJSON(t, r, http.MethodGet, "/api/users/"+user.ID+"/logs?limit=1", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	assert.Equal(t, 1, log.Count)
	assert.Len(t, log.Log, 1)

	// invalid parameters are ignored
	w = doJSON(t, r, http.MethodGet, "/api/users/"+user.ID+"/logs?from=garbage&to=2023-99-99&limit=-4", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	assert.Equal(t, 3, log.Count)
	assert.Equal(t, "logger", log.Username)
	assert.Equal(t, user.ID, log.ID)

	w = doJSON(t, r, http.MethodGet, "/api/users/unknown/logs", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExports(t *testing.T) {
	store := &memoryStorage{}
	r := setupRouter(t, store)
	user := createUser(t, r, "exporter")

	w := doJSON(t, r, http.MethodPost, "/api/users/"+user.ID+"/logs/export?limit=5", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var export ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
	assert.True(t, strings.HasPrefix(export.Location, "s3://logs/exports/"+user.ID+"/"))

	w = doJSON(t, r, http.MethodGet, "/api/users/"+user.ID+"/logs/exports", "")
	require.Equal(t, http.StatusOK, w.Code)
	var objects []StorageObjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &objects))
	assert.Len(t, objects, 1)
}

func TestExports_Disabled(t *testing.T) {
	r := setupRouter(t, nil)
	user := createUser(t, r, "nobucket")

	w := doJSON(t, r, http.MethodPost, "/api/users/"+user.ID+"/logs/export", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIndexHealthAndMetrics(t *testing.T) {
	r := setupRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Exercise tracker")

	w = doJSON(t, r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doJSON(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t, nil)
	w := doJSON(t, r, http.MethodOptions, "/api/users", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
