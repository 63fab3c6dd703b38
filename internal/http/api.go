package http

import (
	_ "embed"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"exercise-tracker/internal/domain"
	"exercise-tracker/internal/service"
	"exercise-tracker/internal/storage"
)

//go:embed views/index.html
var indexPage []byte

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	exercises service.ExerciseService
	exports   service.ExportService
	logger    *logrus.Logger
	metrics   *metrics
	registry  *prometheus.Registry
}

func NewHandler(users service.UserService, exercises service.ExerciseService, exports service.ExportService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	registry := prometheus.NewRegistry()
	return &Handler{
		users:     users,
		exercises: exercises,
		exports:   exports,
		logger:    logger,
		metrics:   newMetrics(registry),
		registry:  registry,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestIDMiddleware(), h.loggingMiddleware(), h.metrics.middleware())

	router.GET("/", h.index)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.POST("/users", h.createUser)
		api.GET("/users", h.listUsers)
		api.POST("/users/:id/exercises", h.addExercise)
		api.GET("/users/:id/logs", h.getLog)
		api.POST("/users/:id/logs/export", h.exportLog)
		api.GET("/users/:id/logs/exports", h.listExports)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type createUserRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
}

type addExerciseRequest struct {
	Description string `json:"description" form:"description" binding:"required,max=25"`
	Duration    int    `json:"duration" form:"duration" binding:"required,min=1"`
	Date        string `json:"date" form:"date"`
}

type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

type ExerciseResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
	ExerciseID  string `json:"exercise_id"`
}

type ExportResponse struct {
	Location string `json:"location"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeError(c, bindingError(err))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) addExercise(c *gin.Context) {
	userID := c.Param("id")

	// an unknown user wins over a malformed body
	if _, err := h.users.GetUser(c.Request.Context(), userID); err != nil {
		h.writeError(c, err)
		return
	}

	var req addExerciseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeError(c, bindingError(err))
		return
	}

	logged, err := h.exercises.AddExercise(c.Request.Context(), userID, service.NewExercise{
		Description: req.Description,
		Duration:    req.Duration,
		Date:        req.Date,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExerciseResponse{
		ID:          logged.Exercise.UserID,
		Username:    logged.Username,
		Description: logged.Exercise.Description,
		Duration:    logged.Exercise.Duration,
		Date:        domain.FormatDate(logged.Exercise.Date),
		ExerciseID:  logged.Exercise.ID,
	})
}

func (h *Handler) getLog(c *gin.Context) {
	log, err := h.exercises.GetLog(c.Request.Context(), c.Param("id"), parseLogQuery(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.NewLogReport(*log))
}

func (h *Handler) exportLog(c *gin.Context) {
	location, err := h.exports.ExportLog(c.Request.Context(), c.Param("id"), parseLogQuery(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"location":   location,
	}).Info("exported exercise log")
	c.JSON(http.StatusCreated, ExportResponse{Location: location})
}

func (h *Handler) listExports(c *gin.Context) {
	objects, err := h.exports.ListExports(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// parseLogQuery never fails: unparseable bounds are open and a
// non-positive or malformed limit means no limit.
func parseLogQuery(c *gin.Context) domain.LogQuery {
	var q domain.LogQuery
	if from, ok := domain.ParseDate(c.Query("from")); ok {
		q.From = &from
	}
	if to, ok := domain.ParseDate(c.Query("to")); ok {
		q.To = &to
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	return q
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{Username: user.Username, ID: user.ID}
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
