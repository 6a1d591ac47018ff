package handler

import (
	"fmt"
	"net/http"

	"fwf/internal/middleware"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskHandler struct {
	svc *service.TaskService
	log *zap.Logger
}

func NewTaskHandler(svc *service.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

// GET /api/social-tasks: active tasks plus the caller's completions.
func (h *TaskHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	tasks, err := h.svc.ListTasks(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	done, err := h.svc.Completions(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks, "completions": done})
}

type CompleteTaskRequest struct {
	TaskID          string   `json:"task_id"`
	PhotoURL        string   `json:"photo_url"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	LocationAddress string   `json:"location_address"`
}

// POST /api/member/complete-task
func (h *TaskHandler) Complete(c *gin.Context) {
	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Complete(c.Request.Context(), middleware.GetUserID(c), service.TaskSubmission{
		TaskID:          req.TaskID,
		PhotoURL:        req.PhotoURL,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		LocationAddress: req.LocationAddress,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	pts := res.Completion.PointsEarned
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"points":     pts,
		"message":    fmt.Sprintf("Task completed! You earned %s points.", pts.String()),
		"completion": res.Completion,
		"post":       res.Post,
	})
}

// GET /api/social/feed
func (h *TaskHandler) Feed(c *gin.Context) {
	p := pageFrom(c)
	posts, err := h.svc.Feed(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "posts": posts, "page": p.Page})
}
