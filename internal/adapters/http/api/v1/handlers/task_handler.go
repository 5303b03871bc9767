package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/usecase"
	res "github.com/3oMaR9914/SentryAI/pkg/http"
)

type TaskHandler struct {
	service usecase.TaskService
}

func NewTaskHandler(s usecase.TaskService) *TaskHandler { return &TaskHandler{service: s} }

type taskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Deadline    time.Time `json:"deadline"`
}

func (r *taskRequest) input() usecase.TaskInput {
	return usecase.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Status:      r.Status,
		Priority:    r.Priority,
		Deadline:    r.Deadline,
	}
}

func (h *TaskHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing user", requestIDFromCtx(c), nil)
	}
	req := new(taskRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	task, err := h.service.Create(c.Request().Context(), requestIDFromCtx(c), userID, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing user", requestIDFromCtx(c), nil)
	}
	tasks, err := h.service.ListForUser(c.Request().Context(), requestIDFromCtx(c), userID)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing user", requestIDFromCtx(c), nil)
	}
	taskID, err := pathTaskID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid task id", requestIDFromCtx(c), nil)
	}
	task, err := h.service.Get(c.Request().Context(), requestIDFromCtx(c), userID, taskID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing user", requestIDFromCtx(c), nil)
	}
	taskID, err := pathTaskID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid task id", requestIDFromCtx(c), nil)
	}
	req := new(taskRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	task, err := h.service.Update(c.Request().Context(), requestIDFromCtx(c), userID, taskID, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing user", requestIDFromCtx(c), nil)
	}
	taskID, err := pathTaskID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid task id", requestIDFromCtx(c), nil)
	}
	if err := h.service.Delete(c.Request().Context(), requestIDFromCtx(c), userID, taskID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathTaskID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return uint(id), nil
}
