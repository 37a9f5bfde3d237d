package handlers

import (
	"net/http"
	"strings"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/dto"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

// LegacyTaskHandler serves the older /api/tasks and /tasks route families.
// They predate the v1 surface and kept slightly different defaulting rules,
// preserved here as adapter policy so clients don't break:
//
//   - creates always start Open, whatever status the body carries
//   - /api/tasks updates tolerate an empty title by ignoring it
//   - /tasks listings hide Closed and Deleted tasks unless asked not to
//
// Everything still goes through the one TaskService; no rule here relaxes
// engine validation, it only changes what reaches the engine.
type LegacyTaskHandler struct {
	svc *service.TaskService
}

func NewLegacyTaskHandler(svc *service.TaskService) *LegacyTaskHandler {
	return &LegacyTaskHandler{svc: svc}
}

// Create ignores any client-supplied status and starts the task Open.
func (h *LegacyTaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Err(err.Error()))
		return
	}
	in := dom.CreateInput{
		Title:    req.Title,
		DueDate:  req.DueDate.Ptr(),
		Status:   dom.StatusOpen,
		Comments: req.Comments,
	}
	t, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(dto.FromTask(t)))
}

// List behaves like the v1 listing.
func (h *LegacyTaskHandler) List(c *gin.Context) {
	f, ok := parseListFilter(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.FromTasks(list)))
}

// ListActive defaults exclude_closed_deleted to true (the /tasks family).
func (h *LegacyTaskHandler) ListActive(c *gin.Context) {
	f, ok := parseListFilter(c)
	if !ok {
		return
	}
	if c.Query("exclude_closed_deleted") == "" {
		f.ExcludeClosedAndDeleted = true
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.FromTasks(list)))
}

func (h *LegacyTaskHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.FromTask(t)))
}

// Update drops an empty title from the change set instead of rejecting it.
// The engine itself rejects empty titles; this override keeps the looser
// historical behavior of this path without weakening the engine rule.
func (h *LegacyTaskHandler) Update(c *gin.Context) {
	ch, ok := bindChanges(c)
	if !ok {
		return
	}
	if ch.Title != nil && strings.TrimSpace(*ch.Title) == "" {
		ch.Title = nil
	}
	if ch.IsZero() {
		c.JSON(http.StatusBadRequest, dto.Err("request body is required"))
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), ch)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.FromTask(t)))
}

func (h *LegacyTaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(gin.H{"message": "Task '" + id + "' deleted successfully"}))
}
