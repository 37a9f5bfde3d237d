package handlers

import (
	"errors"
	"net/http"
	"strconv"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/dto"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

// TaskHandler is the canonical /api/v1/tasks surface. The legacy route
// families in legacy.go wrap the same service with their own defaulting
// rules; none of them duplicate validation beyond that.
type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Err(err.Error()))
		return
	}
	in, err := req.ToInput()
	if err != nil {
		respondErr(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(dto.FromTask(t)))
}

// List godoc
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        status                  query  string  false  "Exact status filter"
// @Param        exclude_closed_deleted  query  bool    false  "Hide Closed and Deleted tasks (ignored when status is set)"
// @Param        sort_by_due_date        query  bool    false  "Sort by due date ascending, nulls last"
// @Success      200  {object}  dto.Envelope{data=[]dto.TaskResponse}
// @Failure      400  {object}  dto.Envelope
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
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

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.FromTask(t)))
}

// Update godoc
// @Summary      Update a task (partial)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Fields to change; null due_date/comments clear them"
// @Success      200   {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	ch, ok := bindChanges(c)
	if !ok {
		return
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

// Delete godoc
// @Summary      Delete a task (soft delete)
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(gin.H{"message": "Task '" + id + "' deleted successfully"}))
}

// Filter godoc
// @Summary      Query tasks with filters and sorting
// @Tags         tasks
// @Produce      json
// @Param        status                  query  string  false  "Exact status filter"
// @Param        due_before              query  string  false  "Due strictly before (ISO-8601)"
// @Param        due_after               query  string  false  "Due strictly after (ISO-8601)"
// @Param        has_due_date            query  bool    false  "Only tasks with (true) or without (false) a due date"
// @Param        exclude_closed_deleted  query  bool    false  "Hide Closed and Deleted tasks (ignored when status is set)"
// @Param        sort_by                 query  string  false  "created_at, due_date, updated_at, title or status"
// @Param        sort_order              query  string  false  "asc or desc"
// @Success      200  {object}  dto.Envelope{data=[]dto.TaskResponse}
// @Failure      400  {object}  dto.Envelope
// @Router       /tasks/filter [get]
func (h *TaskHandler) Filter(c *gin.Context) {
	q, ok := parseQueryCriteria(c)
	if !ok {
		return
	}
	list, err := h.svc.Query(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.FromTasks(list)))
}

func parseListFilter(c *gin.Context) (service.ListFilter, bool) {
	var f service.ListFilter
	if raw := c.Query("status"); raw != "" {
		status, err := dom.ParseStatus(raw)
		if err != nil {
			respondErr(c, err)
			return f, false
		}
		f.StatusExact = &status
	}
	f.ExcludeClosedAndDeleted = boolQuery(c, "exclude_closed_deleted", false)
	f.SortByDueDate = boolQuery(c, "sort_by_due_date", false)
	return f, true
}

func parseQueryCriteria(c *gin.Context) (service.QueryCriteria, bool) {
	var q service.QueryCriteria
	if raw := c.Query("status"); raw != "" {
		status, err := dom.ParseStatus(raw)
		if err != nil {
			respondErr(c, err)
			return q, false
		}
		q.StatusExact = &status
	}
	if raw := c.Query("due_before"); raw != "" {
		t, err := dto.ParseDueDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Err("due_before: "+err.Error()))
			return q, false
		}
		q.DueBefore = t
	}
	if raw := c.Query("due_after"); raw != "" {
		t, err := dto.ParseDueDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Err("due_after: "+err.Error()))
			return q, false
		}
		q.DueAfter = t
	}
	if raw := c.Query("has_due_date"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Err("has_due_date must be true or false"))
			return q, false
		}
		q.HasDueDate = &v
	}
	q.ExcludeClosedAndDeleted = boolQuery(c, "exclude_closed_deleted", false)
	q.SortField = c.Query("sort_by")
	q.SortDirection = c.Query("sort_order")
	return q, true
}

func boolQuery(c *gin.Context, name string, def bool) bool {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func bindChanges(c *gin.Context) (dom.TaskChanges, bool) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Err(err.Error()))
		return dom.TaskChanges{}, false
	}
	ch, err := req.ToChanges()
	if err != nil {
		respondErr(c, err)
		return dom.TaskChanges{}, false
	}
	return ch, true
}

// respondErr maps the engine's error taxonomy onto transport codes:
// InvalidInput 400, NotFound 404, DuplicateID 409, everything else 500.
func respondErr(c *gin.Context, err error) {
	switch {
	case dom.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, dto.Err(err.Error()))
	case errors.Is(err, dom.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.Err("task not found"))
	case errors.Is(err, dom.ErrDuplicateID):
		c.JSON(http.StatusConflict, dto.Err(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.Err("internal server error"))
	}
}
