package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskplanner/internal/apperr"
	"taskplanner/internal/middleware"
	"taskplanner/internal/models"
	"taskplanner/internal/services"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	Deadline    *time.Time `json:"deadline"`
	IsCompleted bool       `json:"is_completed"`
	AuthorID    uint       `json:"author_id"`
	TagIDs      []uint     `json:"tag_ids"`
}

type DeadlineShiftRequest struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (r DeadlineShiftRequest) Duration() time.Duration {
	return time.Duration(r.Days)*24*time.Hour +
		time.Duration(r.Hours)*time.Hour +
		time.Duration(r.Minutes)*time.Minute
}

func newTaskResponse(task *models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		Deadline:    task.Deadline,
		IsCompleted: task.IsCompleted,
		AuthorID:    task.AuthorID,
		TagIDs:      task.TagIDs(),
	}
}

func newTaskResponses(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, newTaskResponse(&tasks[i]))
	}
	return responses
}

// author returns the identity resolved by RequireIdentity. Handlers
// never read an author id from the request itself.
func author(c *gin.Context) (uint, bool) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, apperr.Unauthorized("authentication required"))
		return 0, false
	}
	return ident.ID, true
}

func (h *TaskHandler) Create(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	var req services.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	task, err := h.taskService.Create(h.db, authorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *TaskHandler) List(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	isCompleted, err := boolQuery(c, "is_completed")
	if err != nil {
		respondError(c, err)
		return
	}

	opts := services.TaskListOptions{
		Skip:        intQuery(c, "skip", 0),
		Limit:       intQuery(c, "limit", 100),
		IsCompleted: isCompleted,
		SortBy:      c.DefaultQuery("sort_by", "created_at"),
		Order:       c.DefaultQuery("order", "desc"),
	}

	tasks, err := h.taskService.List(h.db, authorID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *TaskHandler) Get(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.taskService.Get(h.db, authorID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req services.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	task, err := h.taskService.Update(h.db, authorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.taskService.Delete(h.db, authorID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.taskService.Complete(h.db, authorID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newTaskResponse(task))
}

func (h *TaskHandler) Tags(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	tags, err := h.taskService.TagsFor(h.db, authorID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponses(tags))
}

// AddTags replaces the task's tag set with the owned subset of the
// supplied ids. The body is a bare JSON array of tag ids.
func (h *TaskHandler) AddTags(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var tagIDs []uint
	if err := c.ShouldBindJSON(&tagIDs); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	task, err := h.taskService.ReplaceTags(h.db, authorID, id, tagIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newTaskResponse(task))
}

func (h *TaskHandler) Search(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	title := c.Query("title")
	if title == "" {
		respondError(c, apperr.Validation("title is required"))
		return
	}

	tasks, err := h.taskService.SearchByTitle(h.db, authorID, title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *TaskHandler) ByDeadlineRange(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	dayStart, err := dateQuery(c, "day_start")
	if err != nil {
		respondError(c, err)
		return
	}
	dayEnd, err := dateQuery(c, "day_end")
	if err != nil {
		respondError(c, err)
		return
	}
	isCompleted, err := boolQuery(c, "is_completed")
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.taskService.ByDeadlineRange(h.db, authorID, dayStart, dayEnd, isCompleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *TaskHandler) ByDeadlineDay(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	day, err := time.Parse("2006-01-02", c.Param("day"))
	if err != nil {
		respondError(c, apperr.Validation("invalid day, expected YYYY-MM-DD"))
		return
	}
	isCompleted, err := boolQuery(c, "is_completed")
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.taskService.ByDeadlineRange(h.db, authorID, day, day, isCompleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *TaskHandler) ShiftDeadline(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req DeadlineShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	task, err := h.taskService.ShiftDeadline(h.db, authorID, id, req.Duration())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newTaskResponse(task))
}

func (h *TaskHandler) Overdue(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.Overdue(h.db, authorID, intQuery(c, "skip", 0), intQuery(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponses(tasks))
}
