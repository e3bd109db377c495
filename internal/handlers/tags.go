package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskplanner/internal/apperr"
	"taskplanner/internal/models"
	"taskplanner/internal/services"
)

type TagHandler struct {
	db         *gorm.DB
	tagService services.TagService
}

func NewTagHandler(db *gorm.DB, tagService services.TagService) *TagHandler {
	return &TagHandler{db: db, tagService: tagService}
}

type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

type TagResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	AuthorID uint   `json:"author_id"`
}

func newTagResponse(tag *models.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name, AuthorID: tag.AuthorID}
}

func newTagResponses(tags []models.Tag) []TagResponse {
	responses := make([]TagResponse, 0, len(tags))
	for i := range tags {
		responses = append(responses, newTagResponse(&tags[i]))
	}
	return responses
}

func (h *TagHandler) Create(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	tag, err := h.tagService.Create(h.db, authorID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTagResponse(tag))
}

func (h *TagHandler) List(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}

	tags, err := h.tagService.List(h.db, authorID, intQuery(c, "skip", 0), intQuery(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponses(tags))
}

func (h *TagHandler) Get(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	tag, err := h.tagService.Get(h.db, authorID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *TagHandler) Update(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	tag, err := h.tagService.Rename(h.db, authorID, id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newTagResponse(tag))
}

func (h *TagHandler) Delete(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.tagService.Delete(h.db, authorID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TagHandler) Search(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	name := c.Query("name")
	if name == "" {
		respondError(c, apperr.Validation("name is required"))
		return
	}

	tags, err := h.tagService.SearchByName(h.db, authorID, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponses(tags))
}

func (h *TagHandler) Tasks(c *gin.Context) {
	authorID, ok := author(c)
	if !ok {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	isCompleted, err := boolQuery(c, "is_completed")
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.tagService.TasksFor(h.db, authorID, id, isCompleted, intQuery(c, "skip", 0), intQuery(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponses(tasks))
}
