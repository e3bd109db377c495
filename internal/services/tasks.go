package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskplanner/internal/apperr"
	"taskplanner/internal/models"
	"taskplanner/internal/optional"
)

const (
	defaultPriority   = 3
	defaultPageSize   = 100
	searchResultLimit = 10
)

// Columns the list endpoint may sort by. Anything else silently falls
// back to created_at; that fallback is part of the contract.
var taskSortColumns = map[string]string{
	"title":      "title",
	"priority":   "priority",
	"deadline":   "deadline",
	"created_at": "created_at",
}

// TaskCreateRequest's Priority is a pointer so an explicit 0 fails the
// range check instead of being mistaken for an absent field.
type TaskCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    *int       `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	IsCompleted bool       `json:"is_completed"`
}

// TaskUpdateRequest applies only the fields present in the payload.
// An explicit null clears the deadline; for every other field null is
// treated as absent.
type TaskUpdateRequest struct {
	Title       optional.Field[string]    `json:"title"`
	Description optional.Field[string]    `json:"description"`
	Priority    optional.Field[int]       `json:"priority"`
	Deadline    optional.Field[time.Time] `json:"deadline"`
	IsCompleted optional.Field[bool]      `json:"is_completed"`
	TagIDs      optional.Field[[]uint]    `json:"tag_ids"`
}

type TaskListOptions struct {
	Skip        int
	Limit       int
	IsCompleted *bool
	SortBy      string
	Order       string
}

type TaskService interface {
	Create(db *gorm.DB, authorID uint, req TaskCreateRequest) (*models.Task, error)
	List(db *gorm.DB, authorID uint, opts TaskListOptions) ([]models.Task, error)
	Get(db *gorm.DB, authorID, id uint) (*models.Task, error)
	Update(db *gorm.DB, authorID, id uint, req TaskUpdateRequest) (*models.Task, error)
	Delete(db *gorm.DB, authorID, id uint) error
	Complete(db *gorm.DB, authorID, id uint) (*models.Task, error)
	TagsFor(db *gorm.DB, authorID, id uint) ([]models.Tag, error)
	ReplaceTags(db *gorm.DB, authorID, id uint, tagIDs []uint) (*models.Task, error)
	SearchByTitle(db *gorm.DB, authorID uint, title string) ([]models.Task, error)
	ByDeadlineRange(db *gorm.DB, authorID uint, dayStart, dayEnd time.Time, isCompleted *bool) ([]models.Task, error)
	ShiftDeadline(db *gorm.DB, authorID, id uint, shift time.Duration) (*models.Task, error)
	Overdue(db *gorm.DB, authorID uint, skip, limit int) ([]models.Task, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) Create(db *gorm.DB, authorID uint, req TaskCreateRequest) (*models.Task, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}

	priority := defaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	var deadline *time.Time
	if req.Deadline != nil {
		normalized, err := futureDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		deadline = &normalized
	}

	task := models.Task{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Deadline:    deadline,
		IsCompleted: req.IsCompleted,
		Tags:        []models.Tag{},
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &task, nil
}

func (s *TaskServiceImpl) List(db *gorm.DB, authorID uint, opts TaskListOptions) ([]models.Task, error) {
	column, ok := taskSortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if opts.Order == "asc" {
		direction = "ASC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	query := db.Where("author_id = ?", authorID)
	if opts.IsCompleted != nil {
		query = query.Where("is_completed = ?", *opts.IsCompleted)
	}

	var tasks []models.Task
	err := query.Order(column + " " + direction).
		Offset(opts.Skip).Limit(limit).
		Preload("Tags").Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) Get(db *gorm.DB, authorID, id uint) (*models.Task, error) {
	return findTask(db, authorID, id)
}

func (s *TaskServiceImpl) Update(db *gorm.DB, authorID, id uint, req TaskUpdateRequest) (*models.Task, error) {
	task, err := findTask(db, authorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title.Set && req.Title.Valid {
		if err := validateTitle(req.Title.Value); err != nil {
			return nil, err
		}
		task.Title = req.Title.Value
	}
	if req.Description.Set && req.Description.Valid {
		if err := validateDescription(req.Description.Value); err != nil {
			return nil, err
		}
		task.Description = req.Description.Value
	}
	if req.Priority.Set && req.Priority.Valid {
		if err := validatePriority(req.Priority.Value); err != nil {
			return nil, err
		}
		task.Priority = req.Priority.Value
	}
	if req.IsCompleted.Set && req.IsCompleted.Valid {
		task.IsCompleted = req.IsCompleted.Value
	}
	if req.Deadline.Set {
		if req.Deadline.Valid {
			normalized, err := futureDeadline(req.Deadline.Value)
			if err != nil {
				return nil, err
			}
			task.Deadline = &normalized
		} else {
			task.Deadline = nil
		}
	}

	if err := db.Omit(clause.Associations).Save(task).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if req.TagIDs.Set && req.TagIDs.Valid {
		tags, err := ownedTags(db, authorID, req.TagIDs.Value)
		if err != nil {
			return nil, err
		}
		if err := db.Model(task).Association("Tags").Replace(&tags); err != nil {
			return nil, apperr.Internal(err)
		}
		task.Tags = tags
	}

	return task, nil
}

func (s *TaskServiceImpl) Delete(db *gorm.DB, authorID, id uint) error {
	task, err := findTask(db, authorID, id)
	if err != nil {
		return err
	}
	// Select(Associations) removes the task_tags rows; the tags stay.
	if err := db.Select(clause.Associations).Delete(task).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *TaskServiceImpl) Complete(db *gorm.DB, authorID, id uint) (*models.Task, error) {
	task, err := findTask(db, authorID, id)
	if err != nil {
		return nil, err
	}
	task.IsCompleted = true
	if err := db.Omit(clause.Associations).Save(task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return task, nil
}

func (s *TaskServiceImpl) TagsFor(db *gorm.DB, authorID, id uint) ([]models.Tag, error) {
	task, err := findTask(db, authorID, id)
	if err != nil {
		return nil, err
	}
	return task.Tags, nil
}

// ReplaceTags swaps the task's tag set for the owned subset of the
// supplied ids. Ids belonging to other authors are dropped silently,
// not reported.
func (s *TaskServiceImpl) ReplaceTags(db *gorm.DB, authorID, id uint, tagIDs []uint) (*models.Task, error) {
	task, err := findTask(db, authorID, id)
	if err != nil {
		return nil, err
	}

	tags, err := ownedTags(db, authorID, tagIDs)
	if err != nil {
		return nil, err
	}
	if err := db.Model(task).Association("Tags").Replace(&tags); err != nil {
		return nil, apperr.Internal(err)
	}
	task.Tags = tags
	return task, nil
}

func (s *TaskServiceImpl) SearchByTitle(db *gorm.DB, authorID uint, title string) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Where("author_id = ? AND lower(title) LIKE ?", authorID, "%"+strings.ToLower(title)+"%").
		Limit(searchResultLimit).
		Preload("Tags").Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) ByDeadlineRange(db *gorm.DB, authorID uint, dayStart, dayEnd time.Time, isCompleted *bool) ([]models.Task, error) {
	start := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(dayEnd.Year(), dayEnd.Month(), dayEnd.Day(), 23, 59, 59, 0, time.UTC)

	query := db.Where("author_id = ? AND deadline BETWEEN ? AND ?", authorID, start, end)
	if isCompleted != nil {
		query = query.Where("is_completed = ?", *isCompleted)
	}

	var tasks []models.Task
	if err := query.Preload("Tags").Find(&tasks).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) ShiftDeadline(db *gorm.DB, authorID, id uint, shift time.Duration) (*models.Task, error) {
	task, err := findTask(db, authorID, id)
	if err != nil {
		return nil, err
	}
	if task.Deadline == nil {
		return nil, apperr.NotFound("task has no deadline")
	}

	shifted := task.Deadline.Add(shift)
	task.Deadline = &shifted
	if err := db.Omit(clause.Associations).Save(task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return task, nil
}

func (s *TaskServiceImpl) Overdue(db *gorm.DB, authorID uint, skip, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	var tasks []models.Task
	err := db.Where("author_id = ? AND deadline < ? AND is_completed = ?", authorID, time.Now().UTC(), false).
		Order("deadline ASC").
		Offset(skip).Limit(limit).
		Preload("Tags").Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func findTask(db *gorm.DB, authorID, id uint) (*models.Task, error) {
	var task models.Task
	err := db.Preload("Tags").Where("id = ? AND author_id = ?", id, authorID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Absent and foreign-owned are indistinguishable on purpose.
		return nil, apperr.NotFound("task not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &task, nil
}

func ownedTags(db *gorm.DB, authorID uint, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := db.Where("id IN ? AND author_id = ?", ids, authorID).Find(&tags).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}

func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < 1 || length > 100 {
		return apperr.Validation("title must be between 1 and 100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > 1000 {
		return apperr.Validation("description must be at most 1000 characters")
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < 1 || priority > 5 {
		return apperr.Validation("priority must be between 1 and 5")
	}
	return nil
}

// futureDeadline normalizes to UTC and enforces the future-only rule.
// The rule applies at write time only; stored deadlines are free to
// drift into the past.
func futureDeadline(deadline time.Time) (time.Time, error) {
	normalized := deadline.UTC()
	if !normalized.After(time.Now().UTC()) {
		return time.Time{}, apperr.Validation("deadline must be in the future")
	}
	return normalized, nil
}
