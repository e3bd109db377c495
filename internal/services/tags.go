package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskplanner/internal/apperr"
	"taskplanner/internal/models"
)

type TagService interface {
	Create(db *gorm.DB, authorID uint, name string) (*models.Tag, error)
	List(db *gorm.DB, authorID uint, skip, limit int) ([]models.Tag, error)
	Get(db *gorm.DB, authorID, id uint) (*models.Tag, error)
	Rename(db *gorm.DB, authorID, id uint, name string) (*models.Tag, error)
	Delete(db *gorm.DB, authorID, id uint) error
	SearchByName(db *gorm.DB, authorID uint, name string) ([]models.Tag, error)
	TasksFor(db *gorm.DB, authorID, id uint, isCompleted *bool, skip, limit int) ([]models.Task, error)
}

type TagServiceImpl struct{}

func NewTagService() *TagServiceImpl {
	return &TagServiceImpl{}
}

func (s *TagServiceImpl) Create(db *gorm.DB, authorID uint, name string) (*models.Tag, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	tag := models.Tag{AuthorID: authorID, Name: name}
	if err := db.Create(&tag).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &tag, nil
}

func (s *TagServiceImpl) List(db *gorm.DB, authorID uint, skip, limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	var tags []models.Tag
	err := db.Where("author_id = ?", authorID).Offset(skip).Limit(limit).Find(&tags).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}

func (s *TagServiceImpl) Get(db *gorm.DB, authorID, id uint) (*models.Tag, error) {
	return findTag(db, authorID, id)
}

func (s *TagServiceImpl) Rename(db *gorm.DB, authorID, id uint, name string) (*models.Tag, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	tag, err := findTag(db, authorID, id)
	if err != nil {
		return nil, err
	}
	tag.Name = name
	if err := db.Omit(clause.Associations).Save(tag).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tag, nil
}

func (s *TagServiceImpl) Delete(db *gorm.DB, authorID, id uint) error {
	tag, err := findTag(db, authorID, id)
	if err != nil {
		return err
	}
	// Removes the task_tags rows; the tasks themselves stay.
	if err := db.Select(clause.Associations).Delete(tag).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *TagServiceImpl) SearchByName(db *gorm.DB, authorID uint, name string) ([]models.Tag, error) {
	var tags []models.Tag
	err := db.Where("author_id = ? AND lower(name) LIKE ?", authorID, "%"+strings.ToLower(name)+"%").
		Limit(searchResultLimit).Find(&tags).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}

// TasksFor lists the author's tasks carrying the tag. A missing tag
// yields an empty list rather than an error.
func (s *TagServiceImpl) TasksFor(db *gorm.DB, authorID, id uint, isCompleted *bool, skip, limit int) ([]models.Task, error) {
	if _, err := findTag(db, authorID, id); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return []models.Task{}, nil
		}
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}

	query := db.Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
		Where("task_tags.tag_id = ? AND tasks.author_id = ?", id, authorID)
	if isCompleted != nil {
		query = query.Where("tasks.is_completed = ?", *isCompleted)
	}

	var tasks []models.Task
	if err := query.Offset(skip).Limit(limit).Preload("Tags").Find(&tasks).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func findTag(db *gorm.DB, authorID, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := db.Where("id = ? AND author_id = ?", id, authorID).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tag not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &tag, nil
}

func validateTagName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > 100 {
		return apperr.Validation("name must be between 1 and 100 characters")
	}
	return nil
}
