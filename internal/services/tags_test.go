package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskplanner/internal/apperr"
	"taskplanner/internal/models"
	"taskplanner/internal/services"
)

func TestCreateTag(t *testing.T) {
	db := newTaskDB(t)

	tag := mustCreateTag(t, db, alice, "work")
	assert.NotZero(t, tag.ID)
	assert.Equal(t, alice, tag.AuthorID)
	assert.Equal(t, "work", tag.Name)
}

func TestCreateTagValidation(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	_, err := svc.Create(db, alice, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(db, alice, strings.Repeat("x", 101))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListTags(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	for i := 0; i < 5; i++ {
		mustCreateTag(t, db, alice, fmt.Sprintf("tag %d", i))
	}
	mustCreateTag(t, db, bob, "bob's tag")

	tags, err := svc.List(db, alice, 0, 100)
	require.NoError(t, err)
	assert.Len(t, tags, 5)

	page, err := svc.List(db, alice, 3, 100)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestGetTagScoped(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	tag := mustCreateTag(t, db, bob, "bob's tag")

	_, err := svc.Get(db, alice, tag.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	found, err := svc.Get(db, bob, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob's tag", found.Name)
}

func TestRenameTag(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	tag := mustCreateTag(t, db, alice, "work")

	renamed, err := svc.Rename(db, alice, tag.ID, "office")
	require.NoError(t, err)
	assert.Equal(t, "office", renamed.Name)

	_, err = svc.Rename(db, alice, 999, "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// Deleting a tag removes association rows but leaves the tasks.
func TestDeleteTagCascadesAssociations(t *testing.T) {
	db := newTaskDB(t)
	tagSvc := services.NewTagService()
	taskSvc := services.NewTaskService()

	task := mustCreateTask(t, db, alice, services.TaskCreateRequest{Title: "t"})
	tag := mustCreateTag(t, db, alice, "work")
	_, err := taskSvc.ReplaceTags(db, alice, task.ID, []uint{tag.ID})
	require.NoError(t, err)

	require.NoError(t, tagSvc.Delete(db, alice, tag.ID))

	var count int64
	require.NoError(t, db.Table("task_tags").Where("tag_id = ?", tag.ID).Count(&count).Error)
	assert.Zero(t, count)

	var stored models.Task
	assert.NoError(t, db.First(&stored, task.ID).Error, "the task survives")

	err = tagSvc.Delete(db, alice, tag.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSearchTagsByName(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	mustCreateTag(t, db, alice, "Work")
	mustCreateTag(t, db, alice, "homework")
	mustCreateTag(t, db, alice, "garden")
	mustCreateTag(t, db, bob, "workshop")

	tags, err := svc.SearchByName(db, alice, "work")
	require.NoError(t, err)
	assert.Len(t, tags, 2, "substring, case-insensitive, author-scoped")
}

func TestSearchTagsCapped(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	for i := 0; i < 12; i++ {
		mustCreateTag(t, db, alice, fmt.Sprintf("sprint-%d", i))
	}

	tags, err := svc.SearchByName(db, alice, "sprint")
	require.NoError(t, err)
	assert.Len(t, tags, 10)
}

func TestTasksForTag(t *testing.T) {
	db := newTaskDB(t)
	tagSvc := services.NewTagService()
	taskSvc := services.NewTaskService()

	tag := mustCreateTag(t, db, alice, "work")
	open := mustCreateTask(t, db, alice, services.TaskCreateRequest{Title: "open"})
	done := mustCreateTask(t, db, alice, services.TaskCreateRequest{Title: "done"})
	mustCreateTask(t, db, alice, services.TaskCreateRequest{Title: "untagged"})

	for _, id := range []uint{open.ID, done.ID} {
		_, err := taskSvc.ReplaceTags(db, alice, id, []uint{tag.ID})
		require.NoError(t, err)
	}
	_, err := taskSvc.Complete(db, alice, done.ID)
	require.NoError(t, err)

	all, err := tagSvc.TasksFor(db, alice, tag.ID, nil, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := tagSvc.TasksFor(db, alice, tag.ID, boolPtr(false), 0, 100)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)
}

func TestTasksForMissingTag(t *testing.T) {
	db := newTaskDB(t)
	svc := services.NewTagService()

	tasks, err := svc.TasksFor(db, alice, 999, nil, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
