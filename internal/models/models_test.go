package models_test

import (
	"testing"
	"time"

	"taskplanner/internal/models"
)

func TestTask_TagIDs(t *testing.T) {
	task := models.Task{
		ID:       1,
		AuthorID: 7,
		Title:    "Test Task",
		Tags: []models.Tag{
			{ID: 3, AuthorID: 7, Name: "work"},
			{ID: 5, AuthorID: 7, Name: "urgent"},
		},
	}

	ids := task.TagIDs()
	if len(ids) != 2 {
		t.Fatalf("Expected 2 tag ids, got %d", len(ids))
	}
	if ids[0] != 3 || ids[1] != 5 {
		t.Errorf("Expected [3 5], got %v", ids)
	}
}

func TestTask_TagIDsEmpty(t *testing.T) {
	task := models.Task{ID: 1, Title: "Test Task"}

	ids := task.TagIDs()
	if ids == nil {
		t.Error("Expected a non-nil slice for a task without tags")
	}
	if len(ids) != 0 {
		t.Errorf("Expected no tag ids, got %v", ids)
	}
}

func TestTask_Fields(t *testing.T) {
	deadline := time.Now().Add(24 * time.Hour).UTC()
	task := models.Task{
		ID:          1,
		AuthorID:    7,
		Title:       "Test Task",
		Description: "Test Description",
		Priority:    3,
		Deadline:    &deadline,
	}

	if task.IsCompleted {
		t.Error("Expected new task to be incomplete")
	}
	if task.Deadline == nil || !task.Deadline.Equal(deadline) {
		t.Errorf("Unexpected deadline %v", task.Deadline)
	}
}
