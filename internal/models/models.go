package models

import "time"

// User is owned by the auth service. The password hash never leaves
// the service.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task is owned by the task service. AuthorID is the id of the user
// resolved by the identity gateway; there is no cross-database foreign
// key, it is an opaque reference.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	AuthorID    uint       `json:"author_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Description string     `json:"description" gorm:"size:1000"`
	Priority    int        `json:"priority" gorm:"not null;default:3"`
	Deadline    *time.Time `json:"deadline"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	Tags        []Tag      `json:"-" gorm:"many2many:task_tags;constraint:OnDelete:CASCADE"`
}

type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	Tasks     []Task    `json:"-" gorm:"many2many:task_tags;constraint:OnDelete:CASCADE"`
}

// TagIDs returns the ids of the loaded tag associations.
func (t *Task) TagIDs() []uint {
	ids := make([]uint, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
