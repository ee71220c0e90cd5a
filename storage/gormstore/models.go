package gormstore

import (
	"time"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// userRecord is the users table row.
type userRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Identity  string `gorm:"column:identity_value;size:64;not null;uniqueIndex"`
	CreatedAt time.Time
}

// TableName returns the table name for userRecord.
func (userRecord) TableName() string {
	return "users"
}

func (r userRecord) toDomain() user.User {
	return user.User{ID: r.ID, Identity: r.Identity}
}

// taskRecord is the tasks table row. Deleting the creator removes its tasks.
type taskRecord struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Text      string     `gorm:"not null"`
	Done      bool       `gorm:"not null;default:false"`
	UserID    int64      `gorm:"not null;index"`
	Creator   userRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName returns the table name for taskRecord.
func (taskRecord) TableName() string {
	return "tasks"
}

func (r taskRecord) toDomain() task.Task {
	return task.Task{
		ID:      r.ID,
		Text:    r.Text,
		Done:    r.Done,
		Creator: r.Creator.toDomain(),
	}
}
