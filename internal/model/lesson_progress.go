package model

import "time"

// LessonProgress records a user's consumption of one lesson under one
// enrollment. One row per (enrollment, lesson).
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	EnrollmentID uint       `gorm:"uniqueIndex:idx_enrollment_lesson;not null" json:"enrollmentId"`
	LessonID     uint       `gorm:"uniqueIndex:idx_enrollment_lesson;not null" json:"lessonId"`
	UserID       uint       `gorm:"index;not null" json:"userId"`
	CompletedAt  *time.Time `json:"completedAt"`
	TimeSpent    int        `gorm:"default:0" json:"timeSpent"`    // accumulated seconds
	LastPosition int        `gorm:"default:0" json:"lastPosition"` // resume offset, seconds
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
