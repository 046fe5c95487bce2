package model

import "time"

// Enrollment links a user to a course and carries the denormalized completion
// percentage. Progress is recomputed lazily whenever the enrollment is read
// individually.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID         uint      `gorm:"index;not null" json:"userId"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CourseID       uint      `gorm:"index;not null" json:"courseId"`
	Course         *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Progress       int       `gorm:"default:0" json:"progress"` // 0-100
	EnrolledAt     time.Time `json:"enrolledAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
