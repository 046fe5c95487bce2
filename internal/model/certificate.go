package model

import "time"

// Certificate is issued when an enrollment reaches 100% progress.
// swagger:model Certificate
type Certificate struct {
	BaseModel
	UserID       uint      `gorm:"index;not null" json:"userId"`
	CourseID     uint      `gorm:"index;not null" json:"courseId"`
	Course       *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	EnrollmentID uint      `gorm:"uniqueIndex;not null" json:"enrollmentId"`
	SerialNumber string    `gorm:"size:36;unique;not null" json:"serialNumber"`
	IssuedAt     time.Time `json:"issuedAt"`
	FileURL      string    `gorm:"size:255" json:"fileUrl"`
}

func (Certificate) TableName() string {
	return "certificates"
}
