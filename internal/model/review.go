package model

// swagger:model Review
type Review struct {
	BaseModel
	UserID   uint    `gorm:"uniqueIndex:idx_user_course_review;not null" json:"userId"`
	User     *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CourseID uint    `gorm:"uniqueIndex:idx_user_course_review;not null" json:"courseId"`
	Course   *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Rating   int     `gorm:"not null" json:"rating"` // 1-5
	Comment  string  `gorm:"size:1000" json:"comment"`
}

func (Review) TableName() string {
	return "reviews"
}
