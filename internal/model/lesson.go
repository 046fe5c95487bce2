package model

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID     uint    `gorm:"index;not null" json:"courseId"`
	Course       *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Title        string  `gorm:"size:255;not null" json:"title"`
	Order        int     `gorm:"column:lesson_order;index" json:"order"` // sequence position within the course
	Duration     int     `gorm:"default:0" json:"duration"`              // seconds
	VideoURL     string  `gorm:"size:255" json:"videoUrl"`
	ThumbnailURL string  `gorm:"size:255" json:"thumbnailUrl"`
	Content      string  `gorm:"type:text" json:"content"`
}

func (Lesson) TableName() string {
	return "lessons"
}
