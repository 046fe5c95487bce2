package model

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title           string      `gorm:"size:255;not null" json:"title"`
	Description     string      `gorm:"type:text" json:"description"`
	CategoryID      uint        `gorm:"index" json:"categoryId"`
	Category        *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Level           CourseLevel `gorm:"type:varchar(20);default:'beginner'" json:"level"`
	InstructorID    uint        `gorm:"index" json:"instructorId"`
	Instructor      *User       `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	CoverURL        string      `gorm:"size:255" json:"coverUrl"`
	Published       bool        `gorm:"default:false" json:"published"`
	EnrollmentCount int         `gorm:"default:0" json:"enrollmentCount"` // denormalized counter
}

func (Course) TableName() string {
	return "courses"
}
