package repository

import (
	"course_hub_backend/internal/model"

	"gorm.io/gorm"
)

type LessonProgressRepository struct {
	DB *gorm.DB
}

func NewLessonProgressRepository(db *gorm.DB) *LessonProgressRepository {
	return &LessonProgressRepository{DB: db}
}

// FindByEnrollment returns the progress rows scoped to one enrollment and its
// owner, keyed by lesson on the caller side.
func (r *LessonProgressRepository) FindByEnrollment(enrollmentID, userID uint) ([]model.LessonProgress, error) {
	var rows []model.LessonProgress
	err := r.DB.Where("enrollment_id = ? AND user_id = ?", enrollmentID, userID).
		Find(&rows).Error
	return rows, err
}

func (r *LessonProgressRepository) FindByEnrollmentAndLesson(enrollmentID, lessonID uint) (*model.LessonProgress, error) {
	var row model.LessonProgress
	err := r.DB.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&row).Error
	return &row, err
}

func (r *LessonProgressRepository) Create(row *model.LessonProgress) error {
	return r.DB.Create(row).Error
}

func (r *LessonProgressRepository) Update(row *model.LessonProgress) error {
	return r.DB.Save(row).Error
}

func (r *LessonProgressRepository) CountCompleted(enrollmentID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("enrollment_id = ? AND user_id = ? AND completed_at IS NOT NULL", enrollmentID, userID).
		Count(&count).Error
	return count, err
}
