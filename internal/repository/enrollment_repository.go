package repository

import (
	"course_hub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// CreateWithCounter inserts the enrollment and bumps the owning course's
// enrollment_count in the same transaction.
func (r *EnrollmentRepository) CreateWithCounter(enrollment *model.Enrollment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Course{}).
			Where("id = ?", enrollment.CourseID).
			Update("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).
			Error
	})
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Preload("Course").Preload("Course.Instructor").Preload("Course.Category").
		First(&enrollment, id).Error
	return &enrollment, err
}

// FindByUserID lists a user's enrollments joined with their course and the
// instructor, oldest first.
func (r *EnrollmentRepository) FindByUserID(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).
		Preload("Course").Preload("Course.Instructor").Preload("Course.Category").
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ExistsByUserAndCourse(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// UpdateFields applies a partial patch and stamps last_accessed_at.
func (r *EnrollmentRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	fields["last_accessed_at"] = time.Now()
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", id).Updates(fields).Error
}

func (r *EnrollmentRepository) UpdateProgress(id uint, progress int) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("id = ?", id).
		Update("progress", progress).
		Error
}

// DeleteWithCounter removes the enrollment and decrements the owning course's
// enrollment_count atomically.
func (r *EnrollmentRepository) DeleteWithCounter(enrollment *model.Enrollment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Enrollment{}, enrollment.ID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Course{}).
			Where("id = ?", enrollment.CourseID).
			Update("enrollment_count", gorm.Expr("enrollment_count - ?", 1)).
			Error
	})
}
