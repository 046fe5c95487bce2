package repository

import (
	"course_hub_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) Create(review *model.Review) error {
	return r.DB.Create(review).Error
}

func (r *ReviewRepository) FindByCourseID(courseID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.DB.Where("course_id = ?", courseID).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) ExistsByUserAndCourse(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Review{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepository) AverageRating(courseID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&model.Review{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *ReviewRepository) Delete(id uint) error {
	res := r.DB.Delete(&model.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
