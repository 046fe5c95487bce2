package repository

import (
	"course_hub_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Instructor").Preload("Category").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindAll(page, limit int, categoryID uint, level model.CourseLevel) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	q := r.DB.Model(&model.Course{}).Where("published = ?", true)
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if level != "" {
		q = q.Where("level = ?", level)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Instructor").Preload("Category").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}
