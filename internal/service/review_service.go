package service

import (
	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type ReviewService struct {
	ReviewRepo     *repository.ReviewRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *ReviewService {
	return &ReviewService{
		ReviewRepo:     reviewRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

type CreateReviewRequest struct {
	CourseID uint   `json:"courseId" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"omitempty,max=1000"`
}

// CreateReview requires the reviewer to be enrolled and allows one review per
// (user, course).
func (s *ReviewService) CreateReview(userID uint, req CreateReviewRequest) (*model.Review, error) {
	if _, err := s.CourseRepo.FindByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.ExistsByUserAndCourse(userID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrEnrollmentNotFound
	}

	exists, err := s.ReviewRepo.ExistsByUserAndCourse(userID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrAlreadyReviewed
	}

	review := &model.Review{
		UserID:   userID,
		CourseID: req.CourseID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.ReviewRepo.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) GetCourseReviews(courseID uint) ([]model.Review, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return s.ReviewRepo.FindByCourseID(courseID)
}

func (s *ReviewService) DeleteReview(id uint) error {
	return s.ReviewRepo.Delete(id)
}
