package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"
	"course_hub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	courseCacheTTL       = 5 * time.Minute
	courseCacheKeyPrefix = "course:"
)

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	CategoryRepo *repository.CategoryRepository
	ReviewRepo   *repository.ReviewRepository
	Redis        *redis.Client
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	categoryRepo *repository.CategoryRepository,
	reviewRepo *repository.ReviewRepository,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		CategoryRepo: categoryRepo,
		ReviewRepo:   reviewRepo,
		Redis:        rdb,
	}
}

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=5000"`
	CategoryID  uint   `json:"categoryId" binding:"required"`
	Level       string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	CoverURL    string `json:"coverUrl" binding:"omitempty,max=255"`
	Published   bool   `json:"published"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CreateCourseRequest) (*model.Course, error) {
	if _, err := s.CategoryRepo.FindByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}

	level := model.LevelBeginner
	if req.Level != "" {
		level = model.CourseLevel(req.Level)
	}

	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Level:        level,
		InstructorID: instructorID,
		CoverURL:     req.CoverURL,
		Published:    req.Published,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

// CourseDetail merges a course with its review aggregate.
type CourseDetail struct {
	model.Course
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// GetCourse reads through the redis cache; mutations invalidate the key.
func (s *CourseService) GetCourse(ctx context.Context, id uint) (*CourseDetail, error) {
	key := fmt.Sprintf("%s%d", courseCacheKeyPrefix, id)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var detail CourseDetail
			if err := json.Unmarshal([]byte(cached), &detail); err == nil {
				return &detail, nil
			}
		}
	}

	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	reviews, err := s.ReviewRepo.FindByCourseID(id)
	if err != nil {
		return nil, err
	}
	avg, err := s.ReviewRepo.AverageRating(id)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{
		Course:        *course,
		AverageRating: avg,
		ReviewCount:   len(reviews),
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(detail); err == nil {
			if err := s.Redis.Set(ctx, key, payload, courseCacheTTL).Err(); err != nil {
				logger.Log.Warn("course cache write failed", zap.Error(err))
			}
		}
	}

	return detail, nil
}

func (s *CourseService) ListCourses(page, limit int, categoryID uint, level string) ([]model.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.CourseRepo.FindAll(page, limit, categoryID, model.CourseLevel(level))
}

type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"omitempty,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	CategoryID  uint   `json:"categoryId"`
	Level       string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	CoverURL    string `json:"coverUrl" binding:"omitempty,max=255"`
	Published   *bool  `json:"published"`
}

func (s *CourseService) UpdateCourse(ctx context.Context, id uint, req UpdateCourseRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	if req.CategoryID > 0 {
		if _, err := s.CategoryRepo.FindByID(req.CategoryID); err != nil {
			return nil, util.ErrCategoryNotFound
		}
		course.CategoryID = req.CategoryID
	}
	if req.Level != "" {
		course.Level = model.CourseLevel(req.Level)
	}
	if req.CoverURL != "" {
		course.CoverURL = req.CoverURL
	}
	if req.Published != nil {
		course.Published = *req.Published
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return course, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.CourseRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	if err := s.CourseRepo.Delete(id); err != nil {
		return err
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *CourseService) invalidateCache(ctx context.Context, id uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("%s%d", courseCacheKeyPrefix, id)
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		logger.Log.Warn("course cache invalidation failed", zap.Error(err))
	}
}
