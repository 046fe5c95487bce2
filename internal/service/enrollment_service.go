package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/pkg/logger"
	"course_hub_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientError carries a caller-facing status and message through the
// validation pipeline. Anything else bubbling out of the service is a server
// error.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

func NewClientError(status int, message string) *ClientError {
	return &ClientError{Status: status, Message: message}
}

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	LessonRepo     *repository.LessonRepository
	ProgressRepo   *repository.LessonProgressRepository
	DB             *gorm.DB
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	progressRepo *repository.LessonProgressRepository,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		LessonRepo:     lessonRepo,
		ProgressRepo:   progressRepo,
		DB:             db,
	}
}

// EnrollRequest carries the identifiers of an enrollment attempt.
type EnrollRequest struct {
	UserID   uint `json:"userId"`
	CourseID uint `json:"courseId"`
}

// EnrollResult echoes the identifiers of a successful enrollment.
type EnrollResult struct {
	EnrollmentID uint `json:"enrollmentId"`
	UserID       uint `json:"userId"`
	CourseID     uint `json:"courseId"`
}

// Enroll validates the request step by step: course id present, course exists,
// user id present, not already enrolled. On success the enrollment row is
// created and the course counter incremented in one transaction.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*EnrollResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "enrollment.create")
	defer span.End()

	if req.CourseID == 0 {
		return nil, NewClientError(http.StatusBadRequest, "Course ID is required.")
	}

	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewClientError(http.StatusNotFound, fmt.Sprintf("Course with id %d not found", req.CourseID))
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("course.title", course.Title),
		attribute.String("course.level", string(course.Level)),
		attribute.Int("course.instructor_id", int(course.InstructorID)),
	)
	if course.Category != nil {
		span.SetAttributes(attribute.String("course.category", course.Category.Name))
	}

	if req.UserID == 0 {
		// The missing-user case is a client error just like the missing-course
		// case.
		return nil, NewClientError(http.StatusBadRequest, "User ID is required.")
	}

	enrolled, err := s.EnrollmentRepo.ExistsByUserAndCourse(req.UserID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, NewClientError(http.StatusConflict, "User already enrolled in this course")
	}

	now := time.Now()
	enrollment := &model.Enrollment{
		UserID:         req.UserID,
		CourseID:       req.CourseID,
		Progress:       0,
		EnrolledAt:     now,
		LastAccessedAt: now,
	}

	if err := s.EnrollmentRepo.CreateWithCounter(enrollment); err != nil {
		return nil, err
	}

	logger.Log.Info("user enrolled",
		zap.Uint("userId", req.UserID),
		zap.Uint("courseId", req.CourseID),
		zap.String("courseTitle", course.Title),
	)

	return &EnrollResult{
		EnrollmentID: enrollment.ID,
		UserID:       req.UserID,
		CourseID:     req.CourseID,
	}, nil
}

// GetByUser lists a user's enrollments with their courses and instructors,
// enrollment date ascending.
func (s *EnrollmentService) GetByUser(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.FindByUserID(userID)
}

// EnrollmentDetail is a single enrollment merged with its course, lesson list
// and the freshly computed progress.
type EnrollmentDetail struct {
	model.Enrollment
	Lessons            []model.Lesson `json:"lessons"`
	CompletedLessonIDs []uint         `json:"completedLessonIds"`
}

// GetWithProgress loads one enrollment, recomputes its completion percentage
// from the lesson progress rows and persists the value when it drifted. The
// read and the write-back share one transaction so a progress update landing
// in between cannot be clobbered with a stale percentage.
func (s *EnrollmentService) GetWithProgress(ctx context.Context, id uint) (*EnrollmentDetail, error) {
	_, span := tracing.Tracer.Start(ctx, "enrollment.get_with_progress")
	defer span.End()

	var detail *EnrollmentDetail
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollmentRepo := &repository.EnrollmentRepository{DB: tx}
		lessonRepo := &repository.LessonRepository{DB: tx}
		progressRepo := &repository.LessonProgressRepository{DB: tx}

		enrollment, err := enrollmentRepo.FindByID(id)
		if err != nil {
			return err
		}

		lessons, err := lessonRepo.FindByCourseID(enrollment.CourseID)
		if err != nil {
			return err
		}

		rows, err := progressRepo.FindByEnrollment(enrollment.ID, enrollment.UserID)
		if err != nil {
			return err
		}

		completedIDs := make([]uint, 0, len(rows))
		for _, row := range rows {
			if row.CompletedAt != nil {
				completedIDs = append(completedIDs, row.LessonID)
			}
		}

		progress := ComputeProgress(len(completedIDs), len(lessons))
		if progress != enrollment.Progress {
			if err := enrollmentRepo.UpdateProgress(enrollment.ID, progress); err != nil {
				return err
			}
			enrollment.Progress = progress
		}

		detail = &EnrollmentDetail{
			Enrollment:         *enrollment,
			Lessons:            lessons,
			CompletedLessonIDs: completedIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("enrollment.progress", detail.Progress))
	return detail, nil
}

// LessonProgressEntry is one row of the progress report: every lesson of the
// course appears, whether or not it has been started.
type LessonProgressEntry struct {
	LessonID     uint       `json:"lessonId"`
	Title        string     `json:"title"`
	Order        int        `json:"order"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
	TimeSpent    int        `json:"timeSpent"`
	LastPosition int        `json:"lastPosition"`
}

type ProgressDetail struct {
	EnrollmentID       uint                  `json:"enrollmentId"`
	CourseID           uint                  `json:"courseId"`
	TotalLessons       int                   `json:"totalLessons"`
	CompletedLessons   int                   `json:"completedLessons"`
	TotalTimeSpent     int                   `json:"totalTimeSpent"`
	ProgressPercentage int                   `json:"progressPercentage"`
	Lessons            []LessonProgressEntry `json:"lessons"`
}

// GetProgressDetail left-joins the course's lessons against the enrollment's
// progress rows, preserving lesson order and defaulting untouched lessons.
func (s *EnrollmentService) GetProgressDetail(ctx context.Context, id uint) (*ProgressDetail, error) {
	_, span := tracing.Tracer.Start(ctx, "enrollment.progress_detail")
	defer span.End()

	enrollment, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	lessons, err := s.LessonRepo.FindByCourseID(enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	rows, err := s.ProgressRepo.FindByEnrollment(enrollment.ID, enrollment.UserID)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[uint]*model.LessonProgress, len(rows))
	for i := range rows {
		byLesson[rows[i].LessonID] = &rows[i]
	}

	detail := &ProgressDetail{
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonProgressEntry, 0, len(lessons)),
	}

	for _, lesson := range lessons {
		entry := LessonProgressEntry{
			LessonID: lesson.ID,
			Title:    lesson.Title,
			Order:    lesson.Order,
		}
		if row, ok := byLesson[lesson.ID]; ok {
			entry.Completed = row.CompletedAt != nil
			entry.CompletedAt = row.CompletedAt
			entry.TimeSpent = row.TimeSpent
			entry.LastPosition = row.LastPosition

			detail.TotalTimeSpent += row.TimeSpent
			if entry.Completed {
				detail.CompletedLessons++
			}
		}
		detail.Lessons = append(detail.Lessons, entry)
	}

	detail.ProgressPercentage = ComputeProgress(detail.CompletedLessons, detail.TotalLessons)
	return detail, nil
}

// UpdateEnrollmentRequest is a partial patch; zero values are skipped.
type UpdateEnrollmentRequest struct {
	Progress *int `json:"progress"`
}

func (s *EnrollmentService) UpdateEnrollment(id uint, req UpdateEnrollmentRequest) (*model.Enrollment, error) {
	if _, err := s.EnrollmentRepo.FindByID(id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Progress != nil {
		fields["progress"] = *req.Progress
	}

	if err := s.EnrollmentRepo.UpdateFields(id, fields); err != nil {
		return nil, err
	}

	return s.EnrollmentRepo.FindByID(id)
}

// Unenroll deletes the enrollment and decrements the course counter in one
// transaction.
func (s *EnrollmentService) Unenroll(ctx context.Context, id uint) error {
	_, span := tracing.Tracer.Start(ctx, "enrollment.unenroll")
	defer span.End()

	enrollment, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.EnrollmentRepo.DeleteWithCounter(enrollment); err != nil {
		return err
	}

	logger.Log.Info("user unenrolled",
		zap.Uint("enrollmentId", id),
		zap.Uint("courseId", enrollment.CourseID),
	)
	return nil
}

// LessonProgressRequest updates a user's consumption state for one lesson.
type LessonProgressRequest struct {
	TimeSpent    int  `json:"timeSpent"`    // seconds to add
	LastPosition int  `json:"lastPosition"` // absolute resume offset
	Completed    bool `json:"completed"`
}

// UpdateLessonProgress upserts the (enrollment, lesson) progress row and
// refreshes the enrollment's denormalized percentage, atomically: either both
// rows land or neither does.
func (s *EnrollmentService) UpdateLessonProgress(id, lessonID uint, req LessonProgressRequest) (*model.LessonProgress, error) {
	var row *model.LessonProgress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollmentRepo := &repository.EnrollmentRepository{DB: tx}
		lessonRepo := &repository.LessonRepository{DB: tx}
		progressRepo := &repository.LessonProgressRepository{DB: tx}

		enrollment, err := enrollmentRepo.FindByID(id)
		if err != nil {
			return err
		}

		lesson, err := lessonRepo.FindByID(lessonID)
		if err != nil {
			return err
		}
		if lesson.CourseID != enrollment.CourseID {
			return NewClientError(http.StatusBadRequest, "Lesson does not belong to the enrolled course")
		}

		row, err = progressRepo.FindByEnrollmentAndLesson(enrollment.ID, lessonID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			row = &model.LessonProgress{
				EnrollmentID: enrollment.ID,
				LessonID:     lessonID,
				UserID:       enrollment.UserID,
			}
			if err := progressRepo.Create(row); err != nil {
				return err
			}
		}

		row.TimeSpent += req.TimeSpent
		if req.LastPosition > 0 {
			row.LastPosition = req.LastPosition
		}
		if req.Completed && row.CompletedAt == nil {
			now := time.Now()
			row.CompletedAt = &now
		}

		if err := progressRepo.Update(row); err != nil {
			return err
		}

		// Keep the denormalized percentage and access stamp fresh.
		completed, err := progressRepo.CountCompleted(enrollment.ID, enrollment.UserID)
		if err != nil {
			return err
		}
		total, err := lessonRepo.CountByCourseID(enrollment.CourseID)
		if err != nil {
			return err
		}
		return enrollmentRepo.UpdateFields(enrollment.ID, map[string]interface{}{
			"progress": ComputeProgress(int(completed), int(total)),
		})
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ComputeProgress returns round(100 * completed / total); zero lessons means
// zero progress.
func ComputeProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
