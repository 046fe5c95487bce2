package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"
	"course_hub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LessonService struct {
	LessonRepo *repository.LessonRepository
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
}

func NewLessonService(
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	storage *StorageService,
) *LessonService {
	return &LessonService{
		LessonRepo: lessonRepo,
		CourseRepo: courseRepo,
		Storage:    storage,
	}
}

type CreateLessonRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Order   int    `json:"order" binding:"required,min=1"`
	Content string `json:"content"`
}

func (s *LessonService) CreateLesson(courseID uint, req CreateLessonRequest) (*model.Lesson, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Order:    req.Order,
		Content:  req.Content,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) GetLessons(courseID uint) ([]model.Lesson, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return s.LessonRepo.FindByCourseID(courseID)
}

type UpdateLessonRequest struct {
	Title   string `json:"title" binding:"omitempty,max=255"`
	Order   int    `json:"order" binding:"omitempty,min=1"`
	Content string `json:"content"`
}

func (s *LessonService) UpdateLesson(id uint, req UpdateLessonRequest) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Order > 0 {
		lesson.Order = req.Order
	}
	if req.Content != "" {
		lesson.Content = req.Content
	}

	return lesson, s.LessonRepo.Update(lesson)
}

func (s *LessonService) DeleteLesson(id uint) error {
	if _, err := s.LessonRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLessonNotFound
		}
		return err
	}
	return s.LessonRepo.Delete(id)
}

// AttachVideo stores an uploaded lesson video, probes its duration and links
// it to the lesson.
func (s *LessonService) AttachVideo(ctx context.Context, lessonID uint, header *multipart.FileHeader) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("unsupported video format %q", ext)
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Spool to a temp file so ffprobe can inspect it before upload.
	tmp, err := os.CreateTemp("", "lesson-video-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return nil, err
	}

	if info, err := util.GetVideoInfo(tmp.Name()); err == nil {
		lesson.Duration = int(math.Round(info.Duration))
	} else {
		logger.Log.Warn("video probe failed", zap.Error(err), zap.Uint("lessonId", lessonID))
	}

	filename := fmt.Sprintf("lessons/%d/%s%s", lesson.CourseID, model.GenerateUUID(), ext)
	url, err := s.Storage.Upload(ctx, filename, tmp, header.Size, util.MimeVideo+strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, err
	}

	lesson.VideoURL = url
	s.attachThumbnail(ctx, lesson, tmp.Name())

	return lesson, s.LessonRepo.Update(lesson)
}

// attachThumbnail grabs a frame from the uploaded video and stores it as the
// lesson cover. Like the duration probe, failures are logged and the upload
// proceeds without a cover.
func (s *LessonService) attachThumbnail(ctx context.Context, lesson *model.Lesson, videoPath string) {
	thumbPath := filepath.Join(os.TempDir(), model.GenerateUUID()+".jpg")
	if err := util.GenerateThumbnail(videoPath, thumbPath, "00:00:01"); err != nil {
		logger.Log.Warn("thumbnail generation failed", zap.Error(err), zap.Uint("lessonId", lesson.ID))
		return
	}
	defer os.Remove(thumbPath)

	thumb, err := os.Open(thumbPath)
	if err != nil {
		logger.Log.Warn("thumbnail open failed", zap.Error(err), zap.Uint("lessonId", lesson.ID))
		return
	}
	defer thumb.Close()

	stat, err := thumb.Stat()
	if err != nil {
		return
	}

	filename := fmt.Sprintf("lessons/%d/%s.jpg", lesson.CourseID, model.GenerateUUID())
	url, err := s.Storage.Upload(ctx, filename, thumb, stat.Size(), "image/jpeg")
	if err != nil {
		logger.Log.Warn("thumbnail upload failed", zap.Error(err), zap.Uint("lessonId", lesson.ID))
		return
	}
	lesson.ThumbnailURL = url
}
