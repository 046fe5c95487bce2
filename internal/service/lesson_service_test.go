package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"course_hub_backend/internal/config"
	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"

	"gorm.io/gorm"
)

func newLessonService(t *testing.T, db *gorm.DB) (*LessonService, string) {
	t.Helper()
	dir := t.TempDir()
	storage := &StorageService{Provider: &LocalStorageProvider{
		Config: &config.StorageConfig{Type: "local", LocalPath: dir},
	}}
	return NewLessonService(
		repository.NewLessonRepository(db),
		repository.NewCourseRepository(db),
		storage,
	), dir
}

func uploadHeader(t *testing.T, name string, payload []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("video", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	return form.File["video"][0]
}

func TestAttachVideoStoresFileAndToleratesProbeFailure(t *testing.T) {
	db := newTestDB(t)
	svc, dir := newLessonService(t, db)
	course := seedCourse(t, db, "Video Editing", 1)

	var lesson model.Lesson
	if err := db.Where("course_id = ?", course.ID).First(&lesson).Error; err != nil {
		t.Fatalf("load lesson: %v", err)
	}

	// Not a decodable video; the duration probe and the thumbnail grab both
	// fail without failing the upload.
	header := uploadHeader(t, "intro.mp4", []byte("not really a video"))
	updated, err := svc.AttachVideo(context.Background(), lesson.ID, header)
	if err != nil {
		t.Fatalf("attach video: %v", err)
	}
	if updated.VideoURL == "" {
		t.Fatal("expected a stored video URL")
	}
	if updated.ThumbnailURL != "" {
		t.Fatalf("expected no thumbnail for an undecodable video, got %q", updated.ThumbnailURL)
	}
	if updated.Duration != 0 {
		t.Fatalf("expected zero duration for an undecodable video, got %d", updated.Duration)
	}

	rel := strings.TrimPrefix(updated.VideoURL, "/uploads/")
	if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
		t.Fatalf("expected stored video file: %v", err)
	}
}

func TestAttachVideoRejectsUnsupportedExtension(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newLessonService(t, db)
	course := seedCourse(t, db, "Formats", 1)

	var lesson model.Lesson
	if err := db.Where("course_id = ?", course.ID).First(&lesson).Error; err != nil {
		t.Fatalf("load lesson: %v", err)
	}

	header := uploadHeader(t, "notes.txt", []byte("plain text"))
	if _, err := svc.AttachVideo(context.Background(), lesson.ID, header); err == nil {
		t.Fatal("expected an error for a non-video extension")
	}
}
