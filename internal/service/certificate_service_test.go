package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"course_hub_backend/internal/config"
	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"

	"gorm.io/gorm"
)

func newCertificateService(t *testing.T, db *gorm.DB) *CertificateService {
	t.Helper()
	storage := &StorageService{Provider: &LocalStorageProvider{
		Config: &config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}}
	return NewCertificateService(
		repository.NewCertificateRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewUserRepository(db),
		storage,
	)
}

func TestIssueCertificateRequiresCompletion(t *testing.T) {
	db := newTestDB(t)
	enrollSvc := newEnrollmentService(db)
	certSvc := newCertificateService(t, db)

	user := seedUser(t, db, "kim")
	course := seedCourse(t, db, "Certificates 101", 2)
	result := enroll(t, enrollSvc, user.ID, course.ID)

	_, err := certSvc.IssueCertificate(context.Background(), result.EnrollmentID)
	if !errors.Is(err, util.ErrCourseNotCompleted) {
		t.Fatalf("expected ErrCourseNotCompleted at 0%%, got %v", err)
	}

	_, err = certSvc.IssueCertificate(context.Background(), 9999)
	if !errors.Is(err, util.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}

func TestIssueCertificateOncePerEnrollment(t *testing.T) {
	db := newTestDB(t)
	enrollSvc := newEnrollmentService(db)
	certSvc := newCertificateService(t, db)

	user := seedUser(t, db, "lena")
	course := seedCourse(t, db, "Finish Line", 1)
	result := enroll(t, enrollSvc, user.ID, course.ID)

	var lesson model.Lesson
	if err := db.Where("course_id = ?", course.ID).First(&lesson).Error; err != nil {
		t.Fatalf("load lesson: %v", err)
	}
	if _, err := enrollSvc.UpdateLessonProgress(result.EnrollmentID, lesson.ID, LessonProgressRequest{Completed: true}); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}

	cert, err := certSvc.IssueCertificate(context.Background(), result.EnrollmentID)
	if err != nil {
		t.Fatalf("issue certificate: %v", err)
	}
	if cert.SerialNumber == "" {
		t.Fatal("expected a serial number")
	}
	if cert.FileURL == "" {
		t.Fatal("expected a stored document URL")
	}

	// The rendered document must exist on disk.
	local := certSvc.Storage.Provider.(*LocalStorageProvider)
	path := filepath.Join(local.Config.LocalPath, "certificates", cert.SerialNumber+".txt")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("certificate document missing: %v", err)
	}

	_, err = certSvc.IssueCertificate(context.Background(), result.EnrollmentID)
	if !errors.Is(err, util.ErrCertificateExists) {
		t.Fatalf("expected ErrCertificateExists on reissue, got %v", err)
	}
}
