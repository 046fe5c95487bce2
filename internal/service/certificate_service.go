package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"
	"course_hub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CertificateService struct {
	CertificateRepo *repository.CertificateRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	UserRepo        *repository.UserRepository
	Storage         *StorageService
}

func NewCertificateService(
	certificateRepo *repository.CertificateRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	storage *StorageService,
) *CertificateService {
	return &CertificateService{
		CertificateRepo: certificateRepo,
		EnrollmentRepo:  enrollmentRepo,
		UserRepo:        userRepo,
		Storage:         storage,
	}
}

// IssueCertificate creates a certificate for a fully completed enrollment and
// stores the rendered document through the storage provider.
func (s *CertificateService) IssueCertificate(ctx context.Context, enrollmentID uint) (*model.Certificate, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	if enrollment.Progress < 100 {
		return nil, util.ErrCourseNotCompleted
	}

	if _, err := s.CertificateRepo.FindByEnrollmentID(enrollmentID); err == nil {
		return nil, util.ErrCertificateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.UserRepo.FindByID(enrollment.UserID)
	if err != nil {
		return nil, err
	}

	serial := model.GenerateUUID()
	issuedAt := time.Now()

	courseTitle := ""
	if enrollment.Course != nil {
		courseTitle = enrollment.Course.Title
	}
	document := fmt.Sprintf(
		"Certificate of Completion\n\nThis certifies that %s has completed the course %q.\n\nSerial: %s\nIssued: %s\n",
		user.Name, courseTitle, serial, issuedAt.Format(util.DateFormat),
	)

	filename := fmt.Sprintf("certificates/%s.txt", serial)
	fileURL, err := s.Storage.Upload(ctx, filename, strings.NewReader(document), int64(len(document)), "text/plain")
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		EnrollmentID: enrollment.ID,
		SerialNumber: serial,
		IssuedAt:     issuedAt,
		FileURL:      fileURL,
	}
	if err := s.CertificateRepo.Create(cert); err != nil {
		return nil, err
	}

	logger.Log.Info("certificate issued",
		zap.Uint("enrollmentId", enrollment.ID),
		zap.String("serial", serial),
	)
	return cert, nil
}

func (s *CertificateService) GetUserCertificates(userID uint) ([]model.Certificate, error) {
	return s.CertificateRepo.FindByUserID(userID)
}
