package repository

import (
	"course_hub_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.DB.Create(cert).Error
}

func (r *CertificateRepository) FindByUserID(userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).
		Preload("Course").
		Order("issued_at DESC").
		Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) FindByEnrollmentID(enrollmentID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("enrollment_id = ?", enrollmentID).First(&cert).Error
	return &cert, err
}
