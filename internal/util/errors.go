package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrAlreadyEnrolled     = errors.New("user already enrolled in this course")
	ErrAlreadyReviewed     = errors.New("course already reviewed by this user")
	ErrCourseNotCompleted  = errors.New("course not completed")
	ErrCertificateExists   = errors.New("certificate already issued for this enrollment")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCertificateNotFound = errors.New("certificate not found")
)
