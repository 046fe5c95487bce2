package service

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newEnrollmentService(db *gorm.DB) *EnrollmentService {
	return NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewLessonProgressRepository(db),
		db,
	)
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	user := &model.User{
		Name:      name,
		Email:     name + "@example.com",
		Password:  "hashed",
		Role:      model.Student,
		LastLogin: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, title string, lessonCount int) *model.Course {
	t.Helper()

	instructor := seedUser(t, db, "instructor-"+title)
	category := &model.Category{Name: "cat-" + title, Slug: "cat-" + title}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	course := &model.Course{
		Title:        title,
		CategoryID:   category.ID,
		InstructorID: instructor.ID,
		Level:        model.LevelBeginner,
		Published:    true,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	for i := 1; i <= lessonCount; i++ {
		lesson := &model.Lesson{
			CourseID: course.ID,
			Title:    fmt.Sprintf("%s lesson %d", title, i),
			Order:    i,
		}
		if err := db.Create(lesson).Error; err != nil {
			t.Fatalf("seed lesson: %v", err)
		}
	}
	return course
}

func enroll(t *testing.T, svc *EnrollmentService, userID, courseID uint) *EnrollResult {
	t.Helper()
	result, err := svc.Enroll(context.Background(), EnrollRequest{UserID: userID, CourseID: courseID})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	return result
}

func TestEnrollValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "alice")
	course := seedCourse(t, db, "Go Basics", 2)

	tests := []struct {
		name       string
		req        EnrollRequest
		wantStatus int
		wantMsg    string
	}{
		{"missing course", EnrollRequest{UserID: user.ID}, http.StatusBadRequest, "Course ID is required."},
		{"unknown course", EnrollRequest{UserID: user.ID, CourseID: 9999}, http.StatusNotFound, "Course with id 9999 not found"},
		{"missing user", EnrollRequest{CourseID: course.ID}, http.StatusBadRequest, "User ID is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enroll(context.Background(), tt.req)
			clientErr, ok := err.(*ClientError)
			if !ok {
				t.Fatalf("expected ClientError, got %v", err)
			}
			if clientErr.Status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", clientErr.Status, tt.wantStatus)
			}
			if clientErr.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", clientErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestEnrollIncrementsCounterAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "bob")
	course := seedCourse(t, db, "SQL Deep Dive", 3)

	result := enroll(t, svc, user.ID, course.ID)
	if result.EnrollmentID == 0 {
		t.Fatal("expected a persisted enrollment id")
	}

	var got model.Course
	if err := db.First(&got, course.ID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if got.EnrollmentCount != 1 {
		t.Fatalf("enrollment count = %d, want 1", got.EnrollmentCount)
	}

	_, err := svc.Enroll(context.Background(), EnrollRequest{UserID: user.ID, CourseID: course.ID})
	clientErr, ok := err.(*ClientError)
	if !ok || clientErr.Status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate enrollment, got %v", err)
	}
}

func TestGetWithProgressRecomputesAndPersists(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "carol")
	course := seedCourse(t, db, "Distributed Systems", 4)

	result := enroll(t, svc, user.ID, course.ID)

	var lessons []model.Lesson
	if err := db.Where("course_id = ?", course.ID).Order("lesson_order ASC").Find(&lessons).Error; err != nil {
		t.Fatalf("load lessons: %v", err)
	}

	// Complete 2 of 4 lessons.
	for _, lesson := range lessons[:2] {
		_, err := svc.UpdateLessonProgress(result.EnrollmentID, lesson.ID, LessonProgressRequest{
			TimeSpent: 120,
			Completed: true,
		})
		if err != nil {
			t.Fatalf("update lesson progress: %v", err)
		}
	}

	// Force a stale denormalized value to verify the lazy recompute.
	if err := db.Model(&model.Enrollment{}).Where("id = ?", result.EnrollmentID).
		Update("progress", 10).Error; err != nil {
		t.Fatalf("force stale progress: %v", err)
	}

	detail, err := svc.GetWithProgress(context.Background(), result.EnrollmentID)
	if err != nil {
		t.Fatalf("get with progress: %v", err)
	}
	if detail.Progress != 50 {
		t.Fatalf("progress = %d, want 50", detail.Progress)
	}
	if len(detail.CompletedLessonIDs) != 2 {
		t.Fatalf("completed lessons = %d, want 2", len(detail.CompletedLessonIDs))
	}

	// The recomputed value must have been written back.
	var stored model.Enrollment
	if err := db.First(&stored, result.EnrollmentID).Error; err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if stored.Progress != 50 {
		t.Fatalf("persisted progress = %d, want 50", stored.Progress)
	}
}

func TestGetWithProgressZeroLessons(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "dave")
	course := seedCourse(t, db, "Empty Course", 0)

	result := enroll(t, svc, user.ID, course.ID)

	detail, err := svc.GetWithProgress(context.Background(), result.EnrollmentID)
	if err != nil {
		t.Fatalf("get with progress: %v", err)
	}
	if detail.Progress != 0 {
		t.Fatalf("progress = %d, want 0 for a course without lessons", detail.Progress)
	}
}

func TestGetProgressDetailIncludesUntouchedLessons(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "erin")
	course := seedCourse(t, db, "Networking", 3)

	result := enroll(t, svc, user.ID, course.ID)

	var first model.Lesson
	if err := db.Where("course_id = ?", course.ID).Order("lesson_order ASC").First(&first).Error; err != nil {
		t.Fatalf("load first lesson: %v", err)
	}
	if _, err := svc.UpdateLessonProgress(result.EnrollmentID, first.ID, LessonProgressRequest{
		TimeSpent:    300,
		LastPosition: 45,
		Completed:    true,
	}); err != nil {
		t.Fatalf("update lesson progress: %v", err)
	}

	detail, err := svc.GetProgressDetail(context.Background(), result.EnrollmentID)
	if err != nil {
		t.Fatalf("progress detail: %v", err)
	}

	if detail.TotalLessons != 3 {
		t.Fatalf("total lessons = %d, want 3", detail.TotalLessons)
	}
	if len(detail.Lessons) != 3 {
		t.Fatalf("report rows = %d, want one per lesson", len(detail.Lessons))
	}
	if detail.CompletedLessons != 1 {
		t.Fatalf("completed = %d, want 1", detail.CompletedLessons)
	}
	if detail.TotalTimeSpent != 300 {
		t.Fatalf("total time = %d, want 300", detail.TotalTimeSpent)
	}
	if detail.ProgressPercentage != 33 {
		t.Fatalf("percentage = %d, want 33", detail.ProgressPercentage)
	}

	started := detail.Lessons[0]
	if !started.Completed || started.TimeSpent != 300 || started.LastPosition != 45 {
		t.Fatalf("first lesson entry not populated: %+v", started)
	}
	for _, entry := range detail.Lessons[1:] {
		if entry.Completed || entry.TimeSpent != 0 || entry.CompletedAt != nil {
			t.Fatalf("untouched lesson should carry defaults: %+v", entry)
		}
	}
}

func TestUpdateEnrollmentStampsLastAccessed(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "frank")
	course := seedCourse(t, db, "Compilers", 2)

	result := enroll(t, svc, user.ID, course.ID)

	// Age the access stamp so the update is observable.
	old := time.Now().Add(-time.Hour)
	if err := db.Model(&model.Enrollment{}).Where("id = ?", result.EnrollmentID).
		Update("last_accessed_at", old).Error; err != nil {
		t.Fatalf("age stamp: %v", err)
	}

	progress := 40
	updated, err := svc.UpdateEnrollment(result.EnrollmentID, UpdateEnrollmentRequest{Progress: &progress})
	if err != nil {
		t.Fatalf("update enrollment: %v", err)
	}
	if updated.Progress != 40 {
		t.Fatalf("progress = %d, want 40", updated.Progress)
	}
	if !updated.LastAccessedAt.After(old.Add(time.Minute)) {
		t.Fatalf("lastAccessedAt not refreshed: %v", updated.LastAccessedAt)
	}
}

func TestUnenrollDeletesAndDecrementsCounter(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "grace")
	course := seedCourse(t, db, "Databases", 2)

	result := enroll(t, svc, user.ID, course.ID)

	if err := svc.Unenroll(context.Background(), result.EnrollmentID); err != nil {
		t.Fatalf("unenroll: %v", err)
	}

	var got model.Course
	if err := db.First(&got, course.ID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if got.EnrollmentCount != 0 {
		t.Fatalf("enrollment count = %d, want 0", got.EnrollmentCount)
	}

	err := db.First(&model.Enrollment{}, result.EnrollmentID).Error
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected enrollment to be gone, got %v", err)
	}

	// A second unenroll of the same id must surface not-found.
	if err := svc.Unenroll(context.Background(), result.EnrollmentID); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdateLessonProgressRejectsForeignLesson(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "heidi")
	course := seedCourse(t, db, "Algorithms", 2)
	other := seedCourse(t, db, "Unrelated", 1)

	result := enroll(t, svc, user.ID, course.ID)

	var foreign model.Lesson
	if err := db.Where("course_id = ?", other.ID).First(&foreign).Error; err != nil {
		t.Fatalf("load foreign lesson: %v", err)
	}

	_, err := svc.UpdateLessonProgress(result.EnrollmentID, foreign.ID, LessonProgressRequest{Completed: true})
	clientErr, ok := err.(*ClientError)
	if !ok || clientErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for a lesson of another course, got %v", err)
	}
}

func TestUpdateLessonProgressSyncsDenormalizedProgress(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "ivan")
	course := seedCourse(t, db, "Databases", 2)

	result := enroll(t, svc, user.ID, course.ID)

	var lessons []model.Lesson
	if err := db.Where("course_id = ?", course.ID).Order("lesson_order ASC").Find(&lessons).Error; err != nil {
		t.Fatalf("load lessons: %v", err)
	}

	// Each call must leave the progress row and the enrollment percentage in
	// step with each other.
	row, err := svc.UpdateLessonProgress(result.EnrollmentID, lessons[0].ID, LessonProgressRequest{Completed: true, TimeSpent: 120})
	if err != nil {
		t.Fatalf("update lesson progress: %v", err)
	}
	if row.CompletedAt == nil || row.TimeSpent != 120 {
		t.Fatalf("unexpected progress row: %+v", row)
	}

	var enrollment model.Enrollment
	if err := db.First(&enrollment, result.EnrollmentID).Error; err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enrollment.Progress != 50 {
		t.Fatalf("expected progress 50 after one of two lessons, got %d", enrollment.Progress)
	}

	if _, err := svc.UpdateLessonProgress(result.EnrollmentID, lessons[1].ID, LessonProgressRequest{Completed: true}); err != nil {
		t.Fatalf("update second lesson: %v", err)
	}
	if err := db.First(&enrollment, result.EnrollmentID).Error; err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enrollment.Progress != 100 {
		t.Fatalf("expected progress 100 after both lessons, got %d", enrollment.Progress)
	}

	var rows int64
	if err := db.Model(&model.LessonProgress{}).Where("enrollment_id = ?", result.EnrollmentID).Count(&rows).Error; err != nil {
		t.Fatalf("count progress rows: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 progress rows, got %d", rows)
	}
}

func TestComputeProgressRounding(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{2, 4, 50},
		{4, 4, 100},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := ComputeProgress(tt.completed, tt.total); got != tt.want {
			t.Errorf("ComputeProgress(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}
