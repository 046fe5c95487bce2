package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/service"
	"course_hub_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func setupEnrollmentRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:ctrltest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewLessonProgressRepository(db),
		db,
	)
	ctrl := NewEnrollmentController(svc)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/enrollments", ctrl.Enroll)
	api.GET("/enrollments/:id", ctrl.Get)
	api.DELETE("/enrollments/:id", ctrl.Unenroll)
	return router, db
}

func seedPublishedCourse(t *testing.T, db *gorm.DB) (*model.User, *model.Course) {
	t.Helper()

	user := &model.User{Name: "student", Email: "student@example.com", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	course := &model.Course{Title: "HTTP APIs", Published: true}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return user, course
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEnrollEndpointValidationBodies(t *testing.T) {
	router, db := setupEnrollmentRouter(t)
	user, _ := seedPublishedCourse(t, db)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{
			"missing course id",
			fmt.Sprintf(`{"userId": %d}`, user.ID),
			http.StatusBadRequest,
			`{"error":"Course ID is required."}`,
		},
		{
			"unknown course",
			fmt.Sprintf(`{"userId": %d, "courseId": 9999}`, user.ID),
			http.StatusNotFound,
			`{"error":"Course with id 9999 not found"}`,
		},
		{
			"missing user id",
			`{"courseId": 1}`,
			http.StatusBadRequest,
			`{"error":"User ID is required."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/enrollments", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Fatalf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestEnrollEndpointSuccessAndConflict(t *testing.T) {
	router, db := setupEnrollmentRouter(t)
	user, course := seedPublishedCourse(t, db)
	body := fmt.Sprintf(`{"userId": %d, "courseId": %d}`, user.ID, course.ID)

	w := doJSON(router, http.MethodPost, "/api/enrollments", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var envelope struct {
		Data struct {
			EnrollmentID uint `json:"enrollmentId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.EnrollmentID == 0 {
		t.Fatal("expected an enrollment id in the response")
	}

	// Duplicate enrollment is a conflict.
	w = doJSON(router, http.MethodPost, "/api/enrollments", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}
}

func TestUnenrollEndpoint(t *testing.T) {
	router, db := setupEnrollmentRouter(t)
	user, course := seedPublishedCourse(t, db)

	w := doJSON(router, http.MethodPost, "/api/enrollments",
		fmt.Sprintf(`{"userId": %d, "courseId": %d}`, user.ID, course.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("enroll status = %d (body %s)", w.Code, w.Body.String())
	}
	var envelope struct {
		Data struct {
			EnrollmentID uint `json:"enrollmentId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/enrollments/%d", envelope.Data.EnrollmentID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("unenroll status = %d (body %s)", w.Code, w.Body.String())
	}

	var got model.Course
	if err := db.First(&got, course.ID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if got.EnrollmentCount != 0 {
		t.Fatalf("enrollment count = %d, want 0 after unenroll", got.EnrollmentCount)
	}

	// Deleting an enrollment that does not exist is a 404.
	w = doJSON(router, http.MethodDelete, "/api/enrollments/424242", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing enrollment status = %d, want 404", w.Code)
	}
}

func TestGetEnrollmentNotFound(t *testing.T) {
	router, _ := setupEnrollmentRouter(t)

	w := doJSON(router, http.MethodGet, "/api/enrollments/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
