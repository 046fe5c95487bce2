package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"course_hub_backend/internal/model"
	"course_hub_backend/internal/service"
	"course_hub_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupSnapshotRouter(t *testing.T) (*gin.Engine, *gorm.DB, string) {
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

	dir := t.TempDir()
	ctrl := NewSnapshotController(service.NewSnapshotService(db), dir)

	router := gin.New()
	admin := router.Group("/api/admin")
	admin.POST("/snapshot/export", ctrl.ExportSnapshot)
	admin.POST("/snapshot/import", ctrl.ImportSnapshot)
	return router, db, dir
}

func TestSnapshotEndpointsExportAndReimport(t *testing.T) {
	router, db, dir := setupSnapshotRouter(t)
	seedPublishedCourse(t, db)

	w := doJSON(router, http.MethodPost, "/api/admin/snapshot/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err != nil {
		t.Fatalf("expected metadata.json in snapshot dir: %v", err)
	}

	var exported struct {
		Data struct {
			Tables map[string]int `json:"tables"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &exported); err != nil {
		t.Fatalf("parse export response: %v", err)
	}
	if exported.Data.Tables["users"] != 1 || exported.Data.Tables["courses"] != 1 {
		t.Fatalf("unexpected table counts: %v", exported.Data.Tables)
	}

	// Re-importing the same snapshot must insert nothing.
	w = doJSON(router, http.MethodPost, "/api/admin/snapshot/import", "")
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}

	var imported struct {
		Data struct {
			Inserted map[string]int64 `json:"inserted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &imported); err != nil {
		t.Fatalf("parse import response: %v", err)
	}
	for table, count := range imported.Data.Inserted {
		if count != 0 {
			t.Fatalf("re-import inserted %d rows into %s", count, table)
		}
	}

	var users int64
	if err := db.Model(&model.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 1 {
		t.Fatalf("expected 1 user after re-import, got %d", users)
	}
}
