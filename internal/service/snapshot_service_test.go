package service

import (
	"os"
	"path/filepath"
	"testing"

	"course_hub_backend/internal/model"
)

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	source := newTestDB(t)
	svc := newEnrollmentService(source)
	user := seedUser(t, source, "ivan")
	course := seedCourse(t, source, "Snapshot Course", 2)
	enroll(t, svc, user.ID, course.ID)

	dir := t.TempDir()
	meta, err := NewSnapshotService(source).Export(dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if meta.Tables["enrollments"] != 1 {
		t.Fatalf("exported enrollments = %d, want 1", meta.Tables["enrollments"])
	}
	if meta.Tables["lessons"] != 2 {
		t.Fatalf("exported lessons = %d, want 2", meta.Tables["lessons"])
	}

	stored, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if stored.Tables["courses"] != meta.Tables["courses"] {
		t.Fatalf("metadata mismatch: %v vs %v", stored.Tables, meta.Tables)
	}

	target := newTestDB(t)
	snapshot := NewSnapshotService(target)
	result, err := snapshot.Import(dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Inserted["enrollments"] != 1 {
		t.Fatalf("imported enrollments = %d, want 1", result.Inserted["enrollments"])
	}

	var count int64
	if err := target.Model(&model.Lesson{}).Count(&count).Error; err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	if count != 2 {
		t.Fatalf("lessons after import = %d, want 2", count)
	}
}

func TestSnapshotImportIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newEnrollmentService(db)
	user := seedUser(t, db, "judy")
	course := seedCourse(t, db, "Idempotency", 1)
	enroll(t, svc, user.ID, course.ID)

	dir := t.TempDir()
	snapshot := NewSnapshotService(db)
	if _, err := snapshot.Export(dir); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Importing into the database the snapshot came from must skip every row.
	result, err := snapshot.Import(dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for table, inserted := range result.Inserted {
		if inserted != 0 {
			t.Fatalf("table %s inserted %d rows on re-import, want 0", table, inserted)
		}
	}

	// The database must be unchanged.
	var enrollments int64
	if err := db.Model(&model.Enrollment{}).Count(&enrollments).Error; err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	if enrollments != 1 {
		t.Fatalf("enrollments = %d, want 1", enrollments)
	}
}

func TestSnapshotImportSkipsMissingFiles(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	// Only one table file present.
	users := `[{"id": 1, "name": "solo", "email": "solo@example.com"}]`
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte(users), 0644); err != nil {
		t.Fatalf("write users.json: %v", err)
	}

	result, err := NewSnapshotService(db).Import(dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Inserted["users"] != 1 {
		t.Fatalf("users inserted = %d, want 1", result.Inserted["users"])
	}
	if _, ok := result.Inserted["courses"]; ok {
		t.Fatal("absent table files must be skipped, not reported")
	}
}
