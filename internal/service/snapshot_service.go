package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"course_hub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotMetadata summarizes one export: per-table record counts plus the
// export timestamp.
type SnapshotMetadata struct {
	ExportedAt time.Time      `json:"exportedAt"`
	Tables     map[string]int `json:"tables"`
}

// SnapshotService moves whole tables between the database and a directory of
// per-table JSON array files. Used by the offline import/export commands for
// environment migration.
type SnapshotService struct {
	DB *gorm.DB
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{DB: db}
}

type snapshotTable struct {
	name string
	// load reads the table's file and bulk-inserts its rows, skipping rows
	// whose keys already exist. Returns the number of newly inserted rows.
	load func(db *gorm.DB, path string) (int64, error)
	// dump reads every row and writes the table's file. Returns the row count.
	dump func(db *gorm.DB, path string) (int, error)
}

// tables lists every snapshot table in foreign-key dependency order: parents
// first so imports never hit a dangling reference.
func (s *SnapshotService) tables() []snapshotTable {
	return []snapshotTable{
		{"users", loadTable[model.User], dumpTable[model.User]},
		{"categories", loadTable[model.Category], dumpTable[model.Category]},
		{"courses", loadTable[model.Course], dumpTable[model.Course]},
		{"lessons", loadTable[model.Lesson], dumpTable[model.Lesson]},
		{"enrollments", loadTable[model.Enrollment], dumpTable[model.Enrollment]},
		{"lesson_progress", loadTable[model.LessonProgress], dumpTable[model.LessonProgress]},
		{"reviews", loadTable[model.Review], dumpTable[model.Review]},
		{"certificates", loadTable[model.Certificate], dumpTable[model.Certificate]},
	}
}

// Export writes one JSON array file per table plus metadata.json into dir.
func (s *SnapshotService) Export(dir string) (*SnapshotMetadata, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	meta := &SnapshotMetadata{
		ExportedAt: time.Now(),
		Tables:     make(map[string]int),
	}

	for _, t := range s.tables() {
		count, err := t.dump(s.DB, filepath.Join(dir, t.name+".json"))
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", t.name, err)
		}
		meta.Tables[t.name] = count
	}

	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), payload, 0644); err != nil {
		return nil, err
	}

	return meta, nil
}

// ImportResult reports how many rows each table actually inserted. Rows whose
// primary or unique keys already existed are skipped, so re-importing the same
// snapshot inserts zero rows.
type ImportResult struct {
	Inserted map[string]int64
}

// Import loads every table file found in dir, in dependency order. Missing
// files are skipped; any other error aborts the import. Earlier tables are
// not rolled back on failure.
func (s *SnapshotService) Import(dir string) (*ImportResult, error) {
	result := &ImportResult{Inserted: make(map[string]int64)}

	for _, t := range s.tables() {
		path := filepath.Join(dir, t.name+".json")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		inserted, err := t.load(s.DB, path)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", t.name, err)
		}
		result.Inserted[t.name] = inserted
	}

	return result, nil
}

// ReadMetadata parses a snapshot directory's metadata.json.
func ReadMetadata(dir string) (*SnapshotMetadata, error) {
	payload, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta SnapshotMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func loadTable[T any](db *gorm.DB, path string) (int64, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var rows []T
	if err := json.Unmarshal(payload, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 200)
	return res.RowsAffected, res.Error
}

func dumpTable[T any](db *gorm.DB, path string) (int, error) {
	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return 0, err
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return 0, err
	}

	return len(rows), nil
}
